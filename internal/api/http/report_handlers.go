package http

import (
	"bytes"
	"context"
	"net/http"

	"github.com/mind-engage/growthreport/internal/apperr"
	auth "github.com/mind-engage/growthreport/internal/auth/middleware"
	"github.com/mind-engage/growthreport/internal/counsel"
	"github.com/mind-engage/growthreport/internal/document"
	"github.com/mind-engage/growthreport/internal/export"
	"github.com/mind-engage/growthreport/internal/logger"
	"github.com/mind-engage/growthreport/internal/report"
	"github.com/mind-engage/growthreport/internal/settings"
)

const pageTitle = "학생 성장 기록"

// reportRequest accepts codes as a list or as comma separated text. A
// missing config means the teacher's saved (or default) one.
type reportRequest struct {
	Codes     []string       `json:"codes"`
	CodesText string         `json:"codesText"`
	Config    *report.Config `json:"config"`
}

func (q reportRequest) resolve(ctx context.Context, apiKey string, cfgs *settings.Service) (export.Request, error) {
	req := export.Request{APIKey: apiKey, Codes: q.Codes}
	if len(req.Codes) == 0 {
		req.Codes = export.ParseCodes(q.CodesText)
	}
	if q.Config != nil {
		req.Config = *q.Config
		return req, nil
	}
	cfg, _, err := cfgs.LoadOrDefault(ctx, apiKey)
	req.Config = cfg
	return req, err
}

// POST /reports/preview
func PreviewReportsHandler(exp *export.Service, cfgs *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := teacherKey(w, r)
		if !ok {
			return
		}
		var q reportRequest
		if !decodeJSON(w, r, &q) {
			return
		}
		req, err := q.resolve(r.Context(), key, cfgs)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var buf bytes.Buffer
		if err := exp.Preview(r.Context(), req, &buf); err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}

// POST /reports/export
func ExportReportsHandler(exp *export.Service, cfgs *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := teacherKey(w, r)
		if !ok {
			return
		}
		var q reportRequest
		if !decodeJSON(w, r, &q) {
			return
		}
		req, err := q.resolve(r.Context(), key, cfgs)
		if err != nil {
			writeError(w, r, err)
			return
		}
		arts, err := exp.ExportBatch(r.Context(), req)
		if err != nil && len(arts) == 0 {
			writeError(w, r, err)
			return
		}
		body := map[string]interface{}{"artifacts": arts}
		if err != nil {
			logger.FromContext(r.Context()).Warn("export batch stopped early", "done", len(arts), "error", err)
			body["error"] = "export stopped before every student was processed"
		}
		writeJSON(w, http.StatusOK, body)
	}
}

// studentReport builds the signed-in student's report from the counsel
// configuration, with any earlier submission's inputs filled in.
func studentReport(ctx context.Context, svc *counsel.Service, subs *counsel.Submissions, exp *export.Service) (*report.Report, error) {
	code, counselID := auth.SubjectFromContext(ctx), auth.CounselFromContext(ctx)
	if counselID == "" {
		return nil, apperr.ErrForbidden
	}
	c, err := svc.Get(ctx, counselID)
	if err != nil {
		return nil, err
	}
	var inputs report.UserInputs
	if prev, err := subs.Get(ctx, code, counselID); err == nil {
		inputs = prev.Data.UserInputs
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}
	return exp.Build(ctx, c.APIKey, code, c.Config, inputs)
}

// GET /me/report
func MyReportHandler(svc *counsel.Service, subs *counsel.Submissions, exp *export.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := studentReport(r.Context(), svc, subs, exp)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeHTMLPage(w, r, document.Assemble(rep, false))
	}
}

// GET /me/report.pdf
func MyReportPDFHandler(svc *counsel.Service, subs *counsel.Submissions, exp *export.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := studentReport(r.Context(), svc, subs, exp)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writePDF(w, r, exp, document.Assemble(rep, false), export.Filename(rep.StudentName, rep.StudentCode, rep.GeneratedAt))
	}
}

// POST /me/submission  { "userInputs": { "<tag>": "..." } }
func SubmitMyReportHandler(svc *counsel.Service, subs *counsel.Submissions, exp *export.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserInputs report.UserInputs `json:"userInputs"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		rep, err := studentReport(r.Context(), svc, subs, exp)
		if err != nil {
			writeError(w, r, err)
			return
		}
		sub, err := subs.Save(r.Context(), counsel.Submission{
			StudentCode: rep.StudentCode,
			CounselID:   auth.CounselFromContext(r.Context()),
			Data:        counsel.SubmissionData{Report: rep, UserInputs: req.UserInputs},
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}
