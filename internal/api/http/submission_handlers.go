package http

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/mind-engage/growthreport/internal/apperr"
	auth "github.com/mind-engage/growthreport/internal/auth/middleware"
	"github.com/mind-engage/growthreport/internal/counsel"
	"github.com/mind-engage/growthreport/internal/document"
	"github.com/mind-engage/growthreport/internal/export"
	"github.com/mind-engage/growthreport/internal/rbac"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

// ownedSubmission loads the submission in the URL and checks that the caller
// owns its counsel. Admins see every submission.
func ownedSubmission(r *http.Request, svc *counsel.Service, subs *counsel.Submissions) (counsel.Submission, error) {
	sub, err := subs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return counsel.Submission{}, err
	}
	if rbac.RoleFromContext(r.Context()) == rbac.RoleAdmin {
		return sub, nil
	}
	key := auth.APIKeyFromContext(r.Context())
	if key == "" {
		return counsel.Submission{}, apperr.ErrForbidden
	}
	if _, err := svc.GetOwned(r.Context(), sub.CounselID, key); err != nil {
		return counsel.Submission{}, err
	}
	return sub, nil
}

// submissionDocument re-renders a stored submission with the student's
// inputs filled in. Nothing is refetched.
func submissionDocument(sub counsel.Submission) (document.Document, error) {
	if sub.Data.Report == nil {
		return document.Document{}, errors.Wrapf(apperr.ErrNotFound, "submission %s has no report", sub.ID)
	}
	return document.Assemble(sub.Data.Report.WithInputs(sub.Data.UserInputs), false), nil
}

// GET /submissions/{id}
func GetSubmissionHandler(svc *counsel.Service, subs *counsel.Submissions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := ownedSubmission(r, svc, subs)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

// GET /submissions/{id}/report
func SubmissionReportHandler(svc *counsel.Service, subs *counsel.Submissions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := ownedSubmission(r, svc, subs)
		if err != nil {
			writeError(w, r, err)
			return
		}
		doc, err := submissionDocument(sub)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeHTMLPage(w, r, doc)
	}
}

// GET /submissions/{id}/report.pdf
func SubmissionPDFHandler(svc *counsel.Service, subs *counsel.Submissions, exp *export.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := ownedSubmission(r, svc, subs)
		if err != nil {
			writeError(w, r, err)
			return
		}
		doc, err := submissionDocument(sub)
		if err != nil {
			writeError(w, r, err)
			return
		}
		rep := sub.Data.Report
		writePDF(w, r, exp, doc, export.Filename(rep.StudentName, rep.StudentCode, rep.GeneratedAt))
	}
}

func writeHTMLPage(w http.ResponseWriter, r *http.Request, docs ...document.Document) {
	var buf bytes.Buffer
	if err := document.WritePage(&buf, pageTitle, docs...); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func writePDF(w http.ResponseWriter, r *http.Request, exp *export.Service, doc document.Document, filename string) {
	pdf, res, err := exp.Render(r.Context(), doc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	if res.Pages > 2 || res.Plan.Overflow {
		w.Header().Set("X-Export-Overflow", "true")
	}
	_, _ = w.Write(pdf)
}
