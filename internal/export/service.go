package export

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/mind-engage/growthreport/internal/apperr"
	"github.com/mind-engage/growthreport/internal/audit"
	"github.com/mind-engage/growthreport/internal/document"
	"github.com/mind-engage/growthreport/internal/layout"
	"github.com/mind-engage/growthreport/internal/logger"
	"github.com/mind-engage/growthreport/internal/report"
	"github.com/mind-engage/growthreport/internal/rewards"
	"github.com/mind-engage/growthreport/internal/storage"

	"github.com/pkg/errors"
)

// Request names the students to report on and the configuration to use.
type Request struct {
	APIKey string        `json:"apiKey" validate:"notblank"`
	Codes  []string      `json:"codes" validate:"min=1,dive,studentcode"`
	Config report.Config `json:"config"`
}

// Artifact is the outcome of exporting one student. Error is set, and Key is
// empty, when the student's data could not be loaded or rendered.
type Artifact struct {
	StudentCode string   `json:"studentCode"`
	StudentName string   `json:"studentName,omitempty"`
	Filename    string   `json:"filename,omitempty"`
	Key         string   `json:"key,omitempty"`
	Pages       int      `json:"pages,omitempty"`
	Overflow    bool     `json:"overflow,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type Service struct {
	source    rewards.Source
	builder   *report.Builder
	stager    *Stager
	paginator *layout.Paginator
	blobs     storage.BlobStore
	audit     audit.Recorder
	newWriter func() layout.PageWriter
	log       *logger.Logger
}

type Option func(*Service)

func WithAudit(r audit.Recorder) Option { return func(s *Service) { s.audit = r } }

func WithLogger(l *logger.Logger) Option { return func(s *Service) { s.log = logger.OrNop(l) } }

// WithWriterFactory replaces the PDF writer, one writer per export.
func WithWriterFactory(f func() layout.PageWriter) Option {
	return func(s *Service) { s.newWriter = f }
}

func NewService(src rewards.Source, b *report.Builder, st *Stager, p *layout.Paginator, blobs storage.BlobStore, opts ...Option) *Service {
	s := &Service{source: src, builder: b, stager: st, paginator: p, blobs: blobs, log: logger.Nop()}
	s.newWriter = func() layout.PageWriter { return layout.NewPDFWriter(p.DPI()) }
	for _, o := range opts {
		o(s)
	}
	return s
}

// Build fetches one student and builds the report. Data-source failures come
// back as *apperr.DataUnavailable.
func (s *Service) Build(ctx context.Context, apiKey, code string, cfg report.Config, inputs report.UserInputs) (*report.Report, error) {
	res := s.source.Fetch(ctx, code, apiKey)
	return s.builder.Build(code, res, cfg, inputs)
}

// Documents builds one document per code, in order. A student whose data is
// unavailable gets an inline error document and the batch continues.
func (s *Service) Documents(ctx context.Context, req Request) ([]document.Document, error) {
	if err := apperr.Validate(req); err != nil {
		return nil, err
	}
	batch := len(req.Codes) > 1
	docs := make([]document.Document, 0, len(req.Codes))
	for _, code := range req.Codes {
		r, err := s.Build(ctx, req.APIKey, code, req.Config, nil)
		if du, ok := apperr.AsDataUnavailable(err); ok {
			s.log.Warn("student data unavailable", "student", code, "message", du.Message)
			docs = append(docs, document.ErrorDocument(code, du.Message))
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, document.Assemble(r, batch))
	}
	return docs, nil
}

// Preview writes the HTML page for req.
func (s *Service) Preview(ctx context.Context, req Request, w io.Writer) error {
	docs, err := s.Documents(ctx, req)
	if err != nil {
		return err
	}
	return document.WritePage(w, "학생 성장 기록", docs...)
}

// Render paginates doc into a PDF held in memory. The stage is released on
// every path. Once staged, the export is not cancelled by ctx.
func (s *Service) Render(ctx context.Context, doc document.Document) ([]byte, layout.Result, error) {
	stage, err := s.stager.Acquire(ctx, doc)
	if err != nil {
		return nil, layout.Result{}, err
	}
	defer stage.Release()

	w := s.newWriter()
	res, err := s.paginator.Export(context.WithoutCancel(ctx), stage, w)
	if err != nil {
		return nil, res, err
	}
	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		return nil, res, &apperr.ExportFailure{Phase: "saving", Err: err}
	}
	return buf.Bytes(), res, nil
}

// OwnerPrefix is the blob prefix holding the exports made with apiKey.
func OwnerPrefix(apiKey string) string {
	return path.Join("reports", rewards.Fingerprint(apiKey)) + "/"
}

// ExportReport renders r and stores it under the owner prefix of apiKey, as
// <prefix><code>/<filename>. A failed export leaves any earlier file under
// that key untouched.
func (s *Service) ExportReport(ctx context.Context, apiKey string, r *report.Report) (Artifact, error) {
	name := r.StudentName
	if name == report.DefaultStudentName {
		name = ""
	}
	a := Artifact{
		StudentCode: r.StudentCode,
		StudentName: r.StudentName,
		Filename:    Filename(name, r.StudentCode, r.GeneratedAt),
	}
	pdf, res, err := s.Render(ctx, document.Assemble(r, false))
	if err != nil {
		s.record(ctx, a, err)
		return a, err
	}
	a.Pages = res.Pages
	a.Overflow = res.Plan.Overflow || res.Pages > 2
	for _, w := range res.Warnings {
		a.Warnings = append(a.Warnings, w.Error())
	}
	key, err := s.blobs.Put(OwnerPrefix(apiKey)+path.Join(r.StudentCode, a.Filename), bytes.NewReader(pdf))
	if err != nil {
		err = errors.Wrap(err, "store export")
		s.record(ctx, a, err)
		return a, err
	}
	a.Key = key
	s.record(ctx, a, nil)
	s.log.Info("report exported", "student", r.StudentCode, "key", key, "pages", a.Pages)
	return a, nil
}

// ExportBatch exports each student in order, one fully finished before the
// next starts. Per-student failures are reported in the artifact and do not
// stop the batch. Once validated, the batch runs to the end even if ctx is
// cancelled.
func (s *Service) ExportBatch(ctx context.Context, req Request) ([]Artifact, error) {
	if err := apperr.Validate(req); err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)
	out := make([]Artifact, 0, len(req.Codes))
	for _, code := range req.Codes {
		r, err := s.Build(ctx, req.APIKey, code, req.Config, nil)
		if err != nil {
			a := Artifact{StudentCode: code, Error: err.Error()}
			s.log.Warn("student skipped", "student", code, "error", err)
			s.record(ctx, a, err)
			out = append(out, a)
			continue
		}
		a, err := s.ExportReport(ctx, req.APIKey, r)
		if err != nil {
			s.log.Warn("student export failed", "student", code, "error", err)
			a.Error = err.Error()
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, a Artifact, err error) {
	if s.audit == nil {
		return
	}
	e := audit.Entry{StudentCode: a.StudentCode, Filename: a.Filename, Pages: a.Pages, Overflow: a.Overflow}
	if err != nil {
		e.Error = err.Error()
	}
	if aerr := s.audit.Append(ctx, e); aerr != nil {
		s.log.Warn("export log append failed", "student", a.StudentCode, "error", aerr)
	}
}
