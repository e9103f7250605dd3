package export

import (
	"context"
	"errors"
	"image"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/mind-engage/growthreport/internal/apperr"
	"github.com/mind-engage/growthreport/internal/document"
	"github.com/mind-engage/growthreport/internal/layout"
	"github.com/mind-engage/growthreport/internal/report"
	"github.com/mind-engage/growthreport/internal/rewards"
	"github.com/mind-engage/growthreport/internal/storage"
)

// stubCapturer renders a blank 400mm document with the break in the middle.
type stubCapturer struct{ fail bool }

func (c stubCapturer) Capture(_ context.Context, doc document.Document, o layout.CaptureOptions) (layout.Surface, error) {
	if c.fail {
		return nil, errors.New("capture failed")
	}
	px := o.PxPerMM() * o.Scale
	h := int(math.Round(400 * px))
	anchor := -1
	if doc.BreakIndex() >= 0 {
		anchor = h / 2
	}
	return layout.NewImageSurface(image.NewRGBA(image.Rect(0, 0, int(o.WidthMM*px), h)), anchor), nil
}

type stubWriter struct {
	pages    int
	content  string
	failSave bool
}

func (w *stubWriter) AddPage()                                                       { w.pages++ }
func (w *stubWriter) AddImage(image.Image, float64, float64, float64, float64) error { return nil }
func (w *stubWriter) Save(out io.Writer) error {
	if w.failSave {
		return errors.New("disk full")
	}
	_, err := io.WriteString(out, w.content)
	return err
}

func sourceWithFailure(fail string, calls *[]string) rewards.Source {
	return rewards.SourceFunc(func(_ context.Context, code, _ string) rewards.Result {
		*calls = append(*calls, code)
		if code == fail {
			return rewards.Failed("API 호출 실패 (상태 코드: 404)")
		}
		return rewards.OK(rewards.Snapshot{Name: "학생" + code, Cookie: 10, UsedCookie: 4, ChocoChips: 2})
	})
}

type fixture struct {
	svc    *Service
	stager *Stager
	blobs  *storage.FSStore
	calls  []string
	writer *stubWriter
}

func newFixture(t *testing.T, fail string, capFail bool) *fixture {
	t.Helper()
	blobs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	f := &fixture{stager: NewStager(), blobs: blobs, writer: &stubWriter{content: "PDF-1"}}
	builder := report.NewBuilder(report.NewBadgeArchive(), report.WithClock(func() time.Time {
		return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	}))
	f.svc = NewService(sourceWithFailure(fail, &f.calls), builder, f.stager,
		layout.NewPaginator(stubCapturer{fail: capFail}), blobs,
		WithWriterFactory(func() layout.PageWriter { return f.writer }))
	return f
}

func request(codes ...string) Request {
	return Request{APIKey: "key-1", Codes: codes, Config: report.DefaultConfig()}
}

func TestDocumentsBatchWithMiddleFailure(t *testing.T) {
	f := newFixture(t, "BBBB2", false)
	docs, err := f.svc.Documents(context.Background(), request("AAAA1", "BBBB2", "CCCC3"))
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("docs = %d", len(docs))
	}
	if docs[0].IsError() || !docs[1].IsError() || docs[2].IsError() {
		t.Fatalf("error placement wrong: %v %v %v", docs[0].IsError(), docs[1].IsError(), docs[2].IsError())
	}
	if docs[0].StudentCode != "AAAA1" || docs[1].StudentCode != "BBBB2" || docs[2].StudentCode != "CCCC3" {
		t.Fatalf("order changed")
	}
	if !docs[0].Fragments[0].DocumentBreakAfter {
		t.Fatalf("batch documents must break between students")
	}
	note := docs[1].Fragments[0].Columns[0].Blocks[0].(document.ErrorNote)
	if note.Message != "API 호출 실패 (상태 코드: 404)" {
		t.Fatalf("message = %q", note.Message)
	}
}

func TestExportBatchWithMiddleFailure(t *testing.T) {
	f := newFixture(t, "BBBB2", false)
	arts, err := f.svc.ExportBatch(context.Background(), request("AAAA1", "BBBB2", "CCCC3"))
	if err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}
	if len(arts) != 3 {
		t.Fatalf("artifacts = %d", len(arts))
	}
	if arts[0].Key == "" || arts[2].Key == "" || arts[1].Key != "" || arts[1].Error == "" {
		t.Fatalf("artifacts = %+v", arts)
	}
	if arts[0].Filename != "학생AAAA1_report_2025-03-14.pdf" {
		t.Fatalf("filename = %q", arts[0].Filename)
	}
	if !strings.HasPrefix(arts[0].Key, OwnerPrefix("key-1")+"AAAA1/") {
		t.Fatalf("key = %q", arts[0].Key)
	}
	if arts[0].Pages != 2 {
		t.Fatalf("pages = %d", arts[0].Pages)
	}
	if strings.Join(f.calls, ",") != "AAAA1,BBBB2,CCCC3" {
		t.Fatalf("fetch order = %v", f.calls)
	}
	if f.stager.Busy() {
		t.Fatalf("stage leaked")
	}
}

func TestExportKeysAreScopedByOwner(t *testing.T) {
	f := newFixture(t, "", false)
	a, err := f.svc.ExportBatch(context.Background(), request("AAAA1"))
	if err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}
	other := request("AAAA1")
	other.APIKey = "key-2"
	f.writer.content = "PDF-other"
	b, err := f.svc.ExportBatch(context.Background(), other)
	if err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}
	if a[0].Key == "" || a[0].Key == b[0].Key || a[0].Filename != b[0].Filename {
		t.Fatalf("keys = %q, %q", a[0].Key, b[0].Key)
	}
	if strings.Contains(a[0].Key, "key-1") || !strings.HasPrefix(b[0].Key, OwnerPrefix("key-2")) {
		t.Fatalf("owner prefix wrong: %q %q", a[0].Key, b[0].Key)
	}
	rc, err := f.blobs.Get(a[0].Key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	if got, _ := io.ReadAll(rc); string(got) != "PDF-1" {
		t.Fatalf("first owner's file overwritten: %q", got)
	}
}

func TestExportBatchFinishesAfterCancel(t *testing.T) {
	f := newFixture(t, "", false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.svc.source = rewards.SourceFunc(func(ctx context.Context, code, _ string) rewards.Result {
		f.calls = append(f.calls, code)
		cancel()
		if ctx.Err() != nil {
			return rewards.Failed("cancelled")
		}
		return rewards.OK(rewards.Snapshot{Name: "학생" + code, Cookie: 3})
	})
	arts, err := f.svc.ExportBatch(ctx, request("AAAA1", "BBBB2", "CCCC3"))
	if err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}
	if len(arts) != 3 {
		t.Fatalf("artifacts = %+v", arts)
	}
	for _, a := range arts {
		if a.Key == "" || a.Error != "" {
			t.Fatalf("artifact = %+v", a)
		}
	}
	if strings.Join(f.calls, ",") != "AAAA1,BBBB2,CCCC3" {
		t.Fatalf("fetch order = %v", f.calls)
	}
}

func TestNamelessStudentsAreNamedByCode(t *testing.T) {
	f := newFixture(t, "", false)
	f.svc.source = rewards.SourceFunc(func(context.Context, string, string) rewards.Result {
		return rewards.OK(rewards.Snapshot{Cookie: 1})
	})
	arts, err := f.svc.ExportBatch(context.Background(), request("AAAA1", "BBBB2"))
	if err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}
	if arts[0].Filename != "AAAA1_report_2025-03-14.pdf" || arts[1].Filename != "BBBB2_report_2025-03-14.pdf" {
		t.Fatalf("filenames = %q, %q", arts[0].Filename, arts[1].Filename)
	}
	if arts[0].StudentName != report.DefaultStudentName {
		t.Fatalf("display name = %q", arts[0].StudentName)
	}
}

func TestValidationBeforeFetch(t *testing.T) {
	f := newFixture(t, "", false)
	_, err := f.svc.Documents(context.Background(), request("AAAA1", "x!"))
	if _, ok := apperr.AsValidation(err); !ok {
		t.Fatalf("err = %v, want validation error", err)
	}
	cfg := request("AAAA1")
	cfg.Config.GeneralUsage = " "
	if _, err := f.svc.ExportBatch(context.Background(), cfg); err == nil {
		t.Fatalf("blank general usage accepted")
	}
	if _, err := f.svc.ExportBatch(context.Background(), request()); err == nil {
		t.Fatalf("empty code list accepted")
	}
	if len(f.calls) != 0 {
		t.Fatalf("fetched before validation: %v", f.calls)
	}
}

func TestFailedExportKeepsPreviousFileAndReleasesStage(t *testing.T) {
	f := newFixture(t, "", false)
	ctx := context.Background()
	r, err := f.svc.Build(ctx, "key-1", "AAAA1", report.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	first, err := f.svc.ExportReport(ctx, "key-1", r)
	if err != nil {
		t.Fatalf("first export: %v", err)
	}

	f.writer.content, f.writer.failSave = "PDF-2", true
	_, err = f.svc.ExportReport(ctx, "key-1", r)
	var ef *apperr.ExportFailure
	if !errors.As(err, &ef) || ef.Phase != "saving" {
		t.Fatalf("err = %v", err)
	}
	if f.stager.Busy() {
		t.Fatalf("stage not released after failure")
	}
	rc, err := f.blobs.Get(first.Key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "PDF-1" {
		t.Fatalf("previous file changed: %q", b)
	}
}

func TestCaptureFailureReleasesStage(t *testing.T) {
	f := newFixture(t, "", true)
	arts, err := f.svc.ExportBatch(context.Background(), request("AAAA1", "CCCC3"))
	if err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}
	for _, a := range arts {
		if a.Error == "" || a.Key != "" {
			t.Fatalf("artifact = %+v", a)
		}
	}
	if f.stager.Busy() {
		t.Fatalf("stage leaked")
	}
}

func TestPreviewWritesPage(t *testing.T) {
	f := newFixture(t, "", false)
	var sb strings.Builder
	if err := f.svc.Preview(context.Background(), request("AAAA1"), &sb); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(sb.String(), "학생AAAA1 학생의 성장 기록") {
		t.Fatalf("preview missing student header")
	}
}
