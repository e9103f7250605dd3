package layout

import (
	"bytes"
	"context"
	"image"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/mind-engage/growthreport/internal/document"
	"github.com/mind-engage/growthreport/internal/report"
)

func TestPDFWriterSave(t *testing.T) {
	w := NewPDFWriter(30)
	if err := w.AddImage(image.NewRGBA(image.Rect(0, 0, 10, 10)), 0, 0, 10, 10); err == nil {
		t.Fatalf("expected error before AddPage")
	}
	for i := 0; i < 2; i++ {
		w.AddPage()
		if err := w.AddImage(image.NewRGBA(image.Rect(0, 0, 40, 40)), 10, 10, 100, 100); err != nil {
			t.Fatalf("AddImage: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	n, err := api.PageCount(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("pages = %d", n)
	}
}

func TestPDFWriterSaveWithoutPages(t *testing.T) {
	if err := NewPDFWriter(30).Save(&bytes.Buffer{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPaginatorEndToEnd(t *testing.T) {
	p := NewPaginator(newTestTypesetter(t), WithExportDPI(40))
	w := NewPDFWriter(40)
	res, err := p.Export(context.Background(), NewStage(sampleDocument(true)), w)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Pages != w.Pages() || res.Pages < 2 {
		t.Fatalf("pages = %d writer = %d", res.Pages, w.Pages())
	}
	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	n, err := api.PageCount(bytes.NewReader(buf.Bytes()), nil)
	if err != nil || n != res.Pages {
		t.Fatalf("pdf pages = %d err = %v", n, err)
	}
}

func longSummaryDocument(sentences int) document.Document {
	doc := sampleDocument(true)
	text := strings.Repeat("Haneul kept a tidy desk and helped friends during every group task. ", sentences)
	cfg := report.DefaultConfig()
	for i, f := range doc.Fragments {
		if f.Kind == document.KindSummary {
			doc.Fragments[i] = document.RenderSummary(cfg.Summary, text, report.PraisePlaceholder, nil)
		}
	}
	return doc
}

// Grows the summary until the floor is reached: every shrunk document above
// the floor must land on exactly two pages.
func TestPaginatorScaledDocumentsStayOnTwoPages(t *testing.T) {
	if testing.Short() {
		t.Skip("renders many full documents")
	}
	ts := newTestTypesetter(t)
	p := NewPaginator(ts)
	scaled := 0
	for n := 10; n < 4000; n += max(1, n/12) {
		w := &fakeWriter{}
		res, err := p.Export(context.Background(), NewStage(longSummaryDocument(n)), w)
		if err != nil {
			t.Fatalf("sentences=%d: %v", n, err)
		}
		if res.Plan.Overflow {
			break
		}
		if res.Pages != 2 || w.pages != 2 || len(res.Warnings) != 0 {
			t.Fatalf("sentences=%d: pages = %d plan = %+v", n, res.Pages, res.Plan)
		}
		if res.Plan.Scale < 1 {
			scaled++
		}
	}
	if scaled == 0 {
		t.Fatalf("no document needed shrinking")
	}
}
