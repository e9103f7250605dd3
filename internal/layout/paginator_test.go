package layout

import (
	"context"
	"errors"
	"image"
	"io"
	"math"
	"testing"

	"github.com/mind-engage/growthreport/internal/apperr"
	"github.com/mind-engage/growthreport/internal/document"
)

// fakeCapturer renders a blank surface of totalMM content height with the
// break at ratio of the height (ratio <= 0 means no break).
type fakeCapturer struct {
	totalMM float64
	ratio   float64
	failOn  int
	// grow stretches every render after the measurement, as when the final
	// pass wraps more lines than the measuring pass did.
	grow  float64
	calls []CaptureOptions
}

func (f *fakeCapturer) Capture(_ context.Context, _ document.Document, opts CaptureOptions) (Surface, error) {
	f.calls = append(f.calls, opts)
	if f.failOn == len(f.calls) {
		return nil, errors.New("capture boom")
	}
	pxmm := opts.PxPerMM() * opts.Scale
	total := f.totalMM
	if f.grow > 0 && len(f.calls) > 1 {
		total *= f.grow
	}
	h := int(math.Round(total * pxmm))
	w := int(math.Round(opts.WidthMM * pxmm))
	anchor := -1
	if f.ratio > 0 {
		anchor = int(math.Round(f.ratio * float64(h)))
	}
	return NewImageSurface(image.NewRGBA(image.Rect(0, 0, w, h)), anchor), nil
}

type placed struct {
	page       int
	x, y, w, h float64
	px         int
}

type fakeWriter struct {
	pages   int
	images  []placed
	failAdd bool
}

func (w *fakeWriter) AddPage() { w.pages++ }

func (w *fakeWriter) AddImage(img image.Image, x, y, wmm, hmm float64) error {
	if w.failAdd {
		return errors.New("writer boom")
	}
	w.images = append(w.images, placed{page: w.pages, x: x, y: y, w: wmm, h: hmm, px: img.Bounds().Dy()})
	return nil
}

func (w *fakeWriter) Save(io.Writer) error { return nil }

func stageOf(code string) *Stage {
	return NewStage(document.Document{StudentCode: code})
}

func TestExportTwoPagesAtNaturalScale(t *testing.T) {
	c := &fakeCapturer{totalMM: 500, ratio: 0.5}
	var states []State
	p := NewPaginator(c)
	p.OnTransition = func(_, to State) { states = append(states, to) }

	w := &fakeWriter{}
	res, err := p.Export(context.Background(), stageOf("ABCD1"), w)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Pages != 2 || w.pages != 2 || len(res.Warnings) != 0 {
		t.Fatalf("pages = %d writer = %d warnings = %v", res.Pages, w.pages, res.Warnings)
	}
	if res.Plan.Scale != 1 || res.Plan.MarginMM != MaxMarginMM {
		t.Fatalf("plan = %+v", res.Plan)
	}
	want := []State{Measuring, ScaleDeciding, FinalRendering, Slicing, Done}
	if len(states) != len(want) {
		t.Fatalf("states = %v", states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
	if len(c.calls) != 2 || c.calls[0].DPI != DefaultExportDPI || c.calls[1].DPI != DefaultExportDPI {
		t.Fatalf("capture calls = %+v", c.calls)
	}
	if w.images[0].y != MaxMarginMM || math.Abs(w.images[0].x-10) > 1e-9 {
		t.Fatalf("first image placed at %+v", w.images[0])
	}
}

func TestExportBreakOffsetFollowsFinalResolution(t *testing.T) {
	c := &fakeCapturer{totalMM: 400, ratio: 0.3}
	w := &fakeWriter{}
	res, err := NewPaginator(c, WithExportDPI(300)).Export(context.Background(), stageOf("ABCD1"), w)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	finalH := int(math.Round(400 * 300 / 25.4))
	if want := int(math.Round(res.Ratio * float64(finalH))); res.BreakOffset != want {
		t.Fatalf("break offset = %d, want %d", res.BreakOffset, want)
	}
	if w.images[0].px != res.BreakOffset {
		t.Fatalf("page one height = %d px, want %d", w.images[0].px, res.BreakOffset)
	}
}

func TestExportRefitsWhenFinalRenderRunsTaller(t *testing.T) {
	c := &fakeCapturer{totalMM: 560, ratio: 0.5, grow: 1.05}
	var states []State
	p := NewPaginator(c)
	p.OnTransition = func(_, to State) { states = append(states, to) }
	w := &fakeWriter{}
	res, err := p.Export(context.Background(), stageOf("ABCD1"), w)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Pages != 2 || w.pages != 2 || res.Plan.Overflow {
		t.Fatalf("pages = %d writer = %d plan = %+v", res.Pages, w.pages, res.Plan)
	}
	if len(c.calls) != 3 || c.calls[1].Scale != 1 || c.calls[2].Scale >= 1 || c.calls[2].Scale < MinScale {
		t.Fatalf("capture calls = %+v", c.calls)
	}
	if res.Plan.MarginMM != MinMarginMM || res.Plan.Scale != c.calls[2].Scale {
		t.Fatalf("plan = %+v", res.Plan)
	}
	want := []State{Measuring, ScaleDeciding, FinalRendering, ScaleDeciding, FinalRendering, Slicing, Done}
	if len(states) != len(want) {
		t.Fatalf("states = %v", states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
	avail := PageHeightMM - 2*MinMarginMM
	for _, im := range w.images {
		if im.h > avail+1e-6 {
			t.Fatalf("image taller than page: %+v", im)
		}
	}
}

func TestPlanRefit(t *testing.T) {
	p := Plan{Scale: 1, MarginMM: MaxMarginMM}
	q := p.Refit(PageHeightMM - 2*MinMarginMM - 1)
	if q.Scale != 1 || q.MarginMM != MinMarginMM {
		t.Fatalf("margin lever not used first: %+v", q)
	}
	q = p.Refit(320)
	if q.Scale >= 1 || q.Scale*320 > q.AvailableMM() || q.MarginMM != MinMarginMM {
		t.Fatalf("refit = %+v", q)
	}
	q = p.Refit(1000)
	if q.Scale != MinScale {
		t.Fatalf("refit below floor: %+v", q)
	}
}

// The floor keeps text readable; the overflow spills onto a third page and
// is reported as a warning, not a failure.
func TestExportFloorOverflowIsWarning(t *testing.T) {
	c := &fakeCapturer{totalMM: 900, ratio: 0.6}
	w := &fakeWriter{}
	res, err := NewPaginator(c).Export(context.Background(), stageOf("ABCD1"), w)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Plan.Scale != MinScale || !res.Plan.Overflow {
		t.Fatalf("plan = %+v", res.Plan)
	}
	if res.Pages <= 2 {
		t.Fatalf("pages = %d, expected overflow pages", res.Pages)
	}
	var ov *apperr.ExportOverflow
	if len(res.Warnings) != 1 || !errors.As(res.Warnings[0], &ov) || ov.Pages != res.Pages || ov.StudentCode != "ABCD1" {
		t.Fatalf("warnings = %v", res.Warnings)
	}
	if c.calls[1].Scale != MinScale {
		t.Fatalf("final pass scale = %v", c.calls[1].Scale)
	}
}

func TestExportWithoutAnchorIsSingleSegment(t *testing.T) {
	w := &fakeWriter{}
	res, err := NewPaginator(&fakeCapturer{totalMM: 200}).Export(context.Background(), stageOf("ABCD1"), w)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Ratio != 1 || res.Pages != 1 || w.pages != 1 {
		t.Fatalf("result = %+v pages = %d", res, w.pages)
	}
}

func TestExportFailures(t *testing.T) {
	cases := []struct {
		name  string
		c     *fakeCapturer
		w     *fakeWriter
		phase string
	}{
		{"measure", &fakeCapturer{totalMM: 300, ratio: 0.5, failOn: 1}, &fakeWriter{}, "measuring"},
		{"final", &fakeCapturer{totalMM: 300, ratio: 0.5, failOn: 2}, &fakeWriter{}, "final-rendering"},
		{"writer", &fakeCapturer{totalMM: 300, ratio: 0.5}, &fakeWriter{failAdd: true}, "slicing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var last State
			p := NewPaginator(tc.c)
			p.OnTransition = func(_, to State) { last = to }
			_, err := p.Export(context.Background(), stageOf("ABCD1"), tc.w)
			var ef *apperr.ExportFailure
			if !errors.As(err, &ef) {
				t.Fatalf("err = %v, want ExportFailure", err)
			}
			if ef.Phase != tc.phase || last != Failed {
				t.Fatalf("phase = %q last = %v", ef.Phase, last)
			}
		})
	}
}

func TestExportReleasedStageFails(t *testing.T) {
	s := stageOf("ABCD1")
	s.Release()
	if _, err := NewPaginator(&fakeCapturer{totalMM: 100}).Export(context.Background(), s, &fakeWriter{}); err == nil {
		t.Fatalf("expected failure on released stage")
	}
}

func TestStageReleaseRunsCleanupsOnce(t *testing.T) {
	s := stageOf("ABCD1")
	var order []int
	s.OnRelease(func() { order = append(order, 1) })
	s.OnRelease(func() { order = append(order, 2) })
	s.Release()
	s.Release()
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("cleanup order = %v", order)
	}
	if _, ok := s.Document(); ok || !s.Released() {
		t.Fatalf("stage still holds a document")
	}
}
