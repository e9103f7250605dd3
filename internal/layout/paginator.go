package layout

import (
	"context"
	"image"
	"io"
	"math"

	"github.com/mind-engage/growthreport/internal/apperr"
	"github.com/mind-engage/growthreport/internal/logger"

	"github.com/pkg/errors"
)

// State is a paginator phase.
type State int

const (
	Idle State = iota
	Measuring
	ScaleDeciding
	FinalRendering
	Slicing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Measuring:
		return "measuring"
	case ScaleDeciding:
		return "scale-deciding"
	case FinalRendering:
		return "final-rendering"
	case Slicing:
		return "slicing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// PageWriter receives positioned page images. Coordinates are millimetres
// from the top-left corner of the current page.
type PageWriter interface {
	AddPage()
	AddImage(img image.Image, x, y, w, h float64) error
	Save(w io.Writer) error
}

const (
	// DefaultExportDPI is the density of both passes. Measuring and final
	// rendering share it because glyph rounding makes wrapping, and so
	// height, depend on density.
	DefaultExportDPI = 150.0

	// maxFitPasses bounds the final renders tried while shrinking a segment
	// that came out taller than its page.
	maxFitPasses = 3

	// minSlicePx drops sub-pixel remainders that rounding leaves at the end
	// of a segment.
	minSlicePx = 2
)

// Result describes a finished export.
type Result struct {
	Plan        Plan    `json:"plan"`
	Ratio       float64 `json:"ratio"`
	BreakOffset int     `json:"breakOffset"`
	Pages       int     `json:"pages"`
	Warnings    []error `json:"-"`
}

type Paginator struct {
	capturer Capturer
	log      *logger.Logger
	dpi      float64

	// OnTransition is called on every state change.
	OnTransition func(from, to State)
}

type PaginatorOption func(*Paginator)

func WithExportDPI(dpi float64) PaginatorOption {
	return func(p *Paginator) {
		if dpi > 0 {
			p.dpi = dpi
		}
	}
}

func WithPaginatorLogger(l *logger.Logger) PaginatorOption {
	return func(p *Paginator) { p.log = logger.OrNop(l) }
}

func NewPaginator(c Capturer, opts ...PaginatorOption) *Paginator {
	p := &Paginator{capturer: c, log: logger.Nop(), dpi: DefaultExportDPI}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Paginator) DPI() float64 { return p.dpi }

// run tracks the current state of one Export call.
type run struct {
	p     *Paginator
	state State
}

func (r *run) to(next State) {
	prev := r.state
	r.state = next
	r.p.log.Debug("paginator transition", "from", prev.String(), "to", next.String())
	if r.p.OnTransition != nil {
		r.p.OnTransition(prev, next)
	}
}

func (r *run) fail(err error) (Result, error) {
	phase := r.state.String()
	r.to(Failed)
	return Result{}, &apperr.ExportFailure{Phase: phase, Err: err}
}

// Export measures the staged document, decides the plan, renders it at the
// export density and writes the pages to w. Nothing is saved: the caller
// calls w.Save once the result is accepted.
func (p *Paginator) Export(ctx context.Context, stage *Stage, w PageWriter) (Result, error) {
	r := &run{p: p, state: Idle}

	r.to(Measuring)
	doc, ok := stage.Document()
	if !ok {
		return r.fail(errors.New("stage already released"))
	}
	measured, err := p.capturer.Capture(ctx, doc, CaptureOptions{Scale: 1, WidthMM: ContentWidthMM, DPI: p.dpi})
	if err != nil {
		return r.fail(errors.Wrap(err, "measure"))
	}
	if measured.Height() <= 0 {
		return r.fail(errors.New("empty measurement"))
	}
	ratio := anchorRatio(measured)
	totalMM := float64(measured.Height()) / (p.dpi / 25.4)

	r.to(ScaleDeciding)
	plan := SolvePlan(totalMM, ratio)
	p.log.Debug("export plan", "student", doc.StudentCode, "totalMm", totalMM, "ratio", ratio,
		"scale", plan.Scale, "marginMm", plan.MarginMM, "overflow", plan.Overflow)

	var (
		final Surface
		opts  CaptureOptions
		brk   int
	)
	for pass := 1; ; pass++ {
		r.to(FinalRendering)
		opts = CaptureOptions{Scale: plan.Scale, WidthMM: ContentWidthMM, DPI: p.dpi}
		final, err = p.capturer.Capture(ctx, doc, opts)
		if err != nil {
			return r.fail(errors.Wrap(err, "final render"))
		}
		if final.Height() <= 0 {
			return r.fail(errors.New("empty final render"))
		}
		if final.Anchor() > 0 {
			ratio = anchorRatio(final)
		}
		brk = int(math.Round(ratio * float64(final.Height())))
		tallest := max(brk, final.Height()-brk)
		avail := int(math.Floor(plan.AvailableMM() * opts.PxPerMM()))
		if fitsPage(tallest, avail) {
			break
		}
		if pass == maxFitPasses || (plan.Scale <= MinScale && plan.MarginMM <= MinMarginMM) {
			plan.Overflow = true
			break
		}
		// The render wrapped differently than the measurement; shrink by
		// what it actually came out as and render again.
		r.to(ScaleDeciding)
		plan = plan.Refit(float64(tallest) / opts.PxPerMM())
		p.log.Debug("export refit", "student", doc.StudentCode, "pass", pass,
			"tallestPx", tallest, "availPx", avail, "scale", plan.Scale, "marginMm", plan.MarginMM)
	}

	r.to(Slicing)
	res := Result{Plan: plan, Ratio: ratio, BreakOffset: brk}
	pxmm := opts.PxPerMM()
	avail := int(math.Floor(plan.AvailableMM() * pxmm))
	for _, seg := range [][2]int{{0, res.BreakOffset}, {res.BreakOffset, final.Height()}} {
		n, err := writeSegment(w, final, seg[0], seg[1], avail, pxmm, plan)
		if err != nil {
			return r.fail(err)
		}
		res.Pages += n
	}

	if res.Pages > 2 {
		warn := &apperr.ExportOverflow{StudentCode: doc.StudentCode, Pages: res.Pages}
		res.Warnings = append(res.Warnings, warn)
		p.log.Warn("export overflow", "student", doc.StudentCode, "pages", res.Pages, "scale", plan.Scale)
	}
	r.to(Done)
	return res, nil
}

// anchorRatio is the forced-break position as a share of the surface height,
// or 1 when the surface has no break.
func anchorRatio(s Surface) float64 {
	if a := s.Anchor(); a > 0 && a < s.Height() {
		return float64(a) / float64(s.Height())
	}
	return 1
}

// fitsPage reports whether a segment of h rows goes on one page of avail
// rows; writeSegment drops remainders shorter than minSlicePx.
func fitsPage(h, avail int) bool { return h-avail < minSlicePx }

// writeSegment puts rows [start, end) of s on as many pages as needed.
func writeSegment(w PageWriter, s Surface, start, end, avail int, pxmm float64, plan Plan) (int, error) {
	if avail < 1 {
		return 0, errors.Errorf("no printable height (%d px)", avail)
	}
	pages := 0
	for off := start; end-off >= minSlicePx || (pages == 0 && end > off); off += avail {
		h := end - off
		if h > avail {
			h = avail
		}
		band := s.Slice(off, h)
		w.AddPage()
		pages++
		err := w.AddImage(band.Image(), plan.OffsetXMM(), plan.MarginMM,
			float64(band.Width())/pxmm, float64(band.Height())/pxmm)
		if err != nil {
			return pages, errors.Wrap(err, "add page image")
		}
	}
	return pages, nil
}
