// Package layout turns a document into fixed-size pages: it measures the
// document, solves a scale/margin plan for the two-page split and slices the
// final render onto an A4 page writer.
package layout

import "math"

// Page geometry in millimetres.
const (
	PageWidthMM    = 210.0
	PageHeightMM   = 297.0
	ContentWidthMM = 190.0
	MaxMarginMM    = 10.0
	MinMarginMM    = 5.0

	// MinScale is the smallest shrink factor applied to keep a segment on
	// its page. Below it the export overflows instead of getting unreadable.
	MinScale = 0.75
)

// Plan is the outcome of the scale-deciding step.
type Plan struct {
	Scale    float64 `json:"scale"`
	MarginMM float64 `json:"marginMm"`
	// Overflow is set when the scale floor was hit and a segment still does
	// not fit; the content is exported across extra pages, not truncated.
	Overflow bool `json:"overflow"`

	Page1MM float64 `json:"page1Mm"`
	Page2MM float64 `json:"page2Mm"`
}

// AvailableMM is the printable height per page under the plan's margin.
func (p Plan) AvailableMM() float64 { return PageHeightMM - 2*p.MarginMM }

// OffsetXMM centres the (possibly scaled) content horizontally.
func (p Plan) OffsetXMM() float64 { return (PageWidthMM - ContentWidthMM*p.Scale) / 2 }

// SolvePlan decides margin and scale for a document of totalMM height split
// at ratio (0 < ratio <= 1) of its height. The margin is reduced first; only
// when the smallest margin is not enough is the content scaled down.
func SolvePlan(totalMM, ratio float64) Plan {
	if ratio <= 0 || ratio > 1 || math.IsNaN(ratio) {
		ratio = 1
	}
	p := Plan{Scale: 1, MarginMM: MaxMarginMM, Page1MM: totalMM * ratio, Page2MM: totalMM * (1 - ratio)}
	tallest := math.Max(p.Page1MM, p.Page2MM)

	if tallest <= PageHeightMM-2*MinMarginMM {
		p.MarginMM = clamp((PageHeightMM-tallest)/2, MinMarginMM, MaxMarginMM)
		return p
	}

	p.MarginMM = MinMarginMM
	avail := p.AvailableMM()
	p.Scale = math.Min(1, avail/tallest)
	if p.Scale < MinScale {
		p.Scale = MinScale
	}
	p.Overflow = tallest*p.Scale > avail+fitTolerance
	return p
}

// refitSlack leaves room for the next render wrapping a line differently.
const refitSlack = 0.995

// Refit adjusts p after a render whose tallest segment printed tallestMM
// high. The margin goes to its minimum first; the scale shrinks only when
// that is not enough, never below MinScale.
func (p Plan) Refit(tallestMM float64) Plan {
	q := p
	q.MarginMM = MinMarginMM
	q.Overflow = false
	if tallestMM <= 0 || tallestMM <= q.AvailableMM() && p.MarginMM > MinMarginMM {
		return q
	}
	q.Scale = math.Max(MinScale, p.Scale*q.AvailableMM()/tallestMM*refitSlack)
	return q
}

// fitTolerance absorbs float error in the scale/height round trip.
const fitTolerance = 1e-6

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
