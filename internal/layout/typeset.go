package layout

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/mind-engage/growthreport/internal/document"
	"github.com/mind-engage/growthreport/internal/logger"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Layout metrics, in millimetres of unscaled content.
const (
	padMM     = 4.0
	gapMM     = 3.0
	innerMM   = 2.0
	radiusMM  = 3.0
	strokeMM  = 0.3
	bodyMM    = 3.4
	smallMM   = 2.9
	headMM    = 4.2
	titleMM   = 6.2
	figureMM  = 9.0
	pieMM     = 26.0
	cellMM    = 20.0
	iconMM    = 10.0
	promptRow = 3

	lineSpacing = 1.35
)

const (
	colorText    = "#333333"
	colorMuted   = "#777777"
	colorBorder  = "#e5e7eb"
	colorFigure  = "#d35400"
	colorError   = "#e74c3c"
	colorErrorBg = "#fdecea"
	colorBadge   = "#f1c40f"
	colorPrompt  = "#fafafa"
)

type style struct {
	sizeMM float64
	bold   bool
	color  string
}

var (
	bodyStyle   = style{sizeMM: bodyMM, color: colorText}
	mutedStyle  = style{sizeMM: smallMM, color: colorMuted}
	labelStyle  = style{sizeMM: bodyMM, bold: true, color: colorText}
	headStyle   = style{sizeMM: headMM, bold: true, color: colorText}
	titleStyle  = style{sizeMM: titleMM, bold: true, color: colorText}
	figureStyle = style{sizeMM: figureMM, bold: true, color: colorFigure}
	errorStyle  = style{sizeMM: headMM, bold: true, color: colorError}
)

// Typesetter lays a document out in a single column of fixed width and
// paints it with gg. It implements Capturer.
type Typesetter struct {
	regular *truetype.Font
	bold    *truetype.Font
	log     *logger.Logger
}

type TypesetterOption func(*Typesetter)

func WithTypesetterLogger(l *logger.Logger) TypesetterOption {
	return func(t *Typesetter) { t.log = logger.OrNop(l) }
}

// NewTypesetter loads the TrueType font at fontPath for all text. With an
// empty path the Go fonts are used; those carry no Hangul glyphs, so
// deployments printing Korean point fontPath at a CJK font.
func NewTypesetter(fontPath string, opts ...TypesetterOption) (*Typesetter, error) {
	t := &Typesetter{log: logger.Nop()}
	for _, o := range opts {
		o(t)
	}
	if strings.TrimSpace(fontPath) == "" {
		regular, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, errors.Wrap(err, "parse go regular font")
		}
		bold, err := truetype.Parse(gobold.TTF)
		if err != nil {
			return nil, errors.Wrap(err, "parse go bold font")
		}
		t.regular, t.bold = regular, bold
		return t, nil
	}
	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read font %s", fontPath)
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "parse font %s", fontPath)
	}
	t.log.Info("typesetter font loaded", "path", fontPath)
	t.regular, t.bold = f, f
	return t, nil
}

func (t *Typesetter) Capture(ctx context.Context, doc document.Document, opts CaptureOptions) (Surface, error) {
	if opts.DPI <= 0 || opts.Scale <= 0 || opts.WidthMM <= 0 {
		return nil, errors.Errorf("invalid capture options %+v", opts)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fr := newFrame(t, opts.PxPerMM()*opts.Scale)
	defer fr.close()

	width := math.Ceil(fr.mm(opts.WidthMM))
	y, anchor := 0.0, -1
	for i, f := range doc.Fragments {
		if i > 0 {
			y += fr.mm(gapMM)
		}
		y += fr.fragment(f, 0, y, width)
		if f.ForcedBreakAfter && anchor < 0 {
			anchor = int(math.Round(y + fr.mm(gapMM)/2))
		}
	}
	height := int(math.Ceil(y))
	if height < 1 {
		height = 1
	}
	if anchor > height {
		anchor = height
	}

	dc := gg.NewContext(int(width), height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	for _, op := range fr.ops {
		op(dc)
	}
	t.log.Debug("document captured", "student", doc.StudentCode, "width", int(width), "height", height, "anchor", anchor)
	return NewImageSurface(dc.Image(), anchor), nil
}

type faceKey struct {
	sizeMM float64
	bold   bool
}

// frame is the state of one capture: a cursor-free list of paint operations
// whose positions were fixed while measuring.
type frame struct {
	ts      *Typesetter
	px      float64
	faces   map[faceKey]font.Face
	measure *gg.Context
	ops     []func(dc *gg.Context)
}

func newFrame(t *Typesetter, px float64) *frame {
	return &frame{ts: t, px: px, faces: map[faceKey]font.Face{}, measure: gg.NewContext(1, 1)}
}

func (fr *frame) close() {
	for _, f := range fr.faces {
		_ = f.Close()
	}
}

func (fr *frame) mm(v float64) float64 { return v * fr.px }

func (fr *frame) face(st style) font.Face {
	k := faceKey{st.sizeMM, st.bold}
	if f, ok := fr.faces[k]; ok {
		return f
	}
	ttf := fr.ts.regular
	if st.bold {
		ttf = fr.ts.bold
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: fr.mm(st.sizeMM), DPI: 72, Hinting: font.HintingNone})
	fr.faces[k] = f
	return f
}

func (fr *frame) draw(op func(dc *gg.Context)) { fr.ops = append(fr.ops, op) }

// reserve keeps a slot for an operation that must paint below content laid
// out after it, such as a box whose height is not known yet.
func (fr *frame) reserve() int {
	fr.ops = append(fr.ops, func(*gg.Context) {})
	return len(fr.ops) - 1
}

func (fr *frame) wrap(s string, w float64, face font.Face) []string {
	fr.measure.SetFontFace(face)
	var lines []string
	for _, para := range strings.Split(printable(s), "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, fr.measure.WordWrap(para, w)...)
	}
	return lines
}

// text lays out wrapped lines; align is 0 left, 0.5 centre, 1 right.
func (fr *frame) text(s string, x, y, w float64, st style, align float64) float64 {
	face := fr.face(st)
	lines := fr.wrap(s, w, face)
	lh := fr.mm(st.sizeMM * lineSpacing)
	fr.draw(func(dc *gg.Context) {
		dc.SetFontFace(face)
		dc.SetHexColor(st.color)
		for i, l := range lines {
			dc.DrawStringAnchored(l, x+w*align, y+float64(i)*lh+lh/2, align, 0.35)
		}
	})
	return float64(len(lines)) * lh
}

func (fr *frame) box(x, y, w float64, fill, stroke string, body func(ix, iy, iw float64) float64) float64 {
	idx := fr.reserve()
	pad := fr.mm(padMM)
	h := body(x+pad, y+pad, w-2*pad) + 2*pad
	r, lw := fr.mm(radiusMM), math.Max(1, fr.mm(strokeMM))
	fr.ops[idx] = func(dc *gg.Context) {
		dc.DrawRoundedRectangle(x+lw/2, y+lw/2, w-lw, h-lw, r)
		if fill != "" {
			dc.SetHexColor(fill)
			dc.FillPreserve()
		}
		dc.SetHexColor(stroke)
		dc.SetLineWidth(lw)
		dc.Stroke()
	}
	return h
}

func (fr *frame) fragment(f document.Fragment, x, y, w float64) float64 {
	switch f.Kind {
	case document.KindHeader:
		h := fr.text(f.Title, x, y, w, titleStyle, 0.5)
		for _, c := range f.Columns {
			h += fr.mm(gapMM)
			h += fr.box(x, y+h, w, "", colorBorder, func(ix, iy, iw float64) float64 {
				return fr.column(c, ix, iy, iw, headStyle)
			})
		}
		return h
	case document.KindFooter:
		h := 0.0
		for _, c := range f.Columns {
			for _, b := range c.Blocks {
				if n, ok := b.(document.Notice); ok {
					h += fr.text(n.Body, x, y+h, w, mutedStyle, 1)
					continue
				}
				h += fr.block(b, x, y+h, w)
			}
		}
		return h
	case document.KindError:
		return fr.box(x, y, w, colorErrorBg, colorError, func(ix, iy, iw float64) float64 {
			return fr.stack(f.Columns, ix, iy, iw)
		})
	case document.KindSummary:
		return fr.box(x, y, w, "", colorBorder, func(ix, iy, iw float64) float64 {
			h := fr.text(f.Title, ix, iy, iw, headStyle, 0)
			if len(f.Columns) > 0 {
				h += fr.mm(innerMM)
			}
			return h + fr.stack(f.Columns, ix, iy+h, iw)
		})
	default:
		return fr.box(x, y, w, "", colorBorder, func(ix, iy, iw float64) float64 {
			h := fr.text(f.Title, ix, iy, iw, headStyle, 0)
			if len(f.Columns) > 0 {
				h += fr.mm(innerMM)
			}
			return h + fr.row(f.Columns, ix, iy+h, iw)
		})
	}
}

// row places columns side by side and returns the tallest one.
func (fr *frame) row(cols []document.Column, x, y, w float64) float64 {
	if len(cols) == 0 {
		return 0
	}
	gap := fr.mm(gapMM)
	cw := (w - gap*float64(len(cols)-1)) / float64(len(cols))
	tallest := 0.0
	for i, c := range cols {
		h := fr.column(c, x+float64(i)*(cw+gap), y, cw, labelStyle)
		tallest = math.Max(tallest, h)
	}
	return tallest
}

// stack places columns one under another.
func (fr *frame) stack(cols []document.Column, x, y, w float64) float64 {
	h := 0.0
	for i, c := range cols {
		if i > 0 {
			h += fr.mm(gapMM)
		}
		h += fr.column(c, x, y+h, w, labelStyle)
	}
	return h
}

func (fr *frame) column(c document.Column, x, y, w float64, titled style) float64 {
	h := 0.0
	if c.Title != "" {
		h += fr.text(c.Title, x, y, w, titled, 0) + fr.mm(innerMM)
	}
	for i, b := range c.Blocks {
		if i > 0 {
			h += fr.mm(innerMM)
		}
		h += fr.block(b, x, y+h, w)
	}
	return h
}

func (fr *frame) block(b document.Block, x, y, w float64) float64 {
	switch b := b.(type) {
	case document.Text:
		return fr.text(b.Body, x, y, w, bodyStyle, 0)
	case document.Labeled:
		h := fr.text(b.Label, x, y, w, style{sizeMM: bodyMM, bold: true, color: b.Color}, 0)
		return h + fr.text(b.Body, x, y+h, w, bodyStyle, 0)
	case document.CookieAssets:
		return fr.cookieAssets(b, x, y, w)
	case document.Balance:
		pad := fr.mm(padMM)
		return pad + fr.text(fmt.Sprintf("%d%s", b.Amount, b.Unit), x, y+pad, w, figureStyle, 0.5) + pad
	case document.BadgeGrid:
		return fr.badgeGrid(b, x, y, w)
	case document.Notice:
		return fr.text(b.Body, x, y, w, mutedStyle, 0.5)
	case document.Prompt:
		return fr.prompt(b, x, y, w)
	case document.ErrorNote:
		h := fr.text(b.Title, x, y, w, errorStyle, 0) + fr.mm(innerMM)
		return h + fr.text(b.Message, x, y+h, w, bodyStyle, 0)
	}
	return 0
}

func (fr *frame) cookieAssets(b document.CookieAssets, x, y, w float64) float64 {
	d := math.Min(w, fr.mm(pieMM))
	cx, cy, r := x+w/2, y+d/2, d/2
	share := math.Max(0, math.Min(1, b.SavingPercent/100))
	fr.draw(func(dc *gg.Context) {
		dc.DrawCircle(cx, cy, r)
		dc.SetHexColor(document.ColorSpend)
		dc.Fill()
		if share > 0 {
			start := -math.Pi / 2
			dc.MoveTo(cx, cy)
			dc.DrawArc(cx, cy, r, start, start+2*math.Pi*share)
			dc.ClosePath()
			dc.SetHexColor(document.ColorSave)
			dc.Fill()
		}
		dc.DrawCircle(cx, cy, r*0.55)
		dc.SetRGB(1, 1, 1)
		dc.Fill()
	})
	lh := fr.mm(bodyMM * lineSpacing)
	fr.text(fmt.Sprintf("%s%%", pct(b.SavingPercent)), cx-r, cy-lh, 2*r, labelStyle, 0.5)
	fr.text("(저축)", cx-r, cy, 2*r, mutedStyle, 0.5)

	h := d + fr.mm(innerMM)
	for _, item := range []struct {
		label string
		value int
	}{
		{"총 획득 (수입)", b.Income},
		{"총 사용 (지출)", b.Used},
		{"남은 쿠키 (잔여)", b.Balance},
	} {
		ih := fr.text(item.label, x, y+h, w*0.65, bodyStyle, 0)
		fr.text(fmt.Sprintf("%d개", item.value), x+w*0.65, y+h, w*0.35, bodyStyle, 1)
		h += ih
	}
	return h
}

func (fr *frame) badgeGrid(b document.BadgeGrid, x, y, w float64) float64 {
	cell := math.Min(w, fr.mm(cellMM))
	perRow := int(math.Max(1, math.Floor(w/cell)))
	icon := fr.mm(iconMM)
	h := 0.0
	for start := 0; start < len(b.Badges); start += perRow {
		end := start + perRow
		if end > len(b.Badges) {
			end = len(b.Badges)
		}
		tallest := 0.0
		for i, badge := range b.Badges[start:end] {
			cx := x + float64(i)*cell + cell/2
			top := y + h
			fr.draw(func(dc *gg.Context) {
				dc.DrawCircle(cx, top+icon/2, icon/2)
				dc.SetHexColor(colorBadge)
				dc.Fill()
			})
			th := fr.text(badge.Title, cx-cell/2, top+icon+fr.mm(1), cell, mutedStyle, 0.5)
			tallest = math.Max(tallest, icon+fr.mm(1)+th)
		}
		h += tallest + fr.mm(innerMM)
	}
	return h
}

func (fr *frame) prompt(p document.Prompt, x, y, w float64) float64 {
	h := 0.0
	if p.Label != "" {
		h += fr.text(p.Label, x, y, w, labelStyle, 0) + fr.mm(1)
	}
	rows := p.Rows
	if rows <= 0 {
		rows = promptRow
	}
	minBody := float64(rows) * fr.mm(bodyMM*lineSpacing)
	h += fr.box(x, y+h, w, colorPrompt, colorBorder, func(ix, iy, iw float64) float64 {
		th := 0.0
		if p.Value != "" {
			th = fr.text(p.Value, ix, iy, iw, bodyStyle, 0)
		} else if p.Placeholder != "" {
			th = fr.text(p.Placeholder, ix, iy, iw, mutedStyle, 0)
		}
		return math.Max(th, minBody)
	})
	return h
}

// printable drops emoji and joiners the raster fonts cannot draw.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 0x1F000, r >= 0x2600 && r <= 0x27BF, r == 0xFE0F, r == 0x200D:
			return -1
		}
		return r
	}, s)
}

func pct(v float64) string { return fmt.Sprintf("%g", v) }
