package layout

import (
	"context"
	"image"

	"golang.org/x/image/draw"

	"github.com/mind-engage/growthreport/internal/document"
)

// CaptureOptions control one rendering pass. Pixels per millimetre of
// content are DPI/25.4*Scale, so a smaller scale yields a smaller surface
// for the same content width.
type CaptureOptions struct {
	Scale   float64
	WidthMM float64
	DPI     float64
}

// PxPerMM is the density of the captured surface in pixels per page mm.
func (o CaptureOptions) PxPerMM() float64 { return o.DPI / 25.4 }

// Capturer renders a document into a raster surface. The measuring pass and
// the final pass go through the same Capturer.
type Capturer interface {
	Capture(ctx context.Context, doc document.Document, opts CaptureOptions) (Surface, error)
}

// Surface is a rendered document, or a horizontal band of one.
type Surface interface {
	Width() int
	Height() int
	// Anchor is the y offset just below the forced-break fragment, or -1.
	Anchor() int
	Slice(offset, height int) Surface
	Image() image.Image
}

// ImageSurface is a Surface over an in-memory image.
type ImageSurface struct {
	img    image.Image
	anchor int
}

func NewImageSurface(img image.Image, anchor int) *ImageSurface {
	return &ImageSurface{img: img, anchor: anchor}
}

func (s *ImageSurface) Width() int  { return s.img.Bounds().Dx() }
func (s *ImageSurface) Height() int { return s.img.Bounds().Dy() }
func (s *ImageSurface) Anchor() int { return s.anchor }

func (s *ImageSurface) Image() image.Image { return s.img }

// Slice copies rows [offset, offset+height) clamped to the surface bounds.
// The result has no anchor.
func (s *ImageSurface) Slice(offset, height int) Surface {
	b := s.img.Bounds()
	if offset < 0 {
		offset = 0
	}
	if offset+height > b.Dy() {
		height = b.Dy() - offset
	}
	if height < 0 {
		height = 0
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), height))
	draw.Draw(dst, dst.Bounds(), s.img, image.Pt(b.Min.X, b.Min.Y+offset), draw.Src)
	return &ImageSurface{img: dst, anchor: -1}
}
