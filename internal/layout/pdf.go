package layout

import (
	"bytes"
	"image"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

var pdfcpuInit sync.Once

// PDFWriter composes A4 page images in memory and writes them as one PDF on
// Save. Until Save is called nothing leaves the process.
type PDFWriter struct {
	dpi   float64
	pages []*image.RGBA
}

func NewPDFWriter(dpi float64) *PDFWriter {
	pdfcpuInit.Do(api.DisableConfigDir)
	if dpi <= 0 {
		dpi = DefaultExportDPI
	}
	return &PDFWriter{dpi: dpi}
}

func (w *PDFWriter) px(mm float64) int { return int(math.Round(mm * w.dpi / 25.4)) }

func (w *PDFWriter) AddPage() {
	page := image.NewRGBA(image.Rect(0, 0, w.px(PageWidthMM), w.px(PageHeightMM)))
	draw.Draw(page, page.Bounds(), image.White, image.Point{}, draw.Src)
	w.pages = append(w.pages, page)
}

func (w *PDFWriter) AddImage(img image.Image, x, y, wmm, hmm float64) error {
	if len(w.pages) == 0 {
		return errors.New("pdf: image added before any page")
	}
	page := w.pages[len(w.pages)-1]
	r := image.Rect(w.px(x), w.px(y), w.px(x+wmm), w.px(y+hmm))
	if r.Empty() {
		return errors.Errorf("pdf: empty image rectangle %v", r)
	}
	draw.CatmullRom.Scale(page, r, img, img.Bounds(), draw.Over, nil)
	return nil
}

func (w *PDFWriter) Pages() int { return len(w.pages) }

func (w *PDFWriter) Save(out io.Writer) error {
	if len(w.pages) == 0 {
		return errors.New("pdf: no pages")
	}
	imgs := make([]io.Reader, 0, len(w.pages))
	for i, p := range w.pages {
		var buf bytes.Buffer
		if err := gg.NewContextForRGBA(p).EncodePNG(&buf); err != nil {
			return errors.Wrapf(err, "pdf: encode page %d", i+1)
		}
		imgs = append(imgs, &buf)
	}
	imp, err := api.Import("form:A4, pos:full", types.POINTS)
	if err != nil {
		return errors.Wrap(err, "pdf: import description")
	}
	if err := api.ImportImages(nil, out, imgs, imp, nil); err != nil {
		return errors.Wrap(err, "pdf: write")
	}
	return nil
}
