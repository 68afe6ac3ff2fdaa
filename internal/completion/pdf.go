package completion

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFLoader : Canvas поверх pdfcpu, значения накладываются штампами поверх содержимого страницы
type PDFLoader struct {
	conf *pdfmodel.Configuration
}

func NewPDFLoader() *PDFLoader {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return &PDFLoader{conf: conf}
}

func (l *PDFLoader) Load(source []byte) (Canvas, error) {
	dims, err := api.PageDims(bytes.NewReader(source), l.conf)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, len(dims))
	for i, dim := range dims {
		pages[i] = Page{Width: dim.Width, Height: dim.Height}
	}

	return &pdfCanvas{
		source: source,
		pages:  pages,
		stamps: map[int][]*pdfmodel.Watermark{},
		conf:   l.conf,
	}, nil
}

type pdfCanvas struct {
	source []byte
	pages  []Page
	stamps map[int][]*pdfmodel.Watermark // ключ: номер страницы с 1
	conf   *pdfmodel.Configuration
}

func (c *pdfCanvas) Pages() []Page {
	return c.pages
}

func (c *pdfCanvas) DrawImage(page int, img Image, at Placement) error {
	scale := 1.0
	if img.Width > 0 {
		scale = at.Width / float64(img.Width)
	}

	desc := fmt.Sprintf("position:bl, offset:%.2f %.2f, scalefactor:%.4f abs, rotation:0, opacity:1", at.X, at.Y, scale)
	wm, err := api.ImageWatermarkForReader(bytes.NewReader(img.Data), desc, true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("не удалось подготовить изображение: %w", err)
	}

	c.stamps[page+1] = append(c.stamps[page+1], wm)
	return nil
}

func (c *pdfCanvas) DrawText(page int, text string, at Placement, fontSize float64) error {
	if text == "" {
		return nil
	}

	desc := fmt.Sprintf("fontname:Helvetica, points:%d, position:bl, offset:%.2f %.2f, scalefactor:1 abs, rotation:0, fillcolor:#000000, opacity:1",
		int(fontSize), at.X, at.Y)
	wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("не удалось подготовить текст: %w", err)
	}

	c.stamps[page+1] = append(c.stamps[page+1], wm)
	return nil
}

// Render : без штампов возвращает копию исходного файла
func (c *pdfCanvas) Render() ([]byte, error) {
	if len(c.stamps) == 0 {
		return append([]byte(nil), c.source...), nil
	}

	var out bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(c.source), &out, c.stamps, c.conf); err != nil {
		return nil, fmt.Errorf("не удалось записать PDF: %w", err)
	}
	return out.Bytes(), nil
}
