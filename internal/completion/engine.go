package completion

import (
	"context"
	"errors"
	"esign-web-server/internal/model"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrInvalidPDF  = errors.New("document is not a readable PDF")
	ErrMissingPage = errors.New("field references a page the document does not have")
)

// Page : размер страницы в единицах PDF
type Page struct {
	Width  float64
	Height float64
}

// Placement : прямоугольник в системе координат PDF (начало в левом нижнем углу)
type Placement struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Canvas : открытый PDF, на который накладываются значения полей.
// Индексы страниц начинаются с 0
type Canvas interface {
	Pages() []Page
	DrawImage(page int, img Image, at Placement) error
	DrawText(page int, text string, at Placement, fontSize float64) error
	Render() ([]byte, error)
}

type Loader interface {
	Load(source []byte) (Canvas, error)
}

type Options struct {
	// StrictPages : поле на несуществующей странице прерывает завершение вместо пропуска
	StrictPages bool
	// ReferenceWidth : ширина страницы, в которой клиент задавал координаты. 0 значит единицы PDF
	ReferenceWidth float64
	FontSize       float64
}

type Engine struct {
	loader Loader
	opts   Options
	logger *zap.Logger
	tracer trace.Tracer
}

func NewEngine(loader Loader, opts Options) *Engine {
	if opts.FontSize <= 0 {
		opts.FontSize = 12
	}
	return &Engine{
		loader: loader,
		opts:   opts,
		logger: zap.L().Named("completion"),
		tracer: otel.Tracer("esign/completion"),
	}
}

// MapToPage : переводит прямоугольник поля (начало слева сверху, y вниз) в координаты PDF.
// drawY = pageHeight - y - height
func MapToPage(field model.SignatureField, page Page, referenceWidth float64) Placement {
	scale := 1.0
	if referenceWidth > 0 && page.Width > 0 {
		scale = page.Width / referenceWidth
	}

	x := field.X * scale
	y := field.Y * scale
	width := field.Width * scale
	height := field.Height * scale

	return Placement{
		X:      x,
		Y:      page.Height - y - height,
		Width:  width,
		Height: height,
	}
}

// Complete : накладывает значения заполненных полей и возвращает новый PDF.
// Поля без значения пропускаются, исходные байты не изменяются
func (e *Engine) Complete(ctx context.Context, source []byte, fields []model.SignatureField) (_ []byte, err error) {
	ctx, span := e.tracer.Start(ctx, "completion.Complete")
	span.SetAttributes(attribute.Int("pdf.source_bytes", len(source)), attribute.Int("pdf.fields", len(fields)))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	canvas, err := e.loader.Load(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	pages := canvas.Pages()

	for i := range fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		field := &fields[i]
		if !field.Completed() {
			continue
		}

		pageIndex := field.PageNumber - 1
		if pageIndex < 0 || pageIndex >= len(pages) {
			if e.opts.StrictPages {
				return nil, fmt.Errorf("%w: field %s on page %d of %d", ErrMissingPage, field.UUID, field.PageNumber, len(pages))
			}
			e.logger.Warn("поле ссылается на отсутствующую страницу, пропускаем",
				zap.String("field_uuid", field.UUID),
				zap.Int("page_number", field.PageNumber),
				zap.Int("page_count", len(pages)))
			continue
		}

		placement := MapToPage(*field, pages[pageIndex], e.opts.ReferenceWidth)

		if field.Type.IsImage() {
			img, err := DecodeSignatureImage(field.Value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field.UUID, err)
			}
			scale := FitScale(img.Width, img.Height, placement.Width, placement.Height)
			placement.Width = float64(img.Width) * scale
			placement.Height = float64(img.Height) * scale
			if err := canvas.DrawImage(pageIndex, img, placement); err != nil {
				return nil, fmt.Errorf("field %s: %w", field.UUID, err)
			}
			continue
		}

		if err := canvas.DrawText(pageIndex, strings.TrimSpace(field.Value), placement, e.opts.FontSize); err != nil {
			return nil, fmt.Errorf("field %s: %w", field.UUID, err)
		}
	}

	return canvas.Render()
}
