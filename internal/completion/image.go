package completion

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"strings"
)

// Image : декодированная картинка подписи
type Image struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

var ErrUndecodableImage = errors.New("signature image is neither PNG nor JPEG")

// DecodeSignatureImage : принимает data URL (data:image/png;base64,...) или голый base64.
// Сначала пробуется PNG, затем JPEG
func DecodeSignatureImage(value string) (Image, error) {
	payload := strings.TrimSpace(value)
	if strings.HasPrefix(payload, "data:") {
		_, encoded, found := strings.Cut(payload, ",")
		if !found {
			return Image{}, fmt.Errorf("malformed data URL")
		}
		payload = encoded
	}

	raw, err := decodeBase64(payload)
	if err != nil {
		return Image{}, fmt.Errorf("signature image is not valid base64: %w", err)
	}

	if cfg, err := png.DecodeConfig(bytes.NewReader(raw)); err == nil {
		return Image{Data: raw, Format: "png", Width: cfg.Width, Height: cfg.Height}, nil
	}
	if cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw)); err == nil {
		return Image{Data: raw, Format: "jpeg", Width: cfg.Width, Height: cfg.Height}, nil
	}

	return Image{}, ErrUndecodableImage
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, payload)

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return raw, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

// FitScale : масштаб, при котором картинка целиком входит в рамку с сохранением пропорций
func FitScale(imageWidth, imageHeight int, boxWidth, boxHeight float64) float64 {
	if imageWidth <= 0 || imageHeight <= 0 {
		return 0
	}
	scaleX := boxWidth / float64(imageWidth)
	scaleY := boxHeight / float64(imageHeight)
	if scaleX < scaleY {
		return scaleX
	}
	return scaleY
}
