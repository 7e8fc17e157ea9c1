package util

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// EncodeDataURI builds a base64 data URI accepted by DecodeImageDataURI.
func EncodeDataURI(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

// PlaceholderPNG renders a size x size square filled with fill.
func PlaceholderPNG(size int, fill color.Color) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("placeholder size must be positive, got %d", size)
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}
