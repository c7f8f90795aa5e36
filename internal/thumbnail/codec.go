// Package thumbnail turns uploaded image bytes into bounded JPEG previews.
package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Quality is the fixed JPEG quality thumbnails are re-encoded at, regardless
// of the original format, to bound their size.
const Quality = 85

// ErrInvalidFileType is returned when the declared filename extension is not
// in the allow-list. Checked before any decode work.
var ErrInvalidFileType = errors.New("unsupported file type")

// ErrDecode is returned when the byte buffer cannot be parsed as an image of
// a supported format.
var ErrDecode = errors.New("corrupt or unreadable image")

// AllowedExtension reports whether filename carries one of the allowed
// extensions (lowercase, without dots), case-insensitively.
func AllowedExtension(filename string, allowed []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// Generate decodes data and produces a JPEG thumbnail that fits within
// maxWidth x maxHeight while preserving aspect ratio. Images are never
// upscaled, cropped, or distorted. Inputs with an alpha channel are
// composited onto an opaque white background first, so the result is always
// fully opaque RGB.
//
// Generate is a pure transform: no filesystem or network access.
func Generate(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	img = flattenOntoWhite(img)

	// Fit keeps aspect ratio and refuses to upscale; Lanczos avoids aliasing.
	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// flattenOntoWhite composites images that may carry transparency (alpha or
// palette modes) onto an opaque white background. Already-opaque images pass
// through untouched.
func flattenOntoWhite(img image.Image) image.Image {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64, *image.Paletted:
		bounds := img.Bounds()
		flat := image.NewRGBA(bounds)
		draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.Draw(flat, bounds, img, bounds.Min, draw.Over)
		return flat
	default:
		return img
	}
}

// Dimensions decodes just enough of data to report its width and height.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return cfg.Width, cfg.Height, nil
}
