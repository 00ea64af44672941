// Package normalize enforces the output contract: one PNG, bounded width.
package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
)

// DefaultMaxWidth is the output width ceiling applied when none is configured.
const DefaultMaxWidth = 2560

// EncodingError reports a resize or encode failure on supposedly valid image
// data. Upstream contracts should make this unreachable; treat it as an
// internal-invariant violation rather than a user error.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("image encoding failed: %v", e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Normalizer re-encodes images to PNG, downscaling those wider than the
// configured ceiling. It never upscales.
type Normalizer struct {
	maxWidth int
}

// New creates a normalizer with the given width ceiling. Non-positive values
// fall back to DefaultMaxWidth.
func New(maxWidth int) *Normalizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	return &Normalizer{maxWidth: maxWidth}
}

// MaxWidth returns the configured width ceiling.
func (n *Normalizer) MaxWidth() int {
	return n.maxWidth
}

// PNG returns img re-encoded as PNG. Images wider than the ceiling are scaled
// down proportionally to the ceiling width; smaller images pass through at
// their original size.
func (n *Normalizer) PNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, &EncodingError{Err: errors.New("nil image")}
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, &EncodingError{Err: fmt.Errorf("empty image %dx%d", bounds.Dx(), bounds.Dy())}
	}

	if bounds.Dx() > n.maxWidth {
		height := int(math.Round(float64(bounds.Dy()) * float64(n.maxWidth) / float64(bounds.Dx())))
		if height < 1 {
			height = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, n.maxWidth, height))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &EncodingError{Err: err}
	}
	return buf.Bytes(), nil
}
