// Package compose flattens per-surface captures into one canvas.
package compose

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/cwhitesell/screengrab/internal/geometry"
)

// maxCanvasPixels caps the composited canvas allocation (~512 MiB of RGBA).
// Monitor layouts large enough to exceed this are treated as corrupt input.
const maxCanvasPixels = 128 << 20

// Layer pairs one captured bitmap with the desktop rectangle it was captured
// from. Layers are consumed once by Composite.
type Layer struct {
	Image  *image.RGBA
	Bounds geometry.Rect
}

// CompositeError reports inconsistent layer input or an unreasonable canvas.
type CompositeError struct {
	Reason string
}

func (e *CompositeError) Error() string {
	return "composite failed: " + e.Reason
}

// Composite places each layer onto a canvas covering the bounding box of all
// layer rectangles. The minimum X/Y across all rectangles map to the canvas
// origin, so every placement offset is non-negative. The background is opaque
// black; overlapping layers resolve last-writer-wins. Layouts are not expected
// to overlap, but overlap is tolerated, not rejected.
//
// Callers with a single capture should skip compositing entirely; Composite
// requires at least two layers.
func Composite(layers []Layer) (*image.RGBA, error) {
	if len(layers) < 2 {
		return nil, &CompositeError{Reason: fmt.Sprintf("need at least 2 layers, got %d", len(layers))}
	}

	rects := make([]geometry.Rect, len(layers))
	for i, layer := range layers {
		if layer.Image == nil {
			return nil, &CompositeError{Reason: fmt.Sprintf("layer %d has no image", i)}
		}
		got := layer.Image.Bounds()
		if got.Dx() != layer.Bounds.Width || got.Dy() != layer.Bounds.Height {
			return nil, &CompositeError{Reason: fmt.Sprintf(
				"layer %d dimensions %dx%d disagree with declared rectangle %s",
				i, got.Dx(), got.Dy(), layer.Bounds)}
		}
		rects[i] = layer.Bounds
	}

	box := geometry.BoundingBox(rects)
	if box.Empty() {
		return nil, &CompositeError{Reason: fmt.Sprintf("bounding box %s has no area", box)}
	}
	if int64(box.Width)*int64(box.Height) > maxCanvasPixels {
		return nil, &CompositeError{Reason: fmt.Sprintf(
			"canvas %dx%d exceeds pixel ceiling", box.Width, box.Height)}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, box.Width, box.Height))
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)

	for _, layer := range layers {
		offset := layer.Bounds.OffsetWithin(box)
		dst := image.Rect(offset.X, offset.Y, offset.X+layer.Bounds.Width, offset.Y+layer.Bounds.Height)
		draw.Draw(canvas, dst, layer.Image, layer.Image.Bounds().Min, draw.Src)
	}

	return canvas, nil
}
