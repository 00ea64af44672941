// Package geometry holds the rectangle math shared by the capture pipeline.
//
// All rectangles live in the desktop's global coordinate space: the origin is
// platform-defined (not necessarily the primary display) and coordinates may
// be negative, e.g. for a monitor positioned left of the primary.
package geometry

import (
	"fmt"
	"image"
)

// Rect is an axis-aligned rectangle in global desktop coordinates.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// FromImageRect converts a stdlib image.Rectangle to a Rect.
func FromImageRect(r image.Rectangle) Rect {
	return Rect{
		X:      r.Min.X,
		Y:      r.Min.Y,
		Width:  r.Dx(),
		Height: r.Dy(),
	}
}

// ImageRect converts the Rect to a stdlib image.Rectangle.
func (r Rect) ImageRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether the rectangle has no usable area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d%+d%+d", r.Width, r.Height, r.X, r.Y)
}

// BoundingBox returns the minimal rectangle covering all inputs. The result's
// X/Y are the minimum coordinates across all rectangles, so a rectangle at the
// minimum corner maps to offset (0,0) within the box. Returns the zero Rect
// for an empty input.
func BoundingBox(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}

	minX, minY := rects[0].X, rects[0].Y
	maxX, maxY := rects[0].X+rects[0].Width, rects[0].Y+rects[0].Height

	for _, r := range rects[1:] {
		if r.X < minX {
			minX = r.X
		}
		if r.Y < minY {
			minY = r.Y
		}
		if r.X+r.Width > maxX {
			maxX = r.X + r.Width
		}
		if r.Y+r.Height > maxY {
			maxY = r.Y + r.Height
		}
	}

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// OffsetWithin returns r's placement offset inside box, i.e. where r's
// top-left corner lands when box's top-left corner maps to (0,0).
func (r Rect) OffsetWithin(box Rect) image.Point {
	return image.Pt(r.X-box.X, r.Y-box.Y)
}
