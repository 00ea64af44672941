package geometry

import (
	"image"
	"testing"
)

func TestBoundingBox(t *testing.T) {
	tests := []struct {
		name  string
		rects []Rect
		want  Rect
	}{
		{
			name: "two monitors side by side",
			rects: []Rect{
				{X: 0, Y: 0, Width: 1920, Height: 1080},
				{X: 1920, Y: 0, Width: 1920, Height: 1080},
			},
			want: Rect{X: 0, Y: 0, Width: 3840, Height: 1080},
		},
		{
			name: "negative coordinates",
			rects: []Rect{
				{X: -1920, Y: 0, Width: 1920, Height: 1080},
				{X: 0, Y: 0, Width: 2560, Height: 1440},
			},
			want: Rect{X: -1920, Y: 0, Width: 4480, Height: 1440},
		},
		{
			name: "non-contiguous layout",
			rects: []Rect{
				{X: 0, Y: 0, Width: 100, Height: 100},
				{X: 500, Y: 700, Width: 100, Height: 100},
			},
			want: Rect{X: 0, Y: 0, Width: 600, Height: 800},
		},
		{
			name:  "single rect",
			rects: []Rect{{X: 10, Y: 20, Width: 30, Height: 40}},
			want:  Rect{X: 10, Y: 20, Width: 30, Height: 40},
		},
		{
			name:  "empty input",
			rects: nil,
			want:  Rect{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BoundingBox(tt.rects)
			if got != tt.want {
				t.Errorf("BoundingBox() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOffsetWithin(t *testing.T) {
	box := BoundingBox([]Rect{
		{X: -1920, Y: 0, Width: 1920, Height: 1080},
		{X: 0, Y: 0, Width: 2560, Height: 1440},
	})

	left := Rect{X: -1920, Y: 0, Width: 1920, Height: 1080}
	if got := left.OffsetWithin(box); got != image.Pt(0, 0) {
		t.Errorf("left monitor offset = %v, want (0,0)", got)
	}

	right := Rect{X: 0, Y: 0, Width: 2560, Height: 1440}
	if got := right.OffsetWithin(box); got != image.Pt(1920, 0) {
		t.Errorf("right monitor offset = %v, want (1920,0)", got)
	}
}

func TestOffsetWithinNeverNegative(t *testing.T) {
	rects := []Rect{
		{X: -300, Y: -200, Width: 640, Height: 480},
		{X: 1000, Y: 50, Width: 800, Height: 600},
		{X: -50, Y: 900, Width: 320, Height: 240},
	}
	box := BoundingBox(rects)

	for i, r := range rects {
		off := r.OffsetWithin(box)
		if off.X < 0 || off.Y < 0 {
			t.Errorf("rect %d offset %v is negative", i, off)
		}
		if off.X+r.Width > box.Width || off.Y+r.Height > box.Height {
			t.Errorf("rect %d at offset %v exceeds canvas %dx%d", i, off, box.Width, box.Height)
		}
	}
}

func TestEmpty(t *testing.T) {
	tests := []struct {
		rect Rect
		want bool
	}{
		{Rect{Width: 100, Height: 100}, false},
		{Rect{Width: 0, Height: 100}, true},
		{Rect{Width: 100, Height: 0}, true},
		{Rect{Width: -5, Height: 100}, true},
		{Rect{X: -100, Y: -100, Width: 1, Height: 1}, false},
	}

	for _, tt := range tests {
		if got := tt.rect.Empty(); got != tt.want {
			t.Errorf("%+v.Empty() = %v, want %v", tt.rect, got, tt.want)
		}
	}
}

func TestImageRectRoundTrip(t *testing.T) {
	r := Rect{X: -1920, Y: 0, Width: 1920, Height: 1080}
	got := FromImageRect(r.ImageRect())
	if got != r {
		t.Errorf("round trip = %+v, want %+v", got, r)
	}
}
