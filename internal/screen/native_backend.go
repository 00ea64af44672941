package screen

import (
	"errors"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/cwhitesell/screengrab/internal/geometry"
)

// NativeBackend enumerates and captures displays through the OS capture APIs
// (GDI on Windows, CoreGraphics on macOS, X shared memory on Linux).
type NativeBackend struct{}

// NewNativeBackend creates a new native backend
func NewNativeBackend() *NativeBackend {
	return &NativeBackend{}
}

// Name returns the backend name
func (b *NativeBackend) Name() string {
	return "native"
}

// IsAvailable checks if the OS reports at least one display
func (b *NativeBackend) IsAvailable() bool {
	return screenshot.NumActiveDisplays() > 0
}

// Close releases resources (the native backend holds none)
func (b *NativeBackend) Close() error {
	return nil
}

// Surfaces returns all active displays in enumeration order. Display 0 is the
// primary display in the underlying API.
func (b *NativeBackend) Surfaces() ([]Surface, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, &EnumerationError{Reason: "no active displays found"}
	}

	surfaces := make([]Surface, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		surfaces = append(surfaces, Surface{
			Index:   i,
			Bounds:  geometry.FromImageRect(bounds),
			Primary: i == 0,
		})
	}
	return surfaces, nil
}

// CaptureRegion captures one desktop region at its current contents.
func (b *NativeBackend) CaptureRegion(rect geometry.Rect) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, &CaptureError{Rect: rect, Err: errors.New("non-positive dimensions")}
	}

	img, err := screenshot.CaptureRect(rect.ImageRect())
	if err != nil {
		return nil, &CaptureError{Rect: rect, Err: err}
	}
	if img == nil || img.Bounds().Dx() != rect.Width || img.Bounds().Dy() != rect.Height {
		return nil, &CaptureError{Rect: rect, Err: errors.New("capture returned unexpected size")}
	}
	return img, nil
}
