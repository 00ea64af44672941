package screen

import (
	"image"

	"github.com/cwhitesell/screengrab/internal/geometry"
)

// Surface describes one attached display in global desktop coordinates.
type Surface struct {
	Index   int           `json:"index"`
	Bounds  geometry.Rect `json:"bounds"`
	Primary bool          `json:"primary"`
}

// Enumerator lists the currently attached display surfaces. Implementations
// must re-query the OS on every call: monitor layouts can change between
// requests, so topology is never cached here.
type Enumerator interface {
	// Surfaces returns all attached displays in enumeration order.
	// Returns an *EnumerationError when the platform cannot report
	// display topology.
	Surfaces() ([]Surface, error)
}

// RegionCapturer grabs the pixels of one rectangular desktop region.
type RegionCapturer interface {
	// CaptureRegion returns an RGBA image of exactly rect's width and
	// height, matching the screen contents at call time. Returns a
	// *CaptureError carrying rect when the underlying capture fails or
	// produces zero-sized output.
	CaptureRegion(rect geometry.Rect) (*image.RGBA, error)
}

// Backend is a platform screen-capture implementation.
type Backend interface {
	Enumerator
	RegionCapturer

	// Name returns a human-readable name for this backend
	Name() string

	// IsAvailable checks if this backend can be used in the current environment
	IsAvailable() bool

	// Close releases any resources held by the backend
	Close() error
}
