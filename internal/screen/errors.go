package screen

import (
	"fmt"

	"github.com/cwhitesell/screengrab/internal/geometry"
)

// EnumerationError reports that display topology could not be read: no
// displays attached, permission denied, or the display subsystem is
// unavailable.
type EnumerationError struct {
	Reason string
	Err    error
}

func (e *EnumerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("display enumeration failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("display enumeration failed: %s", e.Reason)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// CaptureError reports a failed raster capture of one region. Rect identifies
// the offending surface so multi-monitor failures stay attributable.
type CaptureError struct {
	Rect geometry.Rect
	Err  error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture of region %s failed: %v", e.Rect, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}
