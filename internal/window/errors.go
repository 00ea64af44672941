package window

import (
	"fmt"

	"github.com/cwhitesell/screengrab/internal/geometry"
)

// NotFoundError reports that no visible window title matched the query.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no window found with title containing %q", e.Query)
}

// InvalidGeometryError reports a matched window whose on-screen rectangle has
// no usable area, e.g. a minimized window.
type InvalidGeometryError struct {
	Title string
	Rect  geometry.Rect
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("window %q has invalid geometry %s", e.Title, e.Rect)
}
