package window

import (
	"github.com/cwhitesell/screengrab/internal/geometry"
)

// Info describes one visible top-level application window.
type Info struct {
	ID     uint32        `json:"id"`
	Title  string        `json:"title"`
	Class  string        `json:"class"`
	PID    int           `json:"pid"`
	Bounds geometry.Rect `json:"bounds"`
}

// Inspector defines the interface for window discovery backends (X11, etc.)
type Inspector interface {
	// ListWindows returns all visible application windows with their
	// screen-space bounding rectangles. Enumeration order is whatever the
	// platform reports; callers must not rely on a total order across
	// processes.
	ListWindows() ([]*Info, error)

	// Close closes the connection to the display server
	Close() error

	// Name returns the backend name (e.g., "x11")
	Name() string
}
