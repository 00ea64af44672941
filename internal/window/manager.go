package window

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwhitesell/screengrab/internal/logger"
)

// ErrNoInspector is returned when no window discovery backend is available.
var ErrNoInspector = errors.New("window inspection unavailable")

// Manager resolves windows by title on top of a discovery backend. The match
// is a plain substring comparison over typed window properties fetched through
// the display protocol; the query string is never handed to a shell or any
// other command interpreter, so control characters in it have no effect beyond
// their literal bytes.
type Manager struct {
	inspector Inspector
}

// NewManager creates a new window manager
func NewManager(inspector Inspector) *Manager {
	return &Manager{inspector: inspector}
}

// ListWindows returns all visible windows from the backend.
func (m *Manager) ListWindows() ([]*Info, error) {
	if m.inspector == nil {
		return nil, ErrNoInspector
	}
	return m.inspector.ListWindows()
}

// FindByTitle returns the first visible window whose title contains substr,
// compared case-insensitively. Windows are re-queried on every call. When
// several windows match, which one wins follows backend enumeration order and
// is not deterministic across processes.
//
// Returns *NotFoundError when nothing matches and *InvalidGeometryError when
// the matched window's rectangle has non-positive width or height.
func (m *Manager) FindByTitle(substr string) (*Info, error) {
	if m.inspector == nil {
		return nil, ErrNoInspector
	}

	windows, err := m.inspector.ListWindows()
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}

	needle := strings.ToLower(substr)
	for _, win := range windows {
		if win.Title == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(win.Title), needle) {
			continue
		}

		if win.Bounds.Empty() {
			return nil, &InvalidGeometryError{Title: win.Title, Rect: win.Bounds}
		}

		logger.WithComponent("window").Debug().
			Str("query", substr).
			Str("title", win.Title).
			Str("bounds", win.Bounds.String()).
			Msg("Matched window")
		return win, nil
	}

	return nil, &NotFoundError{Query: substr}
}
