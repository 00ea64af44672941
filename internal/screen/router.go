package screen

import (
	"fmt"
	"image"
	"sync"

	"github.com/cwhitesell/screengrab/internal/geometry"
	"github.com/cwhitesell/screengrab/internal/logger"
)

// Router selects an available capture backend and delegates to it.
type Router struct {
	preference string
	backend    Backend
	mu         sync.RWMutex
	started    bool
}

// NewRouter creates a router. preference is "auto", "native" or "x11".
func NewRouter(preference string) *Router {
	if preference == "" {
		preference = "auto"
	}
	return &Router{preference: preference}
}

// Start initializes the preferred backend, falling back to whatever is
// available when the preference is "auto".
func (r *Router) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	log := logger.WithComponent("screen-router")

	var candidates []string
	switch r.preference {
	case "auto":
		candidates = []string{"native", "x11"}
	default:
		candidates = []string{r.preference}
	}

	for _, name := range candidates {
		backend, err := r.open(name)
		if err != nil {
			log.Warn().Err(err).Str("backend", name).Msg("Capture backend not available")
			continue
		}
		if !backend.IsAvailable() {
			backend.Close()
			log.Warn().Str("backend", name).Msg("Capture backend reports no displays")
			continue
		}
		r.backend = backend
		r.started = true
		log.Info().Str("backend", backend.Name()).Msg("Capture backend initialized")
		return nil
	}

	return &EnumerationError{Reason: fmt.Sprintf("no capture backend available (preference %q)", r.preference)}
}

func (r *Router) open(name string) (Backend, error) {
	switch name {
	case "native":
		return NewNativeBackend(), nil
	case "x11":
		return NewX11Backend()
	default:
		return nil, fmt.Errorf("unknown capture backend %q", name)
	}
}

// Stop closes the active backend.
func (r *Router) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend != nil {
		r.backend.Close()
		r.backend = nil
	}
	r.started = false
	return nil
}

// Name returns the active backend's name, or "none".
func (r *Router) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.backend == nil {
		return "none"
	}
	return r.backend.Name()
}

// Surfaces delegates to the active backend.
func (r *Router) Surfaces() ([]Surface, error) {
	backend, err := r.active()
	if err != nil {
		return nil, err
	}
	return backend.Surfaces()
}

// CaptureRegion delegates to the active backend.
func (r *Router) CaptureRegion(rect geometry.Rect) (*image.RGBA, error) {
	backend, err := r.active()
	if err != nil {
		return nil, &CaptureError{Rect: rect, Err: err}
	}
	return backend.CaptureRegion(rect)
}

func (r *Router) active() (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.backend == nil {
		return nil, &EnumerationError{Reason: "no capture backend started"}
	}
	return r.backend, nil
}
