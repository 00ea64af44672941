// Package pipeline wires the capture stages together: enumerate, capture,
// composite, normalize. It owns the per-surface timeout and the all-or-nothing
// multi-surface failure policy.
package pipeline

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/cwhitesell/screengrab/internal/compose"
	"github.com/cwhitesell/screengrab/internal/geometry"
	"github.com/cwhitesell/screengrab/internal/logger"
	"github.com/cwhitesell/screengrab/internal/normalize"
	"github.com/cwhitesell/screengrab/internal/screen"
	"github.com/cwhitesell/screengrab/internal/window"
)

// DefaultCaptureTimeout bounds each blocking capture call so a stalled OS
// drawing subsystem surfaces as an error instead of hanging the request.
const DefaultCaptureTimeout = 15 * time.Second

// Service runs the capture-and-composite pipeline. Requests are serialized:
// the transport in front of the service submits one request at a time, and the
// mutex makes that assumption hold even for direct callers.
type Service struct {
	enumerator screen.Enumerator
	capturer   screen.RegionCapturer
	windows    *window.Manager
	normalizer *normalize.Normalizer
	timeout    time.Duration
	mu         sync.Mutex
}

// New creates a pipeline service. A non-positive timeout falls back to
// DefaultCaptureTimeout.
func New(enumerator screen.Enumerator, capturer screen.RegionCapturer, windows *window.Manager, normalizer *normalize.Normalizer, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}
	if normalizer == nil {
		normalizer = normalize.New(0)
	}
	return &Service{
		enumerator: enumerator,
		capturer:   capturer,
		windows:    windows,
		normalizer: normalizer,
		timeout:    timeout,
	}
}

// Capture grabs the full virtual desktop, or a single window when windowTitle
// is non-empty, and returns the result as PNG bytes. Multi-monitor requests
// either fully composite or fully fail; there is no partial-success mode.
func (s *Service) Capture(ctx context.Context, windowTitle string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if windowTitle != "" {
		return s.captureWindow(ctx, windowTitle)
	}
	return s.captureDesktop(ctx)
}

// captureWindow resolves the window rectangle and captures that region.
func (s *Service) captureWindow(ctx context.Context, title string) ([]byte, error) {
	info, err := s.windows.FindByTitle(title)
	if err != nil {
		return nil, err
	}

	logger.WithComponent("pipeline").Debug().
		Str("title", info.Title).
		Str("bounds", info.Bounds.String()).
		Msg("Capturing window")

	img, err := s.captureRegion(ctx, info.Bounds)
	if err != nil {
		return nil, err
	}
	return s.normalizer.PNG(img)
}

// captureDesktop captures every surface and composites them into one canvas.
func (s *Service) captureDesktop(ctx context.Context) ([]byte, error) {
	surfaces, err := s.enumerator.Surfaces()
	if err != nil {
		return nil, err
	}
	if len(surfaces) == 0 {
		return nil, &screen.EnumerationError{Reason: "enumerator reported no surfaces"}
	}

	log := logger.WithComponent("pipeline")

	// Each surface gets its own capture attempt; a failure is recorded but
	// does not stop the remaining surfaces from being tried. The request as
	// a whole still fails on the first recorded error.
	layers := make([]compose.Layer, 0, len(surfaces))
	var firstErr error
	for _, surf := range surfaces {
		img, err := s.captureRegion(ctx, surf.Bounds)
		if err != nil {
			log.Warn().
				Err(err).
				Int("surface", surf.Index).
				Str("bounds", surf.Bounds.String()).
				Msg("Surface capture failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		layers = append(layers, compose.Layer{Image: img, Bounds: surf.Bounds})
	}
	if firstErr != nil {
		return nil, firstErr
	}

	// A single surface bypasses compositing entirely.
	if len(layers) == 1 {
		return s.normalizer.PNG(layers[0].Image)
	}

	canvas, err := compose.Composite(layers)
	if err != nil {
		return nil, err
	}
	return s.normalizer.PNG(canvas)
}

// captureRegion bounds one blocking capture call with a wall-clock deadline.
// When the deadline fires the OS call keeps running in its goroutine until it
// returns on its own; its result is then discarded.
func (s *Service) captureRegion(ctx context.Context, rect geometry.Rect) (*image.RGBA, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		img *image.RGBA
		err error
	}
	done := make(chan result, 1)
	go func() {
		img, err := s.capturer.CaptureRegion(rect)
		done <- result{img: img, err: err}
	}()

	select {
	case res := <-done:
		return res.img, res.err
	case <-ctx.Done():
		return nil, &screen.CaptureError{Rect: rect, Err: ctx.Err()}
	}
}
