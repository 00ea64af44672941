// Package display watches the surface topology for layout changes.
package display

import (
	"sync"
	"time"

	"github.com/cwhitesell/screengrab/internal/logger"
	"github.com/cwhitesell/screengrab/internal/screen"
)

// DefaultPollInterval is how often the watcher re-queries the enumerator.
const DefaultPollInterval = 2 * time.Second

// Watcher polls display topology and notifies subscribers when monitors are
// attached, detached or repositioned. It is a notification surface only; the
// capture path re-queries the enumerator itself on every request.
type Watcher struct {
	enumerator screen.Enumerator
	interval   time.Duration

	mu        sync.RWMutex
	current   []screen.Surface
	listeners []chan []screen.Surface
	stopChan  chan struct{}
	running   bool
}

// NewWatcher creates a watcher. A non-positive interval falls back to
// DefaultPollInterval.
func NewWatcher(enumerator screen.Enumerator, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{
		enumerator: enumerator,
		interval:   interval,
	}
}

// Start primes the topology snapshot and begins polling. A stopped watcher
// can be started again.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	stop := make(chan struct{})
	w.stopChan = stop
	w.mu.Unlock()

	w.refresh()
	go w.poll(stop)
}

// Stop stops the polling loop.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.stopChan)
	w.running = false
}

// Current returns the last observed topology snapshot.
func (w *Watcher) Current() []screen.Surface {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]screen.Surface, len(w.current))
	copy(out, w.current)
	return out
}

// Subscribe adds a listener for topology changes.
func (w *Watcher) Subscribe() chan []screen.Surface {
	ch := make(chan []screen.Surface, 4)
	w.mu.Lock()
	w.listeners = append(w.listeners, ch)
	w.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener.
func (w *Watcher) Unsubscribe(ch chan []screen.Surface) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, listener := range w.listeners {
		if listener == ch {
			w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

func (w *Watcher) poll(stop <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.refresh()
		}
	}
}

// refresh re-queries topology and notifies listeners on change.
func (w *Watcher) refresh() {
	surfaces, err := w.enumerator.Surfaces()
	if err != nil {
		logger.WithComponent("display-watcher").Debug().
			Err(err).
			Msg("Topology query failed")
		return
	}

	w.mu.Lock()
	changed := !equalSurfaces(w.current, surfaces)
	if changed {
		w.current = surfaces
	}
	w.mu.Unlock()

	if !changed {
		return
	}

	logger.WithComponent("display-watcher").Info().
		Int("surfaces", len(surfaces)).
		Msg("Display topology changed")

	w.notifyListeners(surfaces)
}

// notifyListeners sends the snapshot to all listeners. The read lock is held
// across the sends so Unsubscribe cannot close a channel mid-notification.
func (w *Watcher) notifyListeners(surfaces []screen.Surface) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, listener := range w.listeners {
		select {
		case listener <- surfaces:
		default:
			// Skip if channel is full
		}
	}
}

func equalSurfaces(a, b []screen.Surface) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
