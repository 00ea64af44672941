package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cwhitesell/screengrab/internal/display"
	"github.com/cwhitesell/screengrab/internal/geometry"
	"github.com/cwhitesell/screengrab/internal/screen"
	"github.com/cwhitesell/screengrab/internal/window"
)

type fakeService struct {
	png       []byte
	err       error
	lastTitle string
}

func (f *fakeService) Capture(ctx context.Context, windowTitle string) ([]byte, error) {
	f.lastTitle = windowTitle
	return f.png, f.err
}

type fakeEnumerator struct {
	surfaces []screen.Surface
	err      error
}

func (f *fakeEnumerator) Surfaces() ([]screen.Surface, error) { return f.surfaces, f.err }

type fakeLister struct {
	windows []*window.Info
	err     error
}

func (f *fakeLister) ListWindows() ([]*window.Info, error) { return f.windows, f.err }

func newTestServer(svc CaptureService) *Server {
	return NewServer(svc, &fakeEnumerator{}, &fakeLister{}, nil)
}

func TestHandleCaptureSuccess(t *testing.T) {
	svc := &fakeService{png: []byte{0x89, 'P', 'N', 'G'}}
	srv := newTestServer(svc)

	req := httptest.NewRequest("GET", "/api/capture", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Data     string `json:"data"`
		MimeType string `json:"mimeType"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.MimeType != "image/png" {
		t.Errorf("mimeType = %q, want image/png", resp.MimeType)
	}
	decoded, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		t.Fatalf("data is not valid base64: %v", err)
	}
	if string(decoded) != string(svc.png) {
		t.Error("decoded payload differs from captured bytes")
	}
	if svc.lastTitle != "" {
		t.Errorf("window title = %q, want empty for desktop capture", svc.lastTitle)
	}
}

func TestHandleCaptureWindowTitleQuery(t *testing.T) {
	svc := &fakeService{png: []byte("png")}
	srv := newTestServer(svc)

	req := httptest.NewRequest("GET", "/api/capture?window_title=firefox", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.lastTitle != "firefox" {
		t.Errorf("window title = %q, want firefox", svc.lastTitle)
	}
}

func TestHandleCaptureWindowTitleBody(t *testing.T) {
	svc := &fakeService{png: []byte("png")}
	srv := newTestServer(svc)

	body := strings.NewReader(`{"window_title": "emacs"}`)
	req := httptest.NewRequest("POST", "/api/capture", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.lastTitle != "emacs" {
		t.Errorf("window title = %q, want emacs", svc.lastTitle)
	}
}

func TestHandleCaptureWindowNotFound(t *testing.T) {
	svc := &fakeService{err: &window.NotFoundError{Query: "Notepad"}}
	srv := newTestServer(svc)

	req := httptest.NewRequest("GET", "/api/capture?window_title=Notepad", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !strings.Contains(resp["error"], "Notepad") {
		t.Errorf("error message %q does not identify the failed query", resp["error"])
	}
}

func TestHandleCaptureInternalError(t *testing.T) {
	svc := &fakeService{err: &screen.CaptureError{
		Rect: geometry.Rect{X: 1920, Width: 1920, Height: 1080},
		Err:  errors.New("timed out"),
	}}
	srv := newTestServer(svc)

	req := httptest.NewRequest("GET", "/api/capture", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	// The error marker names the failing stage and rectangle, not a stack trace
	if !strings.Contains(resp["error"], "capture") {
		t.Errorf("error message %q does not identify the capture stage", resp["error"])
	}
}

func TestHandleGetDisplays(t *testing.T) {
	enum := &fakeEnumerator{surfaces: []screen.Surface{
		{Index: 0, Bounds: geometry.Rect{Width: 1920, Height: 1080}, Primary: true},
		{Index: 1, Bounds: geometry.Rect{X: 1920, Width: 1920, Height: 1080}},
	}}
	srv := NewServer(&fakeService{}, enum, &fakeLister{}, nil)

	req := httptest.NewRequest("GET", "/api/displays", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var surfaces []screen.Surface
	if err := json.NewDecoder(rec.Body).Decode(&surfaces); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(surfaces) != 2 {
		t.Errorf("got %d surfaces, want 2", len(surfaces))
	}
}

func TestHandleGetWindows(t *testing.T) {
	lister := &fakeLister{windows: []*window.Info{
		{ID: 1, Title: "Terminal", Bounds: geometry.Rect{Width: 80, Height: 24}},
	}}
	srv := NewServer(&fakeService{}, &fakeEnumerator{}, lister, nil)

	req := httptest.NewRequest("GET", "/api/windows", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var windows []*window.Info
	if err := json.NewDecoder(rec.Body).Decode(&windows); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(windows) != 1 || windows[0].Title != "Terminal" {
		t.Errorf("unexpected windows payload: %+v", windows)
	}
}

// settableEnumerator lets a test swap the reported topology mid-run.
type settableEnumerator struct {
	mu       sync.Mutex
	surfaces []screen.Surface
}

func (s *settableEnumerator) set(surfaces []screen.Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surfaces = surfaces
}

func (s *settableEnumerator) Surfaces() ([]screen.Surface, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surfaces, nil
}

func TestHandleDisplayStream(t *testing.T) {
	single := []screen.Surface{
		{Index: 0, Bounds: geometry.Rect{Width: 1920, Height: 1080}, Primary: true},
	}
	dual := append(single, screen.Surface{
		Index: 1, Bounds: geometry.Rect{X: 1920, Width: 1920, Height: 1080},
	})

	enum := &settableEnumerator{surfaces: single}
	watcher := display.NewWatcher(enum, 5*time.Millisecond)
	watcher.Start()
	defer watcher.Stop()

	srv := NewServer(&fakeService{}, enum, &fakeLister{}, watcher)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/displays/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	// The current snapshot arrives first, before any change
	var snapshot []screen.Surface
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("no initial snapshot: %v", err)
	}
	if len(snapshot) != 1 {
		t.Fatalf("initial snapshot has %d surfaces, want 1", len(snapshot))
	}

	enum.set(dual)

	var update []screen.Surface
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("no topology update: %v", err)
	}
	if len(update) != 2 {
		t.Errorf("update has %d surfaces, want 2", len(update))
	}
}

func TestHandleDisplayStreamClientDisconnect(t *testing.T) {
	single := []screen.Surface{
		{Index: 0, Bounds: geometry.Rect{Width: 1920, Height: 1080}, Primary: true},
	}
	dual := append(single, screen.Surface{
		Index: 1, Bounds: geometry.Rect{X: 1920, Width: 1920, Height: 1080},
	})

	enum := &settableEnumerator{surfaces: single}
	watcher := display.NewWatcher(enum, 5*time.Millisecond)
	watcher.Start()
	defer watcher.Stop()

	srv := NewServer(&fakeService{}, enum, &fakeLister{}, watcher)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/displays/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}

	var snapshot []screen.Surface
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("no initial snapshot: %v", err)
	}

	// Drop the client, then keep the topology churning so the stream handler
	// unsubscribes while notifications are in flight.
	conn.Close()
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			enum.set(dual)
		} else {
			enum.set(single)
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("server unreachable after client disconnect: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
}

func TestHandleDisplayStreamWithoutWatcher(t *testing.T) {
	srv := newTestServer(&fakeService{})

	req := httptest.NewRequest("GET", "/api/displays/stream", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&fakeService{})

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
