package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/cwhitesell/screengrab/internal/display"
	"github.com/cwhitesell/screengrab/internal/logger"
	"github.com/cwhitesell/screengrab/internal/screen"
	"github.com/cwhitesell/screengrab/internal/window"
)

// CaptureService is the single operation the host layer exposes: capture the
// desktop, or one window when windowTitle is non-empty, as PNG bytes.
type CaptureService interface {
	Capture(ctx context.Context, windowTitle string) ([]byte, error)
}

// WindowLister enumerates visible application windows.
type WindowLister interface {
	ListWindows() ([]*window.Info, error)
}

// Server represents the HTTP API server
type Server struct {
	router     *mux.Router
	service    CaptureService
	enumerator screen.Enumerator
	windows    WindowLister
	watcher    *display.Watcher
	upgrader   websocket.Upgrader
}

// captureResponse is the success envelope for /api/capture.
type captureResponse struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

// NewServer creates a new API server
func NewServer(service CaptureService, enumerator screen.Enumerator, windows WindowLister, watcher *display.Watcher) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		service:    service,
		enumerator: enumerator,
		windows:    windows,
		watcher:    watcher,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/capture", s.handleCapture).Methods("GET", "POST")
	api.HandleFunc("/displays", s.handleGetDisplays).Methods("GET")
	api.HandleFunc("/displays/stream", s.handleDisplayStream)
	api.HandleFunc("/windows", s.handleGetWindows).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the root HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	return s.enableCORS(s.router)
}

// Start starts the HTTP server
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logger.WithComponent("api").Info().Str("addr", addr).Msg("Starting server")
	return http.ListenAndServe(addr, s.Handler())
}

// enableCORS adds CORS headers
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleCapture runs the capture pipeline and returns base64 PNG data. The
// window title comes from the "window_title" query parameter, or from a JSON
// body {"window_title": "..."} on POST.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("window_title")

	if r.Method == http.MethodPost && r.Body != nil {
		var req struct {
			WindowTitle string `json:"window_title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		} else if req.WindowTitle != "" {
			title = req.WindowTitle
		}
	}

	png, err := s.service.Capture(r.Context(), title)
	if err != nil {
		logger.WithComponent("api").Error().
			Err(err).
			Str("window_title", title).
			Msg("Capture failed")
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(captureResponse{
		Data:     base64.StdEncoding.EncodeToString(png),
		MimeType: "image/png",
	})
}

func (s *Server) handleGetDisplays(w http.ResponseWriter, r *http.Request) {
	surfaces, err := s.enumerator.Surfaces()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(surfaces)
}

func (s *Server) handleGetWindows(w http.ResponseWriter, r *http.Request) {
	windows, err := s.windows.ListWindows()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(windows)
}

// handleDisplayStream pushes topology snapshots over a websocket whenever the
// monitor layout changes.
func (s *Server) handleDisplayStream(w http.ResponseWriter, r *http.Request) {
	if s.watcher == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("display watching not enabled"))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithComponent("api").Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := s.watcher.Subscribe()
	defer s.watcher.Unsubscribe(updates)

	// Send the current snapshot first
	if err := conn.WriteJSON(s.watcher.Current()); err != nil {
		return
	}

	for surfaces := range updates {
		if err := conn.WriteJSON(surfaces); err != nil {
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// statusFor maps pipeline failures to HTTP status codes.
func statusFor(err error) int {
	var notFound *window.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	var invalidGeom *window.InvalidGeometryError
	if errors.As(err, &invalidGeom) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError surfaces a short stage-identifying message, never a stack trace.
func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
