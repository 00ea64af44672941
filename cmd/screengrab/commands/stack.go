package commands

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/cwhitesell/screengrab/internal/config"
	"github.com/cwhitesell/screengrab/internal/logger"
	"github.com/cwhitesell/screengrab/internal/normalize"
	"github.com/cwhitesell/screengrab/internal/pipeline"
	"github.com/cwhitesell/screengrab/internal/screen"
	"github.com/cwhitesell/screengrab/internal/window"
)

// captureStack bundles the components every command needs: config, the screen
// backend router, the window manager and the assembled pipeline service.
type captureStack struct {
	configMgr *config.Manager
	router    *screen.Router
	inspector window.Inspector
	windows   *window.Manager
	service   *pipeline.Service
}

// buildStack loads config, initializes logging and brings up the capture
// backends.
func buildStack() (*captureStack, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	stack := &captureStack{configMgr: configMgr}
	applyFlagOverrides(stack)

	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, true)

	backend := cfg.CaptureBackend
	if viper.IsSet("capture_backend") {
		if v := viper.GetString("capture_backend"); v != "" {
			backend = v
		}
	}

	stack.router = screen.NewRouter(backend)
	if err := stack.router.Start(); err != nil {
		return nil, fmt.Errorf("failed to start capture backend: %w", err)
	}

	// Window inspection is optional: without it, full-desktop capture still
	// works and window requests fail with a clear error.
	inspector, err := window.NewX11Inspector()
	if err != nil {
		logger.WithComponent("stack").Warn().
			Err(err).
			Msg("Window inspection unavailable")
	} else {
		stack.inspector = inspector
	}
	stack.windows = window.NewManager(stack.inspector)

	stack.service = pipeline.New(
		stack.router,
		stack.router,
		stack.windows,
		normalize.New(cfg.MaxOutputWidth),
		configMgr.CaptureTimeout(),
	)

	return stack, nil
}

// Close releases backend connections.
func (s *captureStack) Close() {
	if s.inspector != nil {
		s.inspector.Close()
	}
	if s.router != nil {
		s.router.Stop()
	}
}
