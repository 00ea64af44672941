package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cwhitesell/screengrab/internal/api"
	"github.com/cwhitesell/screengrab/internal/display"
	"github.com/cwhitesell/screengrab/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the screengrab HTTP server",
	Long: `Start the screengrab HTTP server.

The server exposes the capture pipeline over a small REST API: one capture
endpoint returning base64 PNG data, plus listings of the current display
topology and visible windows.`,
	Example: `  # Start server on default port (8080)
  screengrab serve

  # Start server on custom port
  screengrab serve --port 9090

  # Start with specific config file
  screengrab serve --config /path/to/config.yaml

  # Start with debug logging
  screengrab serve --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	cfg := stack.configMgr.Get()
	log := logger.WithComponent("serve")
	log.Info().
		Str("config", stack.configMgr.GetConfigPath()).
		Str("backend", stack.router.Name()).
		Msg("Configuration loaded")

	// Topology watcher feeds the /api/displays/stream websocket
	watcher := display.NewWatcher(stack.router, stack.configMgr.DisplayPollInterval())
	watcher.Start()
	defer watcher.Stop()

	server := api.NewServer(stack.service, stack.router, stack.windows, watcher)

	errChan := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		errChan <- server.Start(cfg.ServerPort)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-sigChan:
		log.Info().Msg("Shutting down")
		return nil
	}
}

// applyFlagOverrides copies viper-bound flag values over the loaded config.
func applyFlagOverrides(stack *captureStack) {
	if viper.IsSet("server_port") {
		if port := viper.GetInt("server_port"); port > 0 {
			stack.configMgr.SetPort(port)
		}
	}
	if viper.IsSet("log_level") {
		if level := viper.GetString("log_level"); level != "" {
			stack.configMgr.SetLogLevel(level)
		}
	}
}
