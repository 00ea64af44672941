package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwhitesell/screengrab/internal/logger"
)

// Config represents the application configuration
type Config struct {
	ServerPort             int    `json:"server_port" yaml:"server_port"`
	LogLevel               string `json:"log_level" yaml:"log_level"`
	CaptureBackend         string `json:"capture_backend" yaml:"capture_backend"`
	MaxOutputWidth         int    `json:"max_output_width" yaml:"max_output_width"`
	CaptureTimeoutSec      int    `json:"capture_timeout_sec" yaml:"capture_timeout_sec"`
	DisplayPollIntervalSec int    `json:"display_poll_interval_sec" yaml:"display_poll_interval_sec"`
}

// Manager handles loading and persisting the configuration file
type Manager struct {
	config     *Config
	configPath string
	mu         sync.RWMutex
}

// NewManager loads the config file, creating it with defaults when missing.
// An empty configFile selects ~/.config/screengrab/config.yaml.
func NewManager(configFile string) (*Manager, error) {
	actualConfigPath := configFile
	if actualConfigPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir := filepath.Join(homeDir, ".config", "screengrab")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		actualConfigPath = filepath.Join(configDir, "config.yaml")
	}

	m := &Manager{configPath: actualConfigPath}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			m.config = getDefaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return m, nil
}

// getDefaults returns default configuration
func getDefaults() *Config {
	return &Config{
		ServerPort:             8080,
		LogLevel:               "info",
		CaptureBackend:         "auto",
		MaxOutputWidth:         2560,
		CaptureTimeoutSec:      15,
		DisplayPollIntervalSec: 2,
	}
}

// load reads the configuration from disk
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// Fill gaps left by older or hand-edited config files
	defaults := getDefaults()
	if cfg.ServerPort <= 0 {
		cfg.ServerPort = defaults.ServerPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.CaptureBackend == "" {
		cfg.CaptureBackend = defaults.CaptureBackend
	}
	if cfg.MaxOutputWidth <= 0 {
		cfg.MaxOutputWidth = defaults.MaxOutputWidth
	}
	if cfg.CaptureTimeoutSec <= 0 {
		cfg.CaptureTimeoutSec = defaults.CaptureTimeoutSec
	}
	if cfg.DisplayPollIntervalSec <= 0 {
		cfg.DisplayPollIntervalSec = defaults.DisplayPollIntervalSec
	}

	m.config = &cfg
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.config
}

// GetConfigPath returns the config file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// SetPort overrides the server port
func (m *Manager) SetPort(port int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.ServerPort = port
}

// SetLogLevel overrides the log level
func (m *Manager) SetLogLevel(level string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.LogLevel = level
}

// SetMaxOutputWidth overrides the output width ceiling
func (m *Manager) SetMaxOutputWidth(width int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.MaxOutputWidth = width
}

// CaptureTimeout returns the per-surface capture timeout as a duration.
func (m *Manager) CaptureTimeout() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.CaptureTimeoutSec) * time.Second
}

// DisplayPollInterval returns the topology poll interval as a duration.
func (m *Manager) DisplayPollInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.DisplayPollIntervalSec) * time.Second
}
