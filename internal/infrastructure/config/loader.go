package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/pkg/filesystem"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

const (
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "TERMAGENT_CONFIG"
	// EnvEndpoint overrides backend.endpoint, matching the Ollama CLI.
	EnvEndpoint = "OLLAMA_HOST"
	// EnvModel overrides backend.model.
	EnvModel = "TERMAGENT_MODEL"
)

// FileLoader loads YAML configuration from ~/.termagent/config.yaml (overridable via TERMAGENT_CONFIG).
type FileLoader struct {
	overridePath string
	getenv       func(string) string
}

// NewFileLoader builds a new loader. An empty path uses the environment or the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, getenv: os.Getenv}
}

// Load implements ports.ConfigProvider. A missing file is created with defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, fmt.Errorf("create config directory: %w", err)
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := writeDefault(path, cfg); err != nil {
			return domain.Config{}, fmt.Errorf("write default config: %w", err)
		}
	case err != nil:
		return domain.Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg = l.applyEnv(hydrateDefaults(cfg))
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the file Load reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandHome(l.overridePath)
	}
	if custom := l.getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandHome(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

func (l *FileLoader) applyEnv(cfg domain.Config) domain.Config {
	if host := strings.TrimSpace(l.getenv(EnvEndpoint)); host != "" {
		cfg.Backend.Endpoint = normalizeHost(host)
	}
	if model := strings.TrimSpace(l.getenv(EnvModel)); model != "" {
		cfg.Backend.Model = model
	}
	return cfg
}

// normalizeHost accepts OLLAMA_HOST values such as "127.0.0.1:11434".
func normalizeHost(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return strings.TrimRight(host, "/")
	}
	return "http://" + strings.TrimRight(host, "/")
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// DefaultConfig is written on first run.
func DefaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Backend: domain.BackendSettings{
			Endpoint:       domain.DefaultBackendEndpoint,
			Model:          domain.DefaultModel,
			TimeoutSeconds: int(domain.DefaultBackendTimeout.Seconds()),
		},
		Session: domain.SessionSettings{
			HistorySize:        domain.DefaultHistorySize,
			PromptWindow:       domain.DefaultPromptWindow,
			OutputPreviewChars: domain.DefaultOutputPreviewChars,
		},
		Execution: domain.ExecutionSettings{
			Shell:          domain.DefaultShell,
			TimeoutSeconds: int(domain.DefaultCommandTimeout.Seconds()),
			ConfirmStyle:   domain.ConfirmStylePlain,
		},
		Security: domain.SecuritySettings{
			AdvisoryEnabled: true,
			RulesFile:       "~/.termagent/advisory.yaml",
		},
		History: domain.HistorySettings{
			Persist: true,
			Path:    "~/.termagent/history.db",
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Backend.Endpoint == "" {
		cfg.Backend.Endpoint = domain.DefaultBackendEndpoint
	}
	if cfg.Backend.Model == "" {
		cfg.Backend.Model = domain.DefaultModel
	}
	if cfg.Backend.TimeoutSeconds == 0 {
		cfg.Backend.TimeoutSeconds = int(domain.DefaultBackendTimeout.Seconds())
	}
	if cfg.Session.HistorySize == 0 {
		cfg.Session.HistorySize = domain.DefaultHistorySize
	}
	if cfg.Session.PromptWindow == 0 {
		cfg.Session.PromptWindow = domain.DefaultPromptWindow
	}
	if cfg.Session.OutputPreviewChars == 0 {
		cfg.Session.OutputPreviewChars = domain.DefaultOutputPreviewChars
	}
	if cfg.Execution.TimeoutSeconds == 0 {
		cfg.Execution.TimeoutSeconds = int(domain.DefaultCommandTimeout.Seconds())
	}
	if cfg.History.Path == "" {
		cfg.History.Path = "~/.termagent/history.db"
	}
	cfg.Security.RulesFile = filesystem.ExpandHome(cfg.Security.RulesFile)
	cfg.History.Path = filesystem.ExpandHome(cfg.History.Path)
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
