package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tasklist/internal/observability/jsonlog"
)

type Backend string

const (
	BackendMemory      Backend = "memory"
	BackendSQLite      Backend = "sqlite"
	BackendPostgres    Backend = "postgres"
	BackendMySQL       Backend = "mysql"
	BackendGoogleTasks Backend = "googletasks"
)

type Config struct {
	Addr            string
	Backend         Backend
	DSN             string
	LogLevel        slog.Level
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Google Tasks only.
	GoogleConfigDir string
	GoogleListID    string
}

// Load reads the server configuration from the environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{
		Addr:            getenv("TASKS_ADDR"),
		Backend:         Backend(strings.ToLower(strings.TrimSpace(getenv("TASKS_BACKEND")))),
		DSN:             getenv("TASKS_DSN"),
		GoogleConfigDir: getenv("TASKS_GOOGLE_CONFIG_DIR"),
		GoogleListID:    getenv("TASKS_GOOGLE_LIST"),
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendSQLite
	}
	if cfg.DSN == "" {
		cfg.DSN = getenv("DB_URL")
	}

	lvl, err := jsonlog.ParseLevel(getenv("TASKS_LOG_LEVEL"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = lvl

	if cfg.RequestTimeout, err = durationOr(getenv("TASKS_REQUEST_TIMEOUT"), 3*time.Second); err != nil {
		return Config{}, fmt.Errorf("TASKS_REQUEST_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout, err = durationOr(getenv("TASKS_SHUTDOWN_TIMEOUT"), 5*time.Second); err != nil {
		return Config{}, fmt.Errorf("TASKS_SHUTDOWN_TIMEOUT: %w", err)
	}

	switch cfg.Backend {
	case BackendMemory:
	case BackendSQLite:
		if cfg.DSN == "" {
			cfg.DSN = "tasks.db"
		}
	case BackendPostgres, BackendMySQL:
		if cfg.DSN == "" {
			return Config{}, fmt.Errorf("TASKS_DSN is required for backend %q", cfg.Backend)
		}
	case BackendGoogleTasks:
		if cfg.GoogleConfigDir == "" {
			cfg.GoogleConfigDir = defaultGoogleConfigDir(getenv)
		}
		if cfg.GoogleListID == "" {
			cfg.GoogleListID = "@default"
		}
	default:
		return Config{}, errors.New("TASKS_BACKEND must be one of memory, sqlite, postgres, mysql, googletasks")
	}
	return cfg, nil
}

func durationOr(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("must be positive")
	}
	return d, nil
}

// defaultGoogleConfigDir uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func defaultGoogleConfigDir(getenv func(string) string) string {
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tasklist")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "tasklist"
	}
	return filepath.Join(home, ".config", "tasklist")
}
