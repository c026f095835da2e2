// Package config contains everything related to configuration
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/reader-usage-dashboard/internal/models"
)

// Config holds the application configuration.
type Config struct {
	Location        *time.Location
	DatabasePath    string
	ReportUserID    string
	LogPath         string
	RefreshInterval time.Duration
	LogLevel        slog.Level
	Window          models.TimeRange
	Notifications   bool
}

// Default values
const (
	defaultRefreshInterval = 30 * time.Second
	minRefreshInterval     = time.Second
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		DatabasePath:    getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		ReportUserID:    getEnvString("REPORT_USER_ID", ""),
		LogPath:         getEnvString("LOG_PATH", ""),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", defaultRefreshInterval),
		Notifications:   getEnvBool("NOTIFICATIONS", true),
		Location:        time.Local,
	}

	if cfg.RefreshInterval < minRefreshInterval {
		cfg.RefreshInterval = minRefreshInterval
	}

	if tz := os.Getenv("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("failed to load TIMEZONE %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	level, err := parseLevel(getEnvString("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	window, ok := models.ParseTimeRange(os.Getenv("REPORT_WINDOW"))
	if !ok {
		return nil, fmt.Errorf("invalid REPORT_WINDOW %q (want all, 30d, 7d or 24h)", os.Getenv("REPORT_WINDOW"))
	}
	cfg.Window = window

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "reader-usage", ".env"),
			filepath.Join(home, ".reader-usage", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "usage.db"
	}
	return filepath.Join(home, ".config", "reader-usage", "usage.db")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
