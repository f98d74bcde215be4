// Package container provides dependency injection and lifecycle management
// for the expense search service.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Search retention configuration
	Search SearchConfig

	// Export configuration
	Export ExportConfig

	// Server configuration
	Server ServerConfig

	// Worker configuration
	Worker WorkerConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// MigrationsDir is the path to migration files
	MigrationsDir string
}

// SearchConfig holds retention settings.
type SearchConfig struct {
	// RecentMaxCount is how many recent searches to keep; zero disables
	// the count bound
	RecentMaxCount int

	// RecentMaxAge is how long recent searches live; zero disables the
	// age bound
	RecentMaxAge time.Duration

	// SnapshotMaxAge is how long superseded snapshots live; zero
	// disables the age bound
	SnapshotMaxAge time.Duration
}

// ExportConfig holds workbook export settings.
type ExportConfig struct {
	// OutputDir is the base directory for generated workbooks
	OutputDir string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind to
	Host string

	// Port to listen on
	Port int

	// ReadTimeout for HTTP server
	ReadTimeout time.Duration

	// WriteTimeout for HTTP server
	WriteTimeout time.Duration
}

// WorkerConfig holds background worker settings.
type WorkerConfig struct {
	// RetentionInterval is how often the retention worker prunes
	RetentionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/search.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			MigrationsDir:   "migrations",
		},
		Search: SearchConfig{
			RecentMaxCount: 50,
			RecentMaxAge:   90 * 24 * time.Hour,
			SnapshotMaxAge: 30 * 24 * time.Hour,
		},
		Export: ExportConfig{
			OutputDir: "exports",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Worker: WorkerConfig{
			RetentionInterval: time.Hour,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Export.OutputDir == "" {
		return fmt.Errorf("export.output_dir is required")
	}

	if c.Worker.RetentionInterval <= 0 {
		return fmt.Errorf("worker.retention_interval must be positive")
	}

	if c.Search.RecentMaxCount < 0 {
		return fmt.Errorf("search.recent_max_count must not be negative")
	}

	return nil
}
