// Package cli holds the initialization steps shared by cmd/budsjett and
// cmd/budsjett-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"budsjett/internal/config"
	"budsjett/internal/log"
	"budsjett/internal/storage"
)

// Bootstrap loads .env, builds the component logger and loads and
// validates configuration. It exits the process on invalid configuration.
func Bootstrap(component string) (*log.Logger, *config.Config) {
	// .env is for local development; absence is fine.
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     logLevel(),
		Component: component,
		JSON:      os.Getenv("LOG_FORMAT") == "json",
	})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	return logger, cfg
}

// OpenRepository opens the SQLite repository and runs migrations, exiting
// the process on failure.
func OpenRepository(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("failed to open sqlite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
