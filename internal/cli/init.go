// Package cli holds the bootstrap steps shared by cmd/salestats and
// cmd/salestats-worker.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"salestats/internal/config"
	"salestats/internal/log"
	"salestats/internal/seed"
)

// SetupLogger builds the process logger at the given level and installs it as
// the slog default.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and exits the process if it is
// invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// SeedConfig maps application config onto the seed source settings.
func SeedConfig(cfg *config.Config) seed.Config {
	return seed.Config{
		Kind:     seed.Kind(cfg.SeedSource),
		URL:      cfg.SeedURL,
		Timeout:  cfg.SeedTimeout,
		FilePath: cfg.SeedFile,
		Sheets: seed.SheetsConfig{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			Range:           cfg.GoogleSheetRange,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,

			OAuth: seed.OAuthConfig{
				ClientJSON: cfg.GoogleOAuthClientJSON,
				ClientFile: cfg.GoogleOAuthClientFile,
				TokenFile:  cfg.GoogleOAuthTokenFile,
			},
		},
	}
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", slog.String(log.FieldOperation, log.OpShutdown))
	}()
	return ctx, stop
}
