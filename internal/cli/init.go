// Package cli provides the process bootstrap shared by the tally
// commands: dotenv loading, logger setup, validated configuration and
// signal-driven shutdown.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tally/internal/config"
	tlog "tally/internal/log"
)

// LoadEnvFile loads .env files for local development. A missing file is
// not an error; a malformed one is.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// SetupLogger builds the application logger for level, writing text to
// out, and installs it as the slog default.
func SetupLogger(level string, out io.Writer) (*tlog.Logger, error) {
	lvl, err := tlog.ParseLevel(level)
	cfg := tlog.DefaultConfig()
	cfg.Level = lvl
	if out != nil {
		cfg.Output = out
	}
	logger := tlog.New(cfg)
	tlog.SetDefault(logger)
	return logger, err
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. On
// a signal cleanup runs with a deadline of timeout before the context is
// cancelled. The returned stop function releases the signal handler.
func GracefulShutdown(parent context.Context, logger *tlog.Logger, timeout time.Duration, cleanup func(context.Context)) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), tlog.FieldOperation, tlog.OpShutdown)
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
			defer shutdownCancel()
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
				logger.Warn("Shutdown timeout reached")
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
