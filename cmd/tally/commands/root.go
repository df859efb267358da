package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"tally/internal/amqp"
	"tally/internal/backend"
	"tally/internal/cli"
	"tally/internal/config"
	tlog "tally/internal/log"
	"tally/internal/metrics"
	"tally/internal/tracker"
)

var (
	envFile    string
	dataSource string
	logLevel   string

	cfg    *config.Config
	logger *tlog.Logger
)

func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tally",
		Short:         "Reactive personal expense tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.LoadEnvFile(envFile); err != nil {
				return err
			}
			if dataSource != "" {
				os.Setenv("DATA_SOURCE", dataSource)
			}
			if logLevel != "" {
				os.Setenv("LOG_LEVEL", logLevel)
			}

			var err error
			cfg, err = cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			logger, err = cli.SetupLogger(cfg.LogLevel, cmd.ErrOrStderr())
			return err
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&dataSource, "source", "", "data source override (memory, sqlite, sheets, multi)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(runCmd(), summaryCmd(), importCmd(), watchCmd())
	return root
}

// session bundles a tracker with everything it was built from so the
// commands can tear it down in one call.
type session struct {
	app      *tracker.App
	provider *backend.Result
	events   *amqp.Client
	server   *http.Server
}

// openTracker creates the provider named by the configuration, the
// optional change-event publisher and metrics endpoint, and a tracker
// wired to all of them. The tracker is not mounted.
func openTracker(ctx context.Context, withEvents bool) (*session, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.Slog()).CreateProvider(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", backendCfg.Type, err)
	}
	logger.Info("Data source ready", tlog.FieldOperation, tlog.OpStartup, tlog.FieldSource, backendCfg.Type)

	s := &session{provider: res}
	opts := []tracker.Option{
		tracker.WithLogger(logger.Slog()),
		tracker.WithFetchTimeout(cfg.FetchTimeout),
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, tracker.WithMetrics(metrics.New(reg)))
		s.server = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metrics.Handler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithComponent(tlog.ComponentMetrics).Error("Metrics server failed", "error", err)
			}
		}()
		logger.Info("Serving metrics", "addr", cfg.MetricsAddr)
	}

	if withEvents && cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			// Events are optional; the tracker still works without them.
			logger.WithComponent(tlog.ComponentAMQP).Warn("AMQP unavailable, change events disabled", "error", err)
		} else {
			s.events = client
			opts = append(opts, tracker.WithEvents(client))
		}
	}

	s.app = tracker.New(res.Provider, opts...)
	return s, nil
}

// Close disposes the tracker first so pending publishes finish before the
// AMQP connection goes away.
func (s *session) Close(ctx context.Context) {
	s.app.Close()
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", "error", err)
		}
	}
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			logger.Warn("Failed to stop metrics server", "error", err)
		}
	}
	if err := s.provider.Close(); err != nil {
		logger.Warn("Failed to close provider", "error", err)
	}
}
