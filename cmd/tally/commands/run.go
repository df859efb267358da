package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/cli"
	"tally/internal/console"
)

const shutdownTimeout = 10 * time.Second

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the interactive expense console",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := cli.GracefulShutdown(cmd.Context(), logger, shutdownTimeout, nil)
			defer stop()

			s, err := openTracker(ctx, true)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				s.Close(closeCtx)
			}()

			s.app.Mount(ctx)
			return console.NewSession(s.app, cmd.OutOrStdout(), logger.Slog()).Run(ctx, cmd.InOrStdin())
		},
	}
}
