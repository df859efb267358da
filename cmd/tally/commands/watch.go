package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/amqp"
	"tally/internal/cli"
)

func watchCmd() *cobra.Command {
	var queue string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print expense change events from the AMQP exchange",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.AMQPURL == "" {
				return errors.New("AMQP_URL is required for watch")
			}
			if queue == "" {
				queue = cfg.AMQPQueue
			}

			ctx, stop := cli.GracefulShutdown(cmd.Context(), logger, shutdownTimeout, nil)
			defer stop()

			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
			if err != nil {
				return err
			}
			defer client.Close()

			err = client.Consume(ctx, queue, func(ctx context.Context, msg *amqp.ChangeMessage) error {
				ev, err := msg.Event()
				if err != nil {
					// Requeueing a malformed event would redeliver it forever.
					logger.Warn("Skipping malformed change event", "error", err, "id", msg.ID)
					return nil
				}
				e := ev.Expense
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t#%d\t%s\t%s\t%s\t%s\n",
					ev.At.Format("15:04:05"), ev.Kind, e.ID, e.Date, e.Category, e.Amount, e.Name)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&queue, "queue", "", "queue to bind (default AMQP_QUEUE)")
	return cmd
}
