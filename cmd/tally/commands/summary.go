package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/console"
)

func summaryCmd() *cobra.Command {
	var (
		byCategory bool
		month      string
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Load expenses once and print the totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			var period time.Time
			if month != "" {
				var err error
				if period, err = time.Parse("2006-01", month); err != nil {
					return fmt.Errorf("invalid --month %q: want YYYY-MM", month)
				}
			}

			ctx := cmd.Context()
			s, err := openTracker(ctx, false)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			s.app.Mount(ctx)
			rt := s.app.Runtime()
			for s.app.Loading() {
				if err := rt.Step(ctx); err != nil {
					return err
				}
			}
			if err := s.app.LoadError(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := console.Render(out, s.app.View()); err != nil {
				return err
			}
			if byCategory {
				fmt.Fprintln(out)
				if err := console.RenderCategories(out, s.app.ByCategory()); err != nil {
					return err
				}
			}

			ov := s.app.CurrentMonth()
			if !period.IsZero() {
				ov = s.app.Overview(period.Year(), period.Month())
			}
			fmt.Fprintln(out)
			return console.RenderOverview(out, ov)
		},
	}
	cmd.Flags().BoolVar(&byCategory, "by-category", false, "also print per-category totals")
	cmd.Flags().StringVar(&month, "month", "", "month for the overview as YYYY-MM (default current month)")
	return cmd
}
