package console

import (
	"fmt"
	"io"
	"text/tabwriter"

	"tally/internal/core"
	"tally/internal/tracker"
)

// Render writes v as a summary block followed by the visible expenses.
func Render(w io.Writer, v tracker.View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	switch {
	case v.LoadError != nil:
		fmt.Fprintf(tw, "Status:\tload failed: %v\n", v.LoadError)
	case v.Loading:
		fmt.Fprintln(tw, "Status:\tloading...")
	}
	fmt.Fprintf(tw, "Total:\t%s\n", v.Total)
	fmt.Fprintf(tw, "This month:\t%s\n", v.MonthlyTotal)
	fmt.Fprintf(tw, "Largest:\t%s\n", v.Largest)
	filter := "all"
	if v.Filter != core.NoFilter {
		filter = string(v.Filter)
	}
	fmt.Fprintf(tw, "Showing:\t%d of %d (filter %s, sort %s)\n", len(v.Expenses), v.Count, filter, v.Sort)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(v.Expenses) == 0 {
		_, err := fmt.Fprintln(w, "\n  no expenses")
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tNAME")
	for _, e := range v.Expenses {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Category, e.Amount, e.Name)
	}
	return tw.Flush()
}

// RenderCategories writes per-category totals.
func RenderCategories(w io.Writer, totals []core.CategoryAmount) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tAMOUNT")
	for _, ca := range totals {
		fmt.Fprintf(tw, "%s\t%s\n", ca.Category, ca.Amount)
	}
	return tw.Flush()
}

// RenderOverview writes the summary of one month.
func RenderOverview(w io.Writer, ov core.MonthOverview) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Month:\t%04d-%02d\n", ov.Year, int(ov.Month))
	fmt.Fprintf(tw, "Expenses:\t%d\n", ov.Count)
	fmt.Fprintf(tw, "Total:\t%s\n", ov.Total)
	fmt.Fprintf(tw, "Largest:\t%s\n", ov.Largest)
	for _, ca := range ov.ByCategory {
		fmt.Fprintf(tw, "  %s\t%s\n", ca.Category, ca.Amount)
	}
	return tw.Flush()
}
