package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spesa/internal/cli"
	"spesa/internal/core"
	"spesa/internal/services"
)

func reportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"r"},
		Short:   "Monthly, per-category and trend reports",
	}
	cmd.AddCommand(monthReportCmd(a), categoryReportCmd(a), trendReportCmd(a))
	return cmd
}

// periodFlag parses --month, defaulting to the current month.
func periodFlag(month string) (core.Period, error) {
	if month == "" {
		return core.PeriodOf(time.Now()), nil
	}
	return core.ParsePeriod(month)
}

func monthReportCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Totals per category for one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := periodFlag(month)
			if err != nil {
				return err
			}
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				s, err := t.MonthlySummary(cmd.Context(), p)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.TitleStyle.Render("Expenses for "+p.String()))
				if len(s.Categories) == 0 {
					fmt.Fprintln(out, cli.SubtleStyle.Render("No expenses this month."))
					return nil
				}
				tbl := cli.NewTable(out, "Category", "Count", "Total")
				for _, c := range s.Categories {
					tbl.Row(c.Name, c.Count, c.Total)
				}
				tbl.Row(cli.TotalStyle.Render("Total"), "", cli.TotalStyle.Render(s.Total.String()))
				return tbl.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (default current)")
	return cmd
}

func categoryReportCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "category <id>",
		Short: "Items bought in one category for one month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := periodFlag(month)
			if err != nil {
				return err
			}
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				d, err := t.CategoryDetail(cmd.Context(), id, p)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.TitleStyle.Render(fmt.Sprintf("%s in %s", d.Category.Name, p)))
				tbl := cli.NewTable(out, "Item", "Count", "Total")
				for _, it := range d.Items {
					tbl.Row(it.Item, it.Count, it.Total)
				}
				tbl.Row(cli.TotalStyle.Render("Total"), "", cli.TotalStyle.Render(d.Total.String()))
				return tbl.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (default current)")
	return cmd
}

func trendReportCmd(a *app) *cobra.Command {
	var months int
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Monthly totals over a trailing window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if months <= 0 {
				months = a.cfg.TrendMonths
			}
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				window, err := t.TrailingWindow(cmd.Context(), months)
				if err != nil {
					return err
				}
				tbl := cli.NewTable(cmd.OutOrStdout(), "Month", "Count", "Total")
				for _, m := range window {
					tbl.Row(m.Period, m.Count, m.Total)
				}
				return tbl.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&months, "months", 0, "window length (default TREND_MONTHS)")
	return cmd
}
