package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spesa/internal/cli"
	"spesa/internal/core"
	"spesa/internal/services"
)

func expenseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"expenses", "e"},
		Short:   "Record, edit and list expenses",
	}
	cmd.AddCommand(addExpenseCmd(a), editExpenseCmd(a), deleteExpenseCmd(a), listExpensesCmd(a))
	return cmd
}

func addExpenseCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:     "add <amount> <item...>",
		Short:   "Record an expense; its category comes from the item map",
		Example: "  spesa expense add 12.50 chicken breast --date 2024-03-15",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().Format(core.DateLayout)
			}
			in, err := services.ParseExpenseInput(date, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				e, err := t.AddExpense(cmd.Context(), in)
				if err != nil {
					return err
				}
				cat, err := t.GetCategory(cmd.Context(), e.CategoryID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.Success(fmt.Sprintf("Recorded %s %s on %s as %s (ID: %d)",
					e.Item, e.Amount, e.Date, cat.Name, e.ID)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "purchase date YYYY-MM-DD (default today)")
	return cmd
}

func editExpenseCmd(a *app) *cobra.Command {
	var date, amount, item string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an expense; the category is re-derived from the item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if date == "" && amount == "" && item == "" {
				return fmt.Errorf("must specify --date, --amount or --item to update")
			}
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				cur, err := t.GetExpense(cmd.Context(), id)
				if err != nil {
					return err
				}
				in, err := services.ParseExpenseInput(
					orDefault(date, cur.Date.String()),
					orDefault(amount, cur.Amount.String()),
					orDefault(item, cur.Item))
				if err != nil {
					return err
				}
				e, err := t.EditExpense(cmd.Context(), id, in)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.Success(fmt.Sprintf("Updated expense %d: %s %s on %s", e.ID, e.Item, e.Amount, e.Date)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "new date YYYY-MM-DD")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&item, "item", "", "new item")
	return cmd
}

func deleteExpenseCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				return runDecision(cmd, yes, func(confirmed bool) (services.Decision, error) {
					return t.DeleteExpense(cmd.Context(), id, confirmed)
				})
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func listExpensesCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var period *core.Period
			if month != "" {
				p, err := core.ParsePeriod(month)
				if err != nil {
					return err
				}
				period = &p
			}
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				expenses, err := t.ListExpenses(cmd.Context(), period)
				if err != nil {
					return err
				}
				if len(expenses) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No expenses found. Use 'spesa expense add' to record one."))
					return nil
				}
				cats, err := t.ListCategories(cmd.Context())
				if err != nil {
					return err
				}

				tbl := cli.NewTable(cmd.OutOrStdout(), "ID", "Date", "Item", "Category", "Amount")
				var total core.Money
				for _, e := range expenses {
					tbl.Row(e.ID, e.Date, e.Item, cats.Resolve(e.CategoryID).Name, e.Amount)
					total = total.Add(e.Amount)
				}
				tbl.Row("", "", "", cli.TotalStyle.Render("Total"), cli.TotalStyle.Render(total.String()))
				return tbl.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "only this month (YYYY-MM)")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
