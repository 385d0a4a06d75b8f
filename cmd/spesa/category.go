package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spesa/internal/cli"
	"spesa/internal/core"
	"spesa/internal/services"
)

func categoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories", "c"},
		Short:   "Manage expense categories",
	}
	cmd.AddCommand(addCategoryCmd(a), renameCategoryCmd(a), deleteCategoryCmd(a), listCategoriesCmd(a))
	return cmd
}

func addCategoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name...>",
		Short: "Add a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				c, err := t.AddCategory(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.Success(fmt.Sprintf("Created category %q (ID: %d)", c.Name, c.ID)))
				return nil
			})
		},
	}
}

func renameCategoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name...>",
		Short: "Rename a category; expenses and mappings follow",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				c, err := t.RenameCategory(cmd.Context(), id, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.Success(fmt.Sprintf("Renamed category %d to %q", c.ID, c.Name)))
				return nil
			})
		},
	}
}

func deleteCategoryCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category; its expenses and mappings move to " + core.FallbackCategoryName,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				return runDecision(cmd, yes, func(confirmed bool) (services.Decision, error) {
					return t.DeleteCategory(cmd.Context(), id, confirmed)
				})
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func listCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				cats, err := t.ListCategories(cmd.Context())
				if err != nil {
					return err
				}
				tbl := cli.NewTable(cmd.OutOrStdout(), "ID", "Name")
				for _, c := range cats {
					name := c.Name
					if c.ID == core.FallbackCategoryID {
						name += cli.SubtleStyle.Render(" (fallback)")
					}
					tbl.Row(c.ID, name)
				}
				return tbl.Flush()
			})
		},
	}
}
