package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spesa/internal/cli"
	"spesa/internal/services"
)

func itemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "item",
		Aliases: []string{"items", "i"},
		Short:   "Manage the item to category map",
	}
	cmd.AddCommand(setItemCmd(a), removeItemCmd(a), listItemsCmd(a), classifyItemCmd(a))
	return cmd
}

func setItemCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "set <item> <category-id>",
		Short:   "Map an item to a category; recorded expenses keep their category",
		Example: "  spesa item set \"greek yogurt\" 5",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				m, err := t.UpsertMapping(cmd.Context(), args[0], id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.Success(fmt.Sprintf("Mapped %q to %s", m.Item, m.Category.Name)))
				return nil
			})
		},
	}
}

func removeItemCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item...>",
		Short: "Remove an item mapping",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item := strings.Join(args, " ")
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				if err := t.RemoveMapping(cmd.Context(), item); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.Success(fmt.Sprintf("Removed mapping for %q", item)))
				return nil
			})
		},
	}
}

func listItemsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List item mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				mappings, err := t.ListMappings(cmd.Context())
				if err != nil {
					return err
				}
				tbl := cli.NewTable(cmd.OutOrStdout(), "Item", "Category")
				for _, m := range mappings {
					tbl.Row(m.Item, m.Category.Name)
				}
				return tbl.Flush()
			})
		},
	}
}

func classifyItemCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <item...>",
		Short: "Show the category an item would be recorded under",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				c, err := t.Classify(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (ID: %d)\n", c.Name, c.ID)
				return nil
			})
		},
	}
}
