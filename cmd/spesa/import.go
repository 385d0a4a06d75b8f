package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spesa/internal/cli"
	"spesa/internal/core"
	"spesa/internal/services"
)

func importCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Replace all data with a browser tracker export",
		Long: "Import reads the expenses, categories and itemCategoryMap records exported by the\n" +
			"browser tracker. Category names become IDs; unknown names go to " + core.FallbackCategoryName + ".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read export: %w", err)
			}
			var legacy core.LegacySnapshot
			if err := json.Unmarshal(raw, &legacy); err != nil {
				return fmt.Errorf("decode export: %w", err)
			}
			snap, err := legacy.Convert()
			if err != nil {
				return fmt.Errorf("convert export: %w", err)
			}

			q := fmt.Sprintf("Replace all data with %d expenses, %d categories and %d mappings?",
				len(snap.Expenses), len(snap.Categories), len(snap.Items))
			if !confirm(cmd, yes, q) {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Cancelled."))
				return nil
			}
			return a.withTracker(cmd.Context(), func(t *services.Tracker) error {
				if err := t.Import(cmd.Context(), snap); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.Success(fmt.Sprintf("Imported %d expenses", len(snap.Expenses))))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
