package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spesa/internal/backend"
	"spesa/internal/cli"
	"spesa/internal/config"
	"spesa/internal/log"
	"spesa/internal/services"
)

// app carries what PersistentPreRunE resolved for the running command.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	logger  *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "spesa",
		Short:         "Personal grocery expense tracker",
		Long:          "spesa records purchases, auto-categorizes them by item and reports monthly totals.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./spesa.yaml when present)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.String("backend", "", "storage backend ("+strings.Join(backend.GetBackendTypeStrings(), ", ")+")")
	flags.String("db", "", "SQLite database path")

	root.AddCommand(
		serveCmd(a),
		expenseCmd(a),
		categoryCmd(a),
		itemCmd(a),
		reportCmd(a),
		importCmd(a),
		sheetsAuthCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cli.LoadEnvFile()

	v, err := config.New(a.cfgFile)
	if err != nil {
		return err
	}
	for key, flag := range map[string]string{
		"LOG_LEVEL":      "log-level",
		"LOG_FORMAT":     "log-format",
		"DATA_BACKEND":   "backend",
		"SQLITE_DB_PATH": "db",
		"PORT":           "port",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", flag, err)
			}
		}
	}

	cfg, err := cli.LoadAndValidateConfig(v)
	if err != nil {
		return err
	}
	a.v, a.cfg = v, cfg
	a.logger = cli.SetupLogger(cmd.ErrOrStderr(), cfg, log.ComponentCLI)
	return nil
}

// withTracker opens the configured store for one command.
func (a *app) withTracker(ctx context.Context, fn func(*services.Tracker) error) error {
	tracker, cleanup, err := cli.OpenTracker(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			a.logger.Warn("Failed to close store", log.FieldError, err)
		}
	}()
	return fn(tracker)
}

// confirm asks on stdin unless --yes was given. Anything but y/yes declines.
func confirm(cmd *cobra.Command, yes bool, question string) bool {
	if yes {
		return true
	}
	fmt.Fprint(cmd.OutOrStdout(), cli.Warning(question)+" [y/N] ")
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// runDecision drives a destructive operation: an unconfirmed request returns
// a decision, the user is asked, and the operation is retried confirmed.
func runDecision(cmd *cobra.Command, yes bool, op func(confirmed bool) (services.Decision, error)) error {
	d, err := op(yes)
	if err != nil {
		return err
	}
	if d.NeedsConfirmation() {
		if !confirm(cmd, false, d.Message) {
			fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Cancelled."))
			return nil
		}
		if d, err = op(true); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.Success(d.Message))
	return nil
}
