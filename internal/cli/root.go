// Package cli implements creditctl, which runs credit analyses and note
// reconciliations in-process without the HTTP server.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourorg/loancheck/internal/env"
	"github.com/yourorg/loancheck/internal/logging"
)

type options struct {
	envFile   string
	noLatency bool
	jsonOut   bool
	logLevel  string
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	return logging.NewWithWriter(cmd.ErrOrStderr(), o.logLevel, "text")
}

// NewRootCmd builds the command tree. Each call returns a fresh tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "creditctl",
		Short: "Credit analysis and fiscal note reconciliation",
		Long: `creditctl runs the credit decisioning and document reconciliation engines locally.

Settings are read from the environment, the same variables the server uses.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.envFile == "" {
				return nil
			}
			if err := env.LoadDotEnv(opts.envFile); err != nil {
				return fmt.Errorf("load %s: %w", opts.envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Load settings from a .env file")
	root.PersistentFlags().BoolVar(&opts.noLatency, "no-latency", false, "Skip the simulated provider latencies")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print the raw JSON result")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for stderr")

	root.AddCommand(newDecideCmd(opts))
	root.AddCommand(newReconcileCmd(opts))
	root.AddCommand(newKeygenCmd(opts))
	root.Version = version
	return root
}

// Execute runs the root command
func Execute(ctx context.Context, version string) error {
	if err := NewRootCmd(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
