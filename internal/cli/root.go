// Package cli defines the issuescout command line: the HTTP gateway and
// one-shot summarize and search commands.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"issuescout/internal/gateway/config"
	"issuescout/internal/logging"
)

// Options stores global CLI options shared between commands.
type Options struct {
	LogLevel string
	// loadConfig is replaced in tests.
	loadConfig func() (*config.Config, error)
}

// Execute builds the root command and runs it with args.
func Execute(args []string, logger *slog.Logger) error {
	rootCmd := newRootCommand(&Options{loadConfig: config.Load}, logger, os.Stdout)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// newRootCommand constructs the root command; without a subcommand it serves.
func newRootCommand(opts *Options, logger *slog.Logger, out io.Writer) *cobra.Command {
	if logger == nil {
		logger = logging.New(os.Stderr, slog.LevelInfo)
	}
	cmd := &cobra.Command{
		Use:           "issuescout",
		Short:         "issuescout summarizes a GitHub repository's open issues",
		Long:          "issuescout serves an HTTP gateway that lists, searches and summarizes open GitHub issues for newcomers, and runs the same operations from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = opts.LogLevel
			}
			l := logging.New(os.Stderr, logging.ParseLevel(level))
			ctx := logging.WithContext(cmd.Context(), l)
			cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCommand(),
		newSummarizeCommand(),
		newSearchCommand(),
	)
	cmd.SetContext(logging.WithContext(context.Background(), logger))
	return cmd
}

type configKey struct{}

func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
		return cfg
	}
	return &config.Config{}
}

func loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, nil)
}
