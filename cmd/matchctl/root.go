package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/matchcore/pkg/logger"
)

const app = "matchctl"

// Actual version can be specified in build command.
var version = "unknown"

func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:          app,
		Short:        app + " ranks candidate and assignment pools with the matching engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logger.Init(
				logger.WithLevel(logLevel),
				logger.WithFormat(logFormat),
				logger.WithOutput(cmd.ErrOrStderr()),
			)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatText, "log format: text or json")

	root.AddCommand(
		newRankCmd(),
		newGenerateCmd(),
		newSubmitCmd(),
		newLoadCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				cmd.Printf("%s version: %s\n", app, version)
			},
		},
	)
	return root
}
