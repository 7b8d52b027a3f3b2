package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var readyAfter time.Duration
	var logLevel string

	ctx := newCommandContext(&readyAfter, &logLevel)

	rootCmd := &cobra.Command{
		Use:           "bridgedemo",
		Short:         "Exercise the bridge RPC client against a loopback host",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().DurationVar(&readyAfter, "ready-after", 200*time.Millisecond, "Delay before the host channel becomes available")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override BRIDGE_LOG_LEVEL")

	rootCmd.AddCommand(newCallCommand(ctx))
	rootCmd.AddCommand(newListenCommand(ctx))

	return rootCmd
}
