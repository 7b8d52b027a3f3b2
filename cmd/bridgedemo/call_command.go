package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bridge-rpc/client"
	"bridge-rpc/hostbridge"
	"bridge-rpc/message"
)

func newCallCommand(ctx *commandContext) *cobra.Command {
	var repeat int
	var direct bool

	cmd := &cobra.Command{
		Use:   "call <method> [json-params]",
		Short: "Invoke a host function and print the result",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := args[0]
			var params any
			if len(args) == 2 {
				var raw json.RawMessage
				if err := json.Unmarshal([]byte(args[1]), &raw); err != nil {
					return fmt.Errorf("params must be JSON: %w", err)
				}
				params = raw
			}
			if repeat < 1 {
				repeat = 1
			}

			return ctx.withClient(func(cli *client.Client, _ *hostbridge.Bridge) error {
				results := make([]message.Value, repeat)

				g, gctx := errgroup.WithContext(cmd.Context())
				for i := range repeat {
					g.Go(func() error {
						var result message.Value
						var err error
						if direct {
							result, err = invokeDirect(gctx, cli, method, params)
						} else {
							result, err = cli.Invoke(gctx, method, params)
						}
						if err != nil {
							return fmt.Errorf("call %d: %w", i+1, err)
						}
						results[i] = result
						return nil
					})
				}
				if err := g.Wait(); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, result := range results {
					fmt.Fprintln(out, result.String())
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&repeat, "repeat", "n", 1, "Issue the call this many times concurrently")
	cmd.Flags().BoolVar(&direct, "direct", false, "Use the channel's request/response primitive instead of posted messages")
	return cmd
}
