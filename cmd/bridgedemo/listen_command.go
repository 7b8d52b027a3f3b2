package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bridge-rpc/broadcast"
	"bridge-rpc/client"
	"bridge-rpc/hostbridge"
)

type tick struct {
	Type string `json:"type,omitempty"`
	Msg  string `json:"msg"`
	Seq  int    `json:"seq"`
}

func newListenCommand(ctx *commandContext) *cobra.Command {
	var count int
	var interval time.Duration
	var kind string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print broadcasts pushed by the host",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("count must not be negative")
			}
			if interval <= 0 {
				return fmt.Errorf("interval must be positive, got %s", interval)
			}
			return ctx.withClient(func(cli *client.Client, host *hostbridge.Bridge) error {
				if err := cli.Connect(cmd.Context()); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				received := make(chan struct{}, count)
				show := func(e broadcast.Event) {
					fmt.Fprintf(out, "%s %s\n", e.Kind, e.Payload)
					received <- struct{}{}
				}
				if kind == "" {
					cli.Broadcasts().SubscribeAll(show)
				} else {
					cli.Broadcasts().Subscribe(broadcast.Kind(kind), show)
				}

				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for seq := 1; seq <= count; seq++ {
					select {
					case <-ticker.C:
					case <-cmd.Context().Done():
						return cmd.Context().Err()
					}
					if err := host.SendMessage(tick{Type: kind, Msg: "hello javascript", Seq: seq}); err != nil {
						return err
					}
				}

				for range count {
					select {
					case <-received:
					case <-cmd.Context().Done():
						return cmd.Context().Err()
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", 3, "Number of broadcasts to push")
	cmd.Flags().DurationVar(&interval, "interval", 100*time.Millisecond, "Delay between broadcasts")
	cmd.Flags().StringVar(&kind, "kind", "", "Broadcast type; empty sends untyped messages")
	return cmd
}
