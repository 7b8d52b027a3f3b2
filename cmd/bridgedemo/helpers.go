package main

import (
	"context"

	"bridge-rpc/client"
	"bridge-rpc/message"
)

// invokeDirect adapts InvokeSync to a blocking call.
func invokeDirect(ctx context.Context, cli *client.Client, method string, params any) (message.Value, error) {
	type outcome struct {
		result message.Value
		err    error
	}
	done := make(chan outcome, 1)
	cli.InvokeSync(ctx, method, params, func(result message.Value, err error) {
		done <- outcome{result, err}
	})

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
