package main

import (
	"fmt"
	"runtime"

	"bridge-rpc/hostbridge"
	"bridge-rpc/logger"
)

const hostVersion = "1.2.3"

type VersionArgs struct{}

type SayHiArgs struct {
	Msg string `json:"msg"`
}

type Greeting struct {
	Reply string `json:"reply"`
}

type AddArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

type PlatformInfo struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

func newDemoHost(log *logger.Logger) (*hostbridge.Bridge, error) {
	host := hostbridge.New(log)

	functions := map[string]any{
		"getVersion": func(args *VersionArgs, reply *string) error {
			*reply = hostVersion
			return nil
		},
		"say_hi": func(args *SayHiArgs, reply *Greeting) error {
			reply.Reply = "python say: " + args.Msg
			return nil
		},
		"add": func(args *AddArgs, reply *int) error {
			*reply = args.A + args.B
			return nil
		},
		"platform": func(args *VersionArgs, reply *PlatformInfo) error {
			reply.OS = runtime.GOOS
			reply.Arch = runtime.GOARCH
			return nil
		},
	}
	for name, fn := range functions {
		if err := host.Bind(name, fn); err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
	}
	return host, nil
}
