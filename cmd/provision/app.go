package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cleverty/endpoint-provisioner/api/clients"
	"github.com/cleverty/endpoint-provisioner/cmd/endpointcommon"
	"github.com/cleverty/endpoint-provisioner/cmd/flags"
	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/cleverty/endpoint-provisioner/netcheck"
	"github.com/cleverty/endpoint-provisioner/profile"
	"github.com/cleverty/endpoint-provisioner/secrets"
	"github.com/urfave/cli/v2"
)

var credentialFlag = &cli.StringFlag{
	Name:     "credential",
	Required: true,
	Usage:    "permanent password, or a secret reference (env:NAME, file:/path, vault://...)",
}

var nameFlag = &cli.StringFlag{
	Name:     "name",
	Required: true,
	Usage:    "device name shown to remote operators",
}

var resolverFlag = &cli.StringFlag{
	Name:  "resolver",
	Usage: "DNS resolver host:port, defaults to the system resolver",
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "provision",
		Usage: "Provision this endpoint for unattended remote access",
		Flags: append([]cli.Flag{flags.ProfileFlag, flags.AgentAddrFlag}, flags.LogFlags...),
		Commands: []*cli.Command{
			triggerCommand(interfaces.CommandFullSetup, "grant capabilities, start the service, enable input control and print the identity"),
			triggerCommand(interfaces.CommandEnableInputControl, "register the input-control service"),
			triggerCommand(interfaces.CommandEnableStartOnBoot, "start the service automatically after boot"),
			triggerCommand(interfaces.CommandStartService, "start the background service"),
			triggerCommand(interfaces.CommandGetIdentity, "print the remote identity"),
			triggerCommand(interfaces.CommandGrantCapabilities, "grant the runtime permissions"),
			{
				Name:  interfaces.CommandSetCredential.String(),
				Usage: "set the permanent password",
				Flags: []cli.Flag{credentialFlag},
				Action: func(cCtx *cli.Context) error {
					value, err := secrets.NewResolver(flags.SetupLogger(cCtx)).Resolve(cCtx.Context, cCtx.String(credentialFlag.Name))
					if err != nil {
						return err
					}
					return runTrigger(cCtx, interfaces.CommandSetCredential, map[string]string{interfaces.ParamCredential: value})
				},
			},
			{
				Name:  interfaces.CommandSetDeviceName.String(),
				Usage: "set the device name and reconnect",
				Flags: []cli.Flag{nameFlag},
				Action: func(cCtx *cli.Context) error {
					return runTrigger(cCtx, interfaces.CommandSetDeviceName, map[string]string{interfaces.ParamDeviceName: cCtx.String(nameFlag.Name)})
				},
			},
			{
				Name:      "query",
				Usage:     "print status rows: id, status or config",
				ArgsUsage: "<target>",
				Action:    runQuery,
			},
			{
				Name:   "check-servers",
				Usage:  "resolve the configured server addresses",
				Flags:  []cli.Flag{resolverFlag},
				Action: runCheckServers,
			},
			{
				Name:  "show-profile",
				Usage: "print the effective deployment profile",
				Action: func(cCtx *cli.Context) error {
					p, err := profile.Load(cCtx.String(flags.ProfileFlag.Name))
					if err != nil {
						return err
					}
					return p.Encode(cCtx.App.Writer)
				},
			},
		},
	}
}

func triggerCommand(cmd interfaces.Command, usage string) *cli.Command {
	return &cli.Command{
		Name:  cmd.String(),
		Usage: usage,
		Action: func(cCtx *cli.Context) error {
			return runTrigger(cCtx, cmd, nil)
		},
	}
}

// withAgent hands fn a remote agent when --agent-addr is set and an
// in-process endpoint otherwise.
func withAgent(cCtx *cli.Context, fn func(ctx context.Context, agent clients.AgentAPI) error) error {
	ctx := cCtx.Context
	if addr := cCtx.String(flags.AgentAddrFlag.Name); addr != "" {
		return fn(ctx, clients.NewAgentClient(addr))
	}

	log := flags.SetupLogger(cCtx)
	p, err := profile.Load(cCtx.String(flags.ProfileFlag.Name))
	if err != nil {
		return err
	}
	ep, err := endpointcommon.Build(ctx, p, log, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := ep.Close(); err != nil {
			log.Warn("Failed to close endpoint", "err", err)
		}
	}()

	return fn(ctx, &endpointcommon.Local{Endpoint: ep})
}

func runTrigger(cCtx *cli.Context, cmd interfaces.Command, params map[string]string) error {
	return withAgent(cCtx, func(ctx context.Context, agent clients.AgentAPI) error {
		resp, err := agent.Trigger(ctx, cmd.String(), params)
		if err != nil {
			return err
		}
		if err := printJSON(cCtx, resp); err != nil {
			return err
		}
		if !resp.OK {
			return cli.Exit(fmt.Sprintf("%s failed: %s", cmd, resp.Error), 1)
		}
		return nil
	})
}

func runQuery(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return cli.Exit("query needs exactly one target", 2)
	}
	return withAgent(cCtx, func(ctx context.Context, agent clients.AgentAPI) error {
		rows, err := agent.Query(ctx, cCtx.Args().First())
		if err != nil {
			return err
		}
		return printJSON(cCtx, rows)
	})
}

func runCheckServers(cCtx *cli.Context) error {
	p, err := profile.Load(cCtx.String(flags.ProfileFlag.Name))
	if err != nil {
		return err
	}

	checker := netcheck.NewChecker(cCtx.String(resolverFlag.Name), 3*time.Second, flags.SetupLogger(cCtx))
	results := checker.Check(cCtx.Context, p.Servers.List())
	if err := printJSON(cCtx, results); err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d servers do not resolve", failed, len(results)), 1)
	}
	return nil
}

func printJSON(cCtx *cli.Context, v any) error {
	enc := json.NewEncoder(cCtx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
