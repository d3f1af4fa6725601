// Command agent is the long-running provisioning daemon. It applies the
// deployment profile, starts the background service when start-on-boot is
// enabled, and serves the local trigger and query API.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cleverty/endpoint-provisioner/cmd/endpointcommon"
	"github.com/cleverty/endpoint-provisioner/cmd/flags"
	"github.com/cleverty/endpoint-provisioner/common"
	"github.com/cleverty/endpoint-provisioner/httpserver"
	"github.com/cleverty/endpoint-provisioner/metrics"
	"github.com/cleverty/endpoint-provisioner/profile"
	"github.com/urfave/cli/v2"
)

var skipServerCheckFlag = &cli.BoolFlag{
	Name:    "skip-server-check",
	EnvVars: []string{"PROVISIONER_SKIP_SERVER_CHECK"},
	Usage:   "do not resolve the configured server addresses at startup",
}

func main() {
	app := &cli.App{
		Name:  "endpoint-agent",
		Usage: "Provision this endpoint for unattended remote access and serve the local provisioning API",
		Flags: append(append([]cli.Flag{flags.ProfileFlag, skipServerCheckFlag}, flags.ServerFlags...), flags.LogFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			p, err := profile.Load(cCtx.String(flags.ProfileFlag.Name))
			if err != nil {
				logger.Error("Failed to load profile", "err", err)
				return err
			}

			metricsSrv, err := metrics.New(common.PackageName, cCtx.String(flags.MetricsAddrFlag.Name))
			if err != nil {
				logger.Error("Failed to create metrics server", "err", err)
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ep, err := endpointcommon.Build(ctx, p, logger, metricsSrv.Recorder)
			if err != nil {
				logger.Error("Failed to build endpoint", "err", err)
				return err
			}
			defer ep.Close()

			if !cCtx.Bool(skipServerCheckFlag.Name) {
				for _, res := range ep.CheckServers(ctx) {
					if !res.OK() {
						logger.Warn("Configured server does not resolve", slog.String("server", res.Server), "err", res.Err)
					}
				}
			}

			if err := ep.Orchestrator.Boot(ctx); err != nil {
				logger.Error("Boot start failed", "err", err)
			}

			cfg := flags.ConfigureServer(cCtx, logger, metricsSrv)
			server := httpserver.New(cfg, httpserver.NewHandler(ep.Orchestrator, ep.Status, logger))
			server.RunInBackground()

			logger.Info("Agent is running", slog.String("listenAddr", cfg.ListenAddr))
			<-ctx.Done()
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Agent shutdown complete")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
