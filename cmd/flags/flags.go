package flags

import (
	"log/slog"
	"time"

	"github.com/cleverty/endpoint-provisioner/common"
	"github.com/cleverty/endpoint-provisioner/httpserver"
	"github.com/cleverty/endpoint-provisioner/metrics"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, metricsSrv *metrics.MetricsServer) *httpserver.HTTPServerConfig {
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &httpserver.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Metrics:                  metricsSrv,
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		// Full setup waits on the service and the input binding.
		WriteTimeout: 2 * time.Minute,
	}
}

var ProfileFlag = &cli.StringFlag{
	Name:    "profile",
	EnvVars: []string{"PROVISIONER_PROFILE"},
	Usage:   "deployment profile YAML; the built-in default deployment is used when empty",
}

var AgentAddrFlag = &cli.StringFlag{
	Name:    "agent-addr",
	EnvVars: []string{"PROVISIONER_AGENT_ADDR"},
	Usage:   "forward to a running agent at this address instead of executing locally",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	EnvVars: []string{"PROVISIONER_LISTEN_ADDR"},
	Value:   httpserver.DefaultListenAddr,
	Usage:   "address to listen on for the provisioning API",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:    "log-json",
	EnvVars: []string{"PROVISIONER_LOG_JSON"},
	Value:   false,
	Usage:   "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:    "log-debug",
	EnvVars: []string{"PROVISIONER_LOG_DEBUG"},
	Value:   false,
	Usage:   "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: "endpoint-provisioner",
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 5,
	Usage: "seconds to wait after marking the server not ready on shutdown",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:    "metrics-addr",
	EnvVars: []string{"PROVISIONER_METRICS_ADDR"},
	Value:   "127.0.0.1:8490",
	Usage:   "address to listen on for Prometheus metrics, empty to disable",
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var ServerFlags = []cli.Flag{
	ListenAddrFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
