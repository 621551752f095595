package flags

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samhug/zfs-remote-keyloader/common"
	"github.com/samhug/zfs-remote-keyloader/diskutil"
	"github.com/samhug/zfs-remote-keyloader/httpserver"
	"github.com/samhug/zfs-remote-keyloader/interfaces"
	"github.com/samhug/zfs-remote-keyloader/zfs"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

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

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *httpserver.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)

	return &httpserver.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		// key derivation may take a while; no write deadline
		WriteTimeout: 0,
	}
}

// Supported unlock backends.
const (
	BackendZFS  = "zfs"
	BackendLUKS = "luks"
)

// ConfigureZFS builds the zfs client configuration from the zfs flags.
func ConfigureZFS(cCtx *cli.Context) zfs.Config {
	return zfs.Config{
		Command: cCtx.String(ZFSCommandFlag.Name),
		Timeout: cCtx.Duration(UnlockTimeoutFlag.Name),
	}
}

// ConfigureLUKS builds the cryptsetup client configuration from the luks flags.
func ConfigureLUKS(cCtx *cli.Context) diskutil.Config {
	return diskutil.Config{
		Command:    cCtx.String(CryptsetupCommandFlag.Name),
		MapperName: cCtx.String(LUKSMapperNameFlag.Name),
		Timeout:    cCtx.Duration(UnlockTimeoutFlag.Name),
	}
}

// NewKeyLoader returns the unlock backend selected by --backend.
func NewKeyLoader(cCtx *cli.Context) (interfaces.KeyLoader, error) {
	switch backend := cCtx.String(BackendFlag.Name); backend {
	case BackendZFS:
		return zfs.NewClient(ConfigureZFS(cCtx)), nil
	case BackendLUKS:
		return diskutil.NewClient(ConfigureLUKS(cCtx)), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

var DatasetFlag = &cli.StringFlag{
	Name:     "dataset",
	Aliases:  []string{"d"},
	Required: true,
	Usage:    "ZFS dataset to load keys for (LUKS backend: device path or glob)",
	EnvVars:  []string{"ZFS_DATASET"},
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Aliases: []string{"listen"},
	Value:   "0.0.0.0:3333",
	Usage:   "addr:port to serve the key entry form on",
	EnvVars: []string{"LISTEN_ADDR"},
}

var ZFSCommandFlag = &cli.StringFlag{
	Name:    "zfs-command",
	Value:   zfs.DefaultCommand,
	Usage:   "zfs binary name or path",
	EnvVars: []string{"ZFS_COMMAND"},
}

var BackendFlag = &cli.StringFlag{
	Name:    "backend",
	Value:   BackendZFS,
	Usage:   "unlock backend, one of zfs or luks",
	EnvVars: []string{"KEYLOADER_BACKEND"},
}

var CryptsetupCommandFlag = &cli.StringFlag{
	Name:    "cryptsetup-command",
	Value:   diskutil.DefaultCommand,
	Usage:   "cryptsetup binary name or path (luks backend)",
	EnvVars: []string{"CRYPTSETUP_COMMAND"},
}

var LUKSMapperNameFlag = &cli.StringFlag{
	Name:    "luks-mapper-name",
	Value:   diskutil.DefaultMapperName,
	Usage:   "device-mapper name to open the LUKS device as (luks backend)",
	EnvVars: []string{"LUKS_MAPPER_NAME"},
}

var UnlockTimeoutFlag = &cli.DurationFlag{
	Name:    "unlock-timeout",
	Value:   0,
	Usage:   "kill unlock utility invocations running longer than this (0 waits indefinitely)",
	EnvVars: []string{"UNLOCK_TIMEOUT"},
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint on the metrics listener",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "",
	Usage: "address to listen on for Prometheus metrics and health checks (disabled if empty)",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	MetricsAddrFlag,
}

var KeyLoaderFlags = []cli.Flag{
	DatasetFlag,
	BackendFlag,
	ZFSCommandFlag,
	CryptsetupCommandFlag,
	LUKSMapperNameFlag,
	UnlockTimeoutFlag,
}
