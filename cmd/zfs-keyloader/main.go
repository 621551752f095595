package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/samhug/zfs-remote-keyloader/cmd/flags"
	"github.com/samhug/zfs-remote-keyloader/common"
	"github.com/samhug/zfs-remote-keyloader/diskutil"
	"github.com/samhug/zfs-remote-keyloader/metrics"
	"github.com/urfave/cli/v2"
)

var KeyloaderServiceLogFlag = flags.LogServiceFlagFn("zfs-keyloader")

var serverFlags = slices.Concat(
	[]cli.Flag{flags.ListenAddrFlag, KeyloaderServiceLogFlag},
	flags.KeyLoaderFlags,
	flags.CommonFlags,
)

var statusFlags = slices.Concat(
	[]cli.Flag{KeyloaderServiceLogFlag, flags.LogJsonFlag, flags.LogDebugFlag},
	flags.KeyLoaderFlags,
)

func main() {
	app := &cli.App{
		Name:    "zfs-remote-keyloader",
		Usage:   "Remote ZFS key loader",
		Version: common.Version,
		Commands: []*cli.Command{
			{
				Name:   "server",
				Usage:  "Serve a web form over HTTP to prompt for the dataset decryption key",
				Flags:  serverFlags,
				Action: serverMain,
			},
			{
				Name:   "status",
				Usage:  "Print the key status of the dataset and exit",
				Flags:  statusFlags,
				Action: statusMain,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func datasetFromFlags(cCtx *cli.Context) (string, error) {
	dataset := cCtx.String(flags.DatasetFlag.Name)
	if strings.TrimSpace(dataset) == "" {
		return "", errors.New("dataset must not be empty")
	}
	if cCtx.String(flags.BackendFlag.Name) == flags.BackendLUKS {
		device, err := diskutil.DevicePathForGlob(dataset)
		if err != nil {
			return "", fmt.Errorf("could not resolve device %q: %w", dataset, err)
		}
		return device, nil
	}
	return dataset, nil
}

func serverMain(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	dataset, err := datasetFromFlags(cCtx)
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		return err
	}

	serverCfg := flags.ConfigureServer(cCtx, logger, cCtx.String(flags.ListenAddrFlag.Name))

	metricsSrv, err := metrics.New(common.PackageName, serverCfg.MetricsAddr)
	if err != nil {
		logger.Error("Failed to create metrics server", "err", err)
		return err
	}

	backend, err := flags.NewKeyLoader(cCtx)
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		return err
	}
	keyLoader := metrics.NewInstrumentedKeyLoader(backend, metricsSrv.Metrics())

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting zfs-remote-keyloader", "dataset", dataset, "backend", cCtx.String(flags.BackendFlag.Name))
	return runKeyloader(ctx, &keyloaderConfig{
		Dataset:   dataset,
		Server:    serverCfg,
		KeyLoader: keyLoader,
		Metrics:   metricsSrv,
		Log:       logger,
	})
}

func statusMain(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	dataset, err := datasetFromFlags(cCtx)
	if err != nil {
		return err
	}

	keyLoader, err := flags.NewKeyLoader(cCtx)
	if err != nil {
		return err
	}

	status, err := keyLoader.KeyStatus(cCtx.Context, dataset)
	if err != nil {
		logger.Error("Failed to query key status", "dataset", dataset, "err", err)
		return err
	}

	fmt.Fprintln(cCtx.App.Writer, status.String())
	return nil
}
