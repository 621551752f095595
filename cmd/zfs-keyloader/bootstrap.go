package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samhug/zfs-remote-keyloader/httpserver"
	"github.com/samhug/zfs-remote-keyloader/interfaces"
	"github.com/samhug/zfs-remote-keyloader/metrics"
)

type keyloaderConfig struct {
	Dataset   string
	Server    *httpserver.HTTPServerConfig
	KeyLoader interfaces.KeyLoader
	Metrics   *metrics.MetricsServer
	Log       *slog.Logger
}

// runKeyloader checks whether the dataset still needs its key and, if so,
// serves the key entry form until a key was loaded or ctx is cancelled.
// It never binds a listener for a dataset that is already unlocked.
func runKeyloader(ctx context.Context, cfg *keyloaderConfig) error {
	logger := cfg.Log

	shutdown := httpserver.NewShutdownSignal()
	handler := httpserver.NewHandler(cfg.KeyLoader, cfg.Dataset, shutdown, logger)

	server, err := httpserver.New(cfg.Server, handler, cfg.Metrics)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	status, err := cfg.KeyLoader.KeyStatus(ctx, cfg.Dataset)
	if err != nil {
		logger.Error("Failed to query key status", "dataset", cfg.Dataset, "err", err)
		return fmt.Errorf("could not check key status of %s: %w", cfg.Dataset, err)
	}
	if status == interfaces.KeyStatusAvailable {
		logger.Warn("Key is already loaded, nothing to do", "dataset", cfg.Dataset)
		return nil
	}

	logInterfaceAddrs(logger)

	if err := server.RunInBackground(); err != nil {
		logger.Error("Failed to start server", "err", err)
		return fmt.Errorf("could not listen on %s: %w", cfg.Server.ListenAddr, err)
	}

	logger.Info("Waiting for decryption key", "dataset", cfg.Dataset, "listenAddress", server.Addr().String())

	select {
	case <-shutdown.Done():
		logger.Info("Key loaded, shutting down", "dataset", cfg.Dataset)
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	server.Shutdown()
	logger.Info("Server shutdown complete")
	return nil
}
