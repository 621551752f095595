/*
Package httpserver implements the operator-facing HTTP server of the ZFS remote key loader.

The server renders a single form asking for the decryption key of one dataset,
fixed at startup, and forwards submitted keys to an interfaces.KeyLoader. Once
a key has been loaded successfully the handler raises a ShutdownSignal; the
process waits on it and stops the server gracefully, so the response that
triggered the shutdown is still delivered.

# API Endpoints

  - GET / - Key entry form
  - POST /loadkey - Load the key given in the "key" form field
  - anything else - 404 with an empty body

# Metrics Listener Endpoints

  - GET /metrics - Prometheus metrics
  - GET /livez - Liveness check
  - GET /readyz - Readiness check
  - /debug/pprof/* - Profiling, when EnablePprof is set

# Example Usage

	shutdown := httpserver.NewShutdownSignal()
	handler := httpserver.NewHandler(zfs.NewClient(zfs.Config{}), "rpool/home", shutdown, logger)

	metricsSrv, err := metrics.New(common.PackageName, ":8090")
	if err != nil {
		log.Fatalf("Failed to create metrics server: %v", err)
	}

	server, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               "0.0.0.0:3333",
		MetricsAddr:              ":8090",
		Log:                      logger,
		GracefulShutdownDuration: 30 * time.Second,
	}, handler, metricsSrv)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.RunInBackground(); err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}

	<-shutdown.Done()
	server.Shutdown()
*/
package httpserver
