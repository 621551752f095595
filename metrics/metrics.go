// Package metrics exposes Prometheus metrics for the key loader on a
// dedicated listener, separate from the operator-facing form.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samhug/zfs-remote-keyloader/cmdutil"
	"github.com/samhug/zfs-remote-keyloader/interfaces"
)

// Result label values.
const (
	ResultSuccess      = "success"
	ResultRejected     = "rejected"
	ResultSpawnError   = "spawn_error"
	ResultError        = "error"
	ResultNotEncrypted = "not_encrypted"
)

// Metrics holds the collectors updated by the key loader.
type Metrics struct {
	loadKeyTotal    *prometheus.CounterVec
	loadKeyDuration prometheus.Histogram
	keyStatusTotal  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		loadKeyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_key_total",
			Help:      "Number of key load attempts by result.",
		}, []string{"result"}),
		loadKeyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_key_duration_seconds",
			Help:      "Duration of key load attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		keyStatusTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_status_total",
			Help:      "Number of key status queries by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.loadKeyTotal, m.loadKeyDuration, m.keyStatusTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveLoadKey records the outcome of one load-key attempt.
func (m *Metrics) ObserveLoadKey(err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.loadKeyTotal.WithLabelValues(resultFor(err)).Inc()
	m.loadKeyDuration.Observe(duration.Seconds())
}

// ObserveKeyStatus records the outcome of one keystatus query.
func (m *Metrics) ObserveKeyStatus(status interfaces.KeyStatus, err error) {
	if m == nil {
		return
	}
	result := status.String()
	if err != nil {
		result = resultFor(err)
	}
	m.keyStatusTotal.WithLabelValues(result).Inc()
}

func resultFor(err error) string {
	var spawnErr *cmdutil.SpawnError
	var execErr *cmdutil.ExecError
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, interfaces.ErrNotEncrypted):
		return ResultNotEncrypted
	case errors.As(err, &spawnErr):
		return ResultSpawnError
	case errors.As(err, &execErr):
		return ResultRejected
	default:
		return ResultError
	}
}

// MetricsServer serves /metrics from a private registry. Additional
// endpoints can be mounted on Router before the server is started.
type MetricsServer struct {
	registry *prometheus.Registry
	metrics  *Metrics
	router   chi.Router
	srv      *http.Server
}

// New creates a metrics server listening on listenAddr with collectors in
// the given namespace, plus the Go runtime and process collectors.
func New(namespace, listenAddr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m, err := NewMetrics(namespace, registry)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	return &MetricsServer{
		registry: registry,
		metrics:  m,
		router:   router,
		srv: &http.Server{
			Addr:              listenAddr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func (s *MetricsServer) Metrics() *Metrics {
	return s.metrics
}

func (s *MetricsServer) Registry() *prometheus.Registry {
	return s.registry
}

func (s *MetricsServer) Router() chi.Router {
	return s.router
}

func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
