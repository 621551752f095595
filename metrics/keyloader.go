package metrics

import (
	"context"
	"time"

	"github.com/samhug/zfs-remote-keyloader/interfaces"
)

// InstrumentedKeyLoader wraps a KeyLoader and records every call.
type InstrumentedKeyLoader struct {
	next    interfaces.KeyLoader
	metrics *Metrics
}

var _ interfaces.KeyLoader = (*InstrumentedKeyLoader)(nil)

func NewInstrumentedKeyLoader(next interfaces.KeyLoader, m *Metrics) *InstrumentedKeyLoader {
	return &InstrumentedKeyLoader{next: next, metrics: m}
}

func (l *InstrumentedKeyLoader) KeyStatus(ctx context.Context, dataset string) (interfaces.KeyStatus, error) {
	status, err := l.next.KeyStatus(ctx, dataset)
	l.metrics.ObserveKeyStatus(status, err)
	return status, err
}

func (l *InstrumentedKeyLoader) LoadKey(ctx context.Context, dataset string, key []byte) error {
	start := time.Now()
	err := l.next.LoadKey(ctx, dataset, key)
	l.metrics.ObserveLoadKey(err, time.Since(start))
	return err
}
