// Package metrics records counters and gauges in an embedded time-series store.
// All functions are no-ops until InitMetrics is called.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	mu      sync.RWMutex
	storage tstorage.Storage
)

// InitMetrics opens the time-series storage under <workdir>/data/metrics
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "data", "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return errors.Wrap(err, "open metrics storage")
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

// InitMemory starts an in-memory storage, used by tests and when no workdir is set
func InitMemory() error {
	s, err := tstorage.NewStorage(tstorage.WithTimestampPrecision(tstorage.Seconds))
	if err != nil {
		return errors.Wrap(err, "open memory metrics storage")
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

func labels(kv []string) []tstorage.Label {
	var out []tstorage.Label
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, tstorage.Label{Name: kv[i], Value: kv[i+1]})
	}
	return out
}

// Record inserts one data point; kv are label name/value pairs
func Record(name string, value float64, kv ...string) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	err := s.InsertRows([]tstorage.Row{{
		Metric:    name,
		Labels:    labels(kv),
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
	}})
	if err != nil {
		zap.L().Debug("metrics insert failed", zap.String("metric", name), zap.Error(err))
	}
}

// SetGauge records the current value of a gauge
func SetGauge(name string, value int64, kv ...string) {
	Record(name, float64(value), kv...)
}

// Points returns the data points of a metric between since and now
func Points(name string, since time.Time, kv ...string) ([]*tstorage.DataPoint, error) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return nil, nil
	}
	// tstorage's end bound is exclusive
	points, err := s.Select(name, labels(kv), since.Unix(), time.Now().Unix()+1)
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return nil, nil
	}
	return points, errors.Wrapf(err, "select %s", name)
}

// Sum adds up the values recorded for a metric since the given time
func Sum(name string, since time.Time, kv ...string) float64 {
	points, err := Points(name, since, kv...)
	if err != nil {
		zap.L().Debug("metrics select failed", zap.String("metric", name), zap.Error(err))
		return 0
	}
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return total
}

// Last returns the most recent value of a gauge
func Last(name string, since time.Time, kv ...string) (float64, bool) {
	points, err := Points(name, since, kv...)
	if err != nil || len(points) == 0 {
		return 0, false
	}
	return points[len(points)-1].Value, true
}

func Close() error {
	mu.Lock()
	s := storage
	storage = nil
	mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Close()
}
