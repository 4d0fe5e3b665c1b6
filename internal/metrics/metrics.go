package metrics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Optimize outcomes.
const (
	OutcomeOptimized   = "optimized"
	OutcomePassthrough = "passthrough"
)

// Observer captures telemetry for the asset and session lifecycle.
type Observer interface {
	RecordOptimize(outcome string)
	RecordUpload(namespace string, duration time.Duration, sizeBytes int, err error)
	RecordPurge(removed int64, err error)
}

// Nop discards all observations.
type Nop struct{}

func (Nop) RecordOptimize(string) {}

func (Nop) RecordUpload(string, time.Duration, int, error) {}

func (Nop) RecordPurge(int64, error) {}

// PrometheusObserver exports lifecycle metrics to Prometheus.
type PrometheusObserver struct {
	optimizeTotal  *prometheus.CounterVec
	uploadDuration *prometheus.HistogramVec
	uploadErrors   *prometheus.CounterVec
	uploadBytes    prometheus.Counter
	purgeRuns      *prometheus.CounterVec
	purgedRows     prometheus.Counter
}

// NewPrometheusObserver registers the lifecycle metrics under namespace.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "menudesk"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{}
	var err error
	if o.optimizeTotal, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "optimize_total",
		Help:      "Image optimizations by outcome.",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if o.uploadDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_duration_seconds",
		Help:      "Latency of object storage writes.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"namespace"})); err != nil {
		return nil, err
	}
	if o.uploadErrors, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_errors_total",
		Help:      "Failed object storage writes.",
	}, []string{"namespace"})); err != nil {
		return nil, err
	}
	if o.uploadBytes, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_bytes_total",
		Help:      "Bytes successfully written to object storage.",
	})); err != nil {
		return nil, err
	}
	if o.purgeRuns, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_purge_runs_total",
		Help:      "Expired bill session purge runs by result.",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if o.purgedRows, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_purged_rows_total",
		Help:      "Expired bill session rows deleted remotely.",
	})); err != nil {
		return nil, err
	}
	return o, nil
}

// register adds c to reg, returning the existing collector if an identical one
// is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

func (o *PrometheusObserver) RecordOptimize(outcome string) {
	if o == nil {
		return
	}
	o.optimizeTotal.WithLabelValues(outcome).Inc()
}

func (o *PrometheusObserver) RecordUpload(namespace string, duration time.Duration, sizeBytes int, err error) {
	if o == nil {
		return
	}
	label := namespaceLabel(namespace)
	o.uploadDuration.WithLabelValues(label).Observe(duration.Seconds())
	if err != nil {
		o.uploadErrors.WithLabelValues(label).Inc()
		return
	}
	o.uploadBytes.Add(float64(sizeBytes))
}

// namespaceLabel returns the top-level segment of namespace.
func namespaceLabel(namespace string) string {
	return strings.SplitN(namespace, "/", 2)[0]
}

func (o *PrometheusObserver) RecordPurge(removed int64, err error) {
	if o == nil {
		return
	}
	if err != nil {
		o.purgeRuns.WithLabelValues("error").Inc()
		return
	}
	o.purgeRuns.WithLabelValues("ok").Inc()
	o.purgedRows.Add(float64(removed))
}
