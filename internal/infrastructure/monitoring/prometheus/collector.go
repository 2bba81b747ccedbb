// Package prometheus provides the metrics collector abstraction and the
// application metric set. Components depend on the MetricsCollector interface
// so tests can run against a fresh registry without global state.
package prometheus

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
)

// MetricsCollector registers and serves metrics.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Handler() http.Handler
}

// CounterVec wraps prometheus.CounterVec.
type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

// Counter wraps prometheus.Counter.
type Counter interface {
	Inc()
	Add(delta float64)
}

// GaugeVec wraps prometheus.GaugeVec.
type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

// Gauge wraps prometheus.Gauge.
type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
}

// HistogramVec wraps prometheus.HistogramVec.
type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

// Histogram wraps prometheus.Histogram.
type Histogram interface {
	Observe(value float64)
}

// CollectorConfig holds collector construction parameters.
type CollectorConfig struct {
	Namespace        string `mapstructure:"namespace"`
	EnableGoMetrics  bool   `mapstructure:"enable_go_metrics"`
	EnableProcMetric bool   `mapstructure:"enable_process_metrics"`
}

type promCollector struct {
	registry  *prometheus.Registry
	namespace string
	logger    logging.Logger

	mu         sync.Mutex
	registered map[string]prometheus.Collector
}

// NewMetricsCollector constructs a MetricsCollector over a private registry.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) MetricsCollector {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	reg := prometheus.NewRegistry()
	if cfg.EnableGoMetrics {
		reg.MustRegister(collectors.NewGoCollector())
	}
	if cfg.EnableProcMetric {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return &promCollector{
		registry:   reg,
		namespace:  cfg.Namespace,
		logger:     logger.Named("metrics"),
		registered: make(map[string]prometheus.Collector),
	}
}

func (c *promCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// register stores and registers a collector once per name; re-registration
// returns the original so duplicate RegisterX calls are idempotent.
func (c *promCollector) register(name string, newCollector prometheus.Collector) prometheus.Collector {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.registered[name]; ok {
		return existing
	}
	if err := c.registry.Register(newCollector); err != nil {
		c.logger.Warn("metric registration failed",
			logging.String("name", name), logging.Err(err))
		var are prometheus.AlreadyRegisteredError
		if ok := errorsAs(err, &are); ok {
			c.registered[name] = are.ExistingCollector
			return are.ExistingCollector
		}
	}
	c.registered[name] = newCollector
	return newCollector
}

// errorsAs is a tiny local indirection to keep the import list flat.
func errorsAs(err error, target *prometheus.AlreadyRegisteredError) bool {
	are, ok := err.(prometheus.AlreadyRegisteredError)
	if ok {
		*target = are
	}
	return ok
}

func (c *promCollector) RegisterCounter(name, help string, labels ...string) CounterVec {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      help,
	}, labels)
	col := c.register(name, vec)
	if v, ok := col.(*prometheus.CounterVec); ok {
		return &promCounterVec{vec: v}
	}
	c.logger.Warn("metric type mismatch", logging.String("name", name), logging.String("type", "counter"))
	return &promCounterVec{vec: vec}
}

func (c *promCollector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      help,
	}, labels)
	col := c.register(name, vec)
	if v, ok := col.(*prometheus.GaugeVec); ok {
		return &promGaugeVec{vec: v}
	}
	c.logger.Warn("metric type mismatch", logging.String("name", name), logging.String("type", "gauge"))
	return &promGaugeVec{vec: vec}
}

func (c *promCollector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	col := c.register(name, vec)
	if v, ok := col.(*prometheus.HistogramVec); ok {
		return &promHistogramVec{vec: v}
	}
	c.logger.Warn("metric type mismatch", logging.String("name", name), logging.String("type", "histogram"))
	return &promHistogramVec{vec: vec}
}

type promCounterVec struct{ vec *prometheus.CounterVec }

func (v *promCounterVec) WithLabelValues(lvs ...string) Counter {
	return v.vec.WithLabelValues(lvs...)
}

type promGaugeVec struct{ vec *prometheus.GaugeVec }

func (v *promGaugeVec) WithLabelValues(lvs ...string) Gauge {
	return v.vec.WithLabelValues(lvs...)
}

type promHistogramVec struct{ vec *prometheus.HistogramVec }

func (v *promHistogramVec) WithLabelValues(lvs ...string) Histogram {
	return v.vec.WithLabelValues(lvs...)
}
