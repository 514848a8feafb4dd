package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/envelope/errors"
)

// MetricsRegistry owns a Prometheus registry with Go runtime collectors and
// the metrics of every codec registered on it.
type MetricsRegistry struct {
	prometheusRegistry *prometheus.Registry
	codecs             map[string]*CodecMetrics
	mu                 sync.Mutex
}

// NewMetricsRegistry creates a new metrics registry
func NewMetricsRegistry() *MetricsRegistry {
	r := &MetricsRegistry{
		prometheusRegistry: prometheus.NewRegistry(),
		codecs:             make(map[string]*CodecMetrics),
	}

	// Add Go runtime metrics
	r.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// CodecMetrics returns the metrics registered under name, creating and
// registering them on first use. Codecs sharing a name share their counters.
func (r *MetricsRegistry) CodecMetrics(name string) (*CodecMetrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.codecs[name]; ok {
		return m, nil
	}

	m := NewCodecMetrics()
	registerer := prometheus.WrapRegistererWith(prometheus.Labels{"codec": name}, r.prometheusRegistry)
	if err := Register(registerer, m); err != nil {
		return nil, errors.Wrap(err, "MetricsRegistry", "CodecMetrics", fmt.Sprintf("register metrics for codec %s", name))
	}

	r.codecs[name] = m
	return m, nil
}

// Register registers m with reg. Collectors that are already registered are
// adopted, so registering the same metrics twice is not an error.
func Register(reg prometheus.Registerer, m *CodecMetrics) error {
	if m == nil {
		return nil
	}

	for i, c := range m.Collectors() {
		err := reg.Register(c)
		if err == nil {
			continue
		}

		var alreadyRegErr prometheus.AlreadyRegisteredError
		if !stderrors.As(err, &alreadyRegErr) {
			return errors.Wrap(err, "metric", "Register", "prometheus registration")
		}

		// Reuse the collector that won
		switch i {
		case 0:
			if existing, ok := alreadyRegErr.ExistingCollector.(*prometheus.CounterVec); ok {
				m.Messages = existing
			}
		case 1:
			if existing, ok := alreadyRegErr.ExistingCollector.(*prometheus.CounterVec); ok {
				m.Errors = existing
			}
		case 2:
			if existing, ok := alreadyRegErr.ExistingCollector.(*prometheus.HistogramVec); ok {
				m.BatchSize = existing
			}
		}
	}
	return nil
}
