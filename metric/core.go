package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/envelope/errors"
)

// CodecMetrics counts encode and decode activity of a codec.
//
// A nil *CodecMetrics is valid and records nothing.
type CodecMetrics struct {
	Messages  *prometheus.CounterVec
	Errors    *prometheus.CounterVec
	BatchSize *prometheus.HistogramVec
}

// NewCodecMetrics creates the codec metrics without registering them.
func NewCodecMetrics() *CodecMetrics {
	return &CodecMetrics{
		Messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "envelope",
				Subsystem: "codec",
				Name:      "messages_total",
				Help:      "Total number of messages encoded or decoded",
			},
			[]string{"operation", "type"},
		),

		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "envelope",
				Subsystem: "codec",
				Name:      "errors_total",
				Help:      "Total number of failed encode or decode calls by error class",
			},
			[]string{"operation", "class"},
		),

		BatchSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "envelope",
				Subsystem: "codec",
				Name:      "batch_size",
				Help:      "Number of messages per encode or decode call",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
			},
			[]string{"operation"},
		),
	}
}

// Collectors returns every collector of the codec metrics.
func (m *CodecMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Messages, m.Errors, m.BatchSize}
}

// ObserveBatch records one successful call that handled messages of the given types.
func (m *CodecMetrics) ObserveBatch(operation string, types []string) {
	if m == nil {
		return
	}
	for _, t := range types {
		m.Messages.WithLabelValues(operation, t).Inc()
	}
	m.BatchSize.WithLabelValues(operation).Observe(float64(len(types)))
}

// ObserveError records one failed call, labelled with the class of err.
func (m *CodecMetrics) ObserveError(operation string, err error) {
	if m == nil || err == nil {
		return
	}
	m.Errors.WithLabelValues(operation, errorClass(err)).Inc()
}

func errorClass(err error) string {
	class, ok := errors.Classify(err)
	if !ok {
		return "unknown"
	}
	return class.String()
}
