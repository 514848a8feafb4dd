package metric

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/envelope/errors"
)

func TestCodecMetrics_ObserveBatch(t *testing.T) {
	m := NewCodecMetrics()

	m.ObserveBatch("encode", []string{"status", "heartbeat", "status"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Messages.WithLabelValues("encode", "status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Messages.WithLabelValues("encode", "heartbeat")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BatchSize))
}

func TestCodecMetrics_ObserveError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		class string
	}{
		{"parse", errors.WrapParse(errors.ErrUnknownType, "Codec", "Decode", "type lookup"), "parse"},
		{"validation", errors.WrapValidation(errors.ErrMissingField, "Codec", "Encode", "validation"), "validation"},
		{"registration", errors.WrapRegistration(errors.ErrTypeConflict, "Registry", "Register", "conflict"), "registration"},
		{"unclassified", fmt.Errorf("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewCodecMetrics()
			m.ObserveError("decode", tt.err)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("decode", tt.class)))
		})
	}
}

func TestCodecMetrics_NilIsNoop(t *testing.T) {
	var m *CodecMetrics

	assert.NotPanics(t, func() {
		m.ObserveBatch("encode", []string{"status"})
		m.ObserveError("decode", errors.ErrMalformed)
	})
	assert.NoError(t, Register(prometheus.NewRegistry(), nil))
}

func TestCodecMetrics_NilErrorIgnored(t *testing.T) {
	m := NewCodecMetrics()
	m.ObserveError("decode", nil)
	assert.Equal(t, 0, testutil.CollectAndCount(m.Errors))
}

func TestRegister_AdoptsExistingCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewCodecMetrics()
	require.NoError(t, Register(reg, first))

	second := NewCodecMetrics()
	require.NoError(t, Register(reg, second))

	second.ObserveBatch("decode", []string{"status"})
	assert.Equal(t, 1.0, testutil.ToFloat64(first.Messages.WithLabelValues("decode", "status")))
	assert.Same(t, first.Messages, second.Messages)
	assert.Same(t, first.BatchSize, second.BatchSize)
}

func TestRegister_ConflictingDescriptor(t *testing.T) {
	reg := prometheus.NewRegistry()

	// Same name, different label set
	clash := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "envelope",
		Subsystem: "codec",
		Name:      "messages_total",
		Help:      "Total number of messages encoded or decoded",
	}, []string{"direction"})
	require.NoError(t, reg.Register(clash))

	err := Register(reg, NewCodecMetrics())
	assert.Error(t, err)
}

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	assert.NotNil(t, registry)
	assert.NotNil(t, registry.PrometheusRegistry())

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families, "runtime collectors should be registered")
}

func TestMetricsRegistry_CodecMetrics(t *testing.T) {
	registry := NewMetricsRegistry()

	ingest, err := registry.CodecMetrics("ingest")
	require.NoError(t, err)
	again, err := registry.CodecMetrics("ingest")
	require.NoError(t, err)
	assert.Same(t, ingest, again)

	egress, err := registry.CodecMetrics("egress")
	require.NoError(t, err)
	assert.NotSame(t, ingest, egress)

	ingest.ObserveBatch("decode", []string{"status"})
	egress.ObserveBatch("encode", []string{"heartbeat"})

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	var found *float64
	for _, mf := range families {
		if mf.GetName() != "envelope_codec_messages_total" {
			continue
		}
		assert.Len(t, mf.GetMetric(), 2)
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "codec" && label.GetValue() == "ingest" {
					v := metric.GetCounter().GetValue()
					found = &v
				}
			}
		}
	}
	require.NotNil(t, found, "ingest counter should carry the codec label")
	assert.Equal(t, 1.0, *found)
}

func TestMetricsRegistry_ConcurrentCodecMetrics(t *testing.T) {
	registry := NewMetricsRegistry()

	var wg sync.WaitGroup
	results := make([]*CodecMetrics, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := registry.CodecMetrics("shared")
			assert.NoError(t, err)
			results[i] = m
		}(i)
	}
	wg.Wait()

	for _, m := range results {
		assert.Same(t, results[0], m)
	}
}
