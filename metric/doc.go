// Package metric provides Prometheus instrumentation for envelope codecs.
//
// CodecMetrics holds three collectors:
//
//   - envelope_codec_messages_total{operation,type}: messages encoded or decoded
//   - envelope_codec_errors_total{operation,class}: failed calls by error class
//     (registration, parse, validation, unknown)
//   - envelope_codec_batch_size{operation}: messages per call
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//	m, err := registry.CodecMetrics("ingest")
//	if err != nil {
//	    return err
//	}
//	c, err := codec.NewBuilder(codec.WithMetrics(m)).Build()
//
// Metrics can also be registered on any prometheus.Registerer:
//
//	m := metric.NewCodecMetrics()
//	if err := metric.Register(prometheus.DefaultRegisterer, m); err != nil {
//	    return err
//	}
//
// Register tolerates collectors that are already registered and adopts the
// existing ones, so two codecs built with fresh CodecMetrics against the same
// registerer share their counters.
//
// A nil *CodecMetrics records nothing, which is the codec default.
package metric
