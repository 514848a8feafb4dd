package codec

import (
	"log/slog"

	"github.com/c360/envelope/metric"
)

// Option is a functional option for configuring a Builder.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	metrics  *metric.CodecMetrics
	policies []FieldPolicy
	maxBytes int
	maxDepth int
	builtins bool
}

func defaultOptions() options {
	return options{
		logger:   slog.Default(),
		builtins: true,
	}
}

// WithLogger sets the logger used for registration and decode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records encode and decode activity in m.
func WithMetrics(m *metric.CodecMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithFieldPolicies overrides the written case of specific fields.
// Policies are checked against the registry when the codec is built.
func WithFieldPolicies(policies ...FieldPolicy) Option {
	return func(o *options) {
		o.policies = append(o.policies, policies...)
	}
}

// WithMaxBytes rejects decode input larger than n bytes. Zero disables the limit.
func WithMaxBytes(n int) Option {
	return func(o *options) {
		o.maxBytes = n
	}
}

// WithMaxDepth rejects decode input nested deeper than n. Zero disables the limit.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// WithoutBuiltins skips the default registration of the Status and Heartbeat types.
func WithoutBuiltins() Option {
	return func(o *options) {
		o.builtins = false
	}
}
