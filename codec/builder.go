package codec

import (
	"fmt"
	"reflect"

	"github.com/c360/envelope/errors"
	"github.com/c360/envelope/message"
	"github.com/c360/envelope/registry"
)

// Builder registers message types and builds a Codec.
//
// The Status and Heartbeat types are registered for every builder unless
// WithoutBuiltins is given. A Builder is not safe for concurrent use.
type Builder struct {
	opts     options
	registry *registry.Registry
	built    bool
}

// NewBuilder creates a Builder with optional configuration.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		opts:     defaultOptions(),
		registry: registry.New(),
	}
	for _, opt := range opts {
		opt(&b.opts)
	}

	if b.opts.builtins {
		err := b.Register(
			func() message.Message { return &message.StatusMessage{} },
			func() message.Message { return &message.HeartbeatMessage{} },
		)
		if err != nil {
			panic("failed to register builtin message types: " + err.Error())
		}
	}
	return b
}

// Register registers the message type produced by each factory. The
// discriminator and Go type are taken from one sample instance.
func (b *Builder) Register(factories ...registry.Factory) error {
	for _, factory := range factories {
		if factory == nil {
			return errors.WrapRegistration(
				fmt.Errorf("%w: nil factory", errors.ErrNoZeroValue),
				"Builder", "Register", "factory validation")
		}

		sample, err := callFactory(factory)
		if err != nil {
			return err
		}
		if err := b.RegisterType(sample.MessageType(), reflect.TypeOf(sample), factory); err != nil {
			return err
		}
	}
	return nil
}

// RegisterType registers goType under the discriminator derived from source.
// A nil factory asks the registry to synthesize a zero-value factory.
func (b *Builder) RegisterType(source string, goType reflect.Type, factory registry.Factory) error {
	return b.RegisterDescriptor(&registry.Descriptor{Type: source, GoType: goType, Factory: factory})
}

// RegisterDescriptor registers a fully described message type.
func (b *Builder) RegisterDescriptor(d *registry.Descriptor) error {
	if b.built {
		return errors.WrapRegistration(errors.ErrRegistryFrozen, "Builder", "Register", "builder state")
	}
	if err := b.registry.RegisterDescriptor(d); err != nil {
		return err
	}

	b.opts.logger.Debug("registered message type",
		"type", registry.Normalize(d.Type),
		"go_type", fmt.Sprint(d.GoType))
	return nil
}

// Build freezes the registry and returns the Codec. The Builder cannot be
// used afterwards.
func (b *Builder) Build() (*Codec, error) {
	if b.built {
		return nil, errors.WrapRegistration(errors.ErrRegistryFrozen, "Builder", "Build", "builder state")
	}

	policies, err := buildPolicyTable(b.opts.policies, b.registry)
	if err != nil {
		return nil, err
	}

	b.registry.Freeze()
	b.built = true

	c := &Codec{
		registry: b.registry,
		logger:   b.opts.logger,
		metrics:  b.opts.metrics,
		policies: policies,
		maxBytes: b.opts.maxBytes,
		maxDepth: b.opts.maxDepth,
	}
	for _, d := range b.registry.List() {
		c.types.Store(d.GoType, d.Type)
	}

	b.opts.logger.Debug("codec built", "types", b.registry.Len(), "field_policies", len(b.opts.policies))
	return c, nil
}

// MustBuild is like Build but panics on error. Intended for package-level codecs
// whose registrations are fixed at compile time.
func (b *Builder) MustBuild() *Codec {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

func callFactory(factory registry.Factory) (m message.Message, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.WrapRegistration(
				fmt.Errorf("%w: factory panicked: %v", errors.ErrNoZeroValue, rec),
				"Builder", "Register", "factory check")
		}
	}()

	m = factory()
	if isNilMessage(m) {
		return nil, errors.WrapRegistration(
			fmt.Errorf("%w: factory returned nil", errors.ErrNoZeroValue),
			"Builder", "Register", "factory check")
	}
	return m, nil
}
