// Package registry maps message discriminators to the Go types that decode them.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/c360/envelope/errors"
	"github.com/c360/envelope/identifier"
	"github.com/c360/envelope/message"
)

// Factory creates a blank message instance to be populated by the decoder.
type Factory func() message.Message

// Descriptor holds the factory and metadata for one message type.
type Descriptor struct {
	Type        string       `json:"type"`        // Normalized discriminator (e.g., "status")
	GoType      reflect.Type `json:"-"`           // Concrete Go type produced by Factory
	Factory     Factory      `json:"-"`           // Factory function (not serializable)
	Description string       `json:"description"` // Human-readable description
}

// New returns a blank instance from the descriptor's factory.
func (d *Descriptor) New() message.Message {
	return d.Factory()
}

var messageInterface = reflect.TypeOf((*message.Message)(nil)).Elem()

// Normalize returns the canonical form of a discriminator: trimmed and lowercased.
func Normalize(discriminator string) string {
	return strings.ToLower(strings.TrimSpace(discriminator))
}

// ValidateDiscriminator normalizes source and checks it against the identifier syntax.
func ValidateDiscriminator(source string) (string, error) {
	normalized := Normalize(source)
	if err := identifier.Validate(normalized); err != nil {
		return "", errors.WrapRegistration(
			fmt.Errorf("%w %q: %w", errors.ErrInvalidIdentifier, source, err),
			"Registry", "ValidateDiscriminator", "identifier syntax")
	}
	return normalized, nil
}

// Registry maps normalized discriminators to message descriptors.
//
// A Registry is populated during startup and frozen before concurrent decoding
// begins. All methods are safe for concurrent use.
type Registry struct {
	descriptors map[string]*Descriptor // Registry by discriminator
	byGoType    map[reflect.Type]string
	frozen      bool
	mu          sync.RWMutex // Protects the maps
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		descriptors: make(map[string]*Descriptor),
		byGoType:    make(map[reflect.Type]string),
	}
}

// Register binds the discriminator derived from source to goType.
//
// The discriminator is trimmed, lowercased and validated. Registering the same
// discriminator again with the same Go type is a no-op that refreshes the
// factory; a different Go type is a conflict. When factory is nil a zero-value
// factory is synthesized from goType. Every factory is called once and must
// return a non-nil value of goType.
func (r *Registry) Register(source string, goType reflect.Type, factory Factory) error {
	return r.RegisterDescriptor(&Descriptor{Type: source, GoType: goType, Factory: factory})
}

// RegisterDescriptor registers d, normalizing d.Type in a copy.
func (r *Registry) RegisterDescriptor(d *Descriptor) error {
	if d == nil {
		return errors.WrapRegistration(errors.ErrNotMessageType, "Registry", "Register", "descriptor validation")
	}

	discriminator, err := ValidateDiscriminator(d.Type)
	if err != nil {
		return err
	}

	if d.GoType == nil || !d.GoType.Implements(messageInterface) {
		return errors.WrapRegistration(
			fmt.Errorf("%w: %v", errors.ErrNotMessageType, d.GoType),
			"Registry", "Register", "type validation")
	}

	factory := d.Factory
	if factory == nil {
		factory, err = zeroValueFactory(d.GoType)
		if err != nil {
			return err
		}
	}
	if err := checkFactory(factory, d.GoType); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errors.WrapRegistration(errors.ErrRegistryFrozen, "Registry", "Register", "frozen check")
	}

	if existing, exists := r.descriptors[discriminator]; exists && existing.GoType != d.GoType {
		return errors.WrapRegistration(
			fmt.Errorf("%w: %q is bound to %v, not %v", errors.ErrTypeConflict, discriminator, existing.GoType, d.GoType),
			"Registry", "Register", "duplicate type check")
	}

	// A Go type keeps one discriminator; rebinding it under a new name would
	// make encoding ambiguous.
	if bound, exists := r.byGoType[d.GoType]; exists && bound != discriminator {
		return errors.WrapRegistration(
			fmt.Errorf("%w: %v is already registered as %q", errors.ErrTypeConflict, d.GoType, bound),
			"Registry", "Register", "duplicate type check")
	}

	r.descriptors[discriminator] = &Descriptor{
		Type:        discriminator,
		GoType:      d.GoType,
		Factory:     factory,
		Description: d.Description,
	}
	r.byGoType[d.GoType] = discriminator
	return nil
}

// Resolve returns the descriptor for discriminator, normalizing it first.
func (r *Registry) Resolve(discriminator string) (*Descriptor, error) {
	normalized := Normalize(discriminator)
	if normalized == "" {
		return nil, errors.WrapParse(errors.ErrMissingType, "Registry", "Resolve", "type lookup")
	}

	r.mu.RLock()
	d, exists := r.descriptors[normalized]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.WrapParse(
			fmt.Errorf("%w '%s'", errors.ErrUnknownType, normalized),
			"Registry", "Resolve", "type lookup")
	}
	return d, nil
}

// Create returns a blank instance for discriminator.
func (r *Registry) Create(discriminator string) (message.Message, error) {
	d, err := r.Resolve(discriminator)
	if err != nil {
		return nil, err
	}
	return d.New(), nil
}

// Lookup returns the discriminator registered for goType.
func (r *Registry) Lookup(goType reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	discriminator, exists := r.byGoType[goType]
	return discriminator, exists
}

// Freeze rejects any further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Len returns the number of registered discriminators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}

// List returns all registered descriptors sorted by discriminator.
// Returned descriptors are copies without the factory function.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		result = append(result, Descriptor{
			Type:        d.Type,
			GoType:      d.GoType,
			Description: d.Description,
			// Factory is intentionally not copied
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}
