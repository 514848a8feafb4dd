// Package enum provides string enumerations with a declared wire case.
//
// Values are always read case-insensitively: the wire text is uppercased and
// compared against the uppercased constant names. Writing uses the Case the
// enumeration declares, so one type can keep a legacy lowercase wire form while
// another keeps its natural spelling.
//
//	type Status string
//
//	const (
//	    StatusOnline  Status = "ONLINE"
//	    StatusOffline Status = "OFFLINE"
//	)
//
//	var statuses = enum.NewSet("status", enum.Lower, StatusOnline, StatusOffline)
//
//	func (s Status) MarshalText() ([]byte, error) { return statuses.MarshalText(s) }
//	func (s *Status) UnmarshalText(b []byte) error { return statuses.UnmarshalText(s, b) }
package enum

import (
	"fmt"
	"strings"

	"github.com/c360/envelope/errors"
)

// Case is the letter case used when an enum value is written.
type Case int

const (
	// Natural writes the constant exactly as declared
	Natural Case = iota
	// Lower writes the constant in lowercase
	Lower
	// Upper writes the constant in uppercase
	Upper
)

// String returns the string representation of Case
func (c Case) String() string {
	switch c {
	case Natural:
		return "natural"
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	default:
		return "unknown"
	}
}

// Apply returns s rewritten in this case.
func (c Case) Apply(s string) string {
	switch c {
	case Lower:
		return strings.ToLower(s)
	case Upper:
		return strings.ToUpper(s)
	default:
		return s
	}
}

// ParseCase parses a case name as written in configuration files.
// The empty string means Natural.
func ParseCase(s string) (Case, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "natural", "exact":
		return Natural, nil
	case "lower", "lowercase":
		return Lower, nil
	case "upper", "uppercase":
		return Upper, nil
	default:
		return Natural, fmt.Errorf("unknown case %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (c Case) MarshalText() ([]byte, error) {
	if c < Natural || c > Upper {
		return nil, fmt.Errorf("unknown case %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Case) UnmarshalText(b []byte) error {
	parsed, err := ParseCase(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Set is the declared set of constants of one enumeration.
// A Set is immutable after NewSet and safe for concurrent use.
type Set[T ~string] struct {
	name   string
	write  Case
	values []T
	byName map[string]T
}

// NewSet declares an enumeration named name whose values are written in the given case.
func NewSet[T ~string](name string, write Case, values ...T) *Set[T] {
	s := &Set[T]{
		name:   name,
		write:  write,
		values: append([]T(nil), values...),
		byName: make(map[string]T, len(values)),
	}
	for _, v := range values {
		s.byName[strings.ToUpper(string(v))] = v
	}
	return s
}

// Name returns the enumeration name used in error messages.
func (s *Set[T]) Name() string {
	return s.name
}

// WriteCase returns the case values are written in.
func (s *Set[T]) WriteCase() Case {
	return s.write
}

// Values returns the declared constants in declaration order.
func (s *Set[T]) Values() []T {
	return append([]T(nil), s.values...)
}

// Contains reports whether v is one of the declared constants.
func (s *Set[T]) Contains(v T) bool {
	declared, ok := s.byName[strings.ToUpper(string(v))]
	return ok && declared == v
}

// Parse matches text case-insensitively against the declared constants.
func (s *Set[T]) Parse(text string) (T, error) {
	if v, ok := s.byName[strings.ToUpper(text)]; ok {
		return v, nil
	}
	var zero T
	return zero, errors.WrapParse(fmt.Errorf("%w %q", errors.ErrUnknownValue, text), s.name, "Parse", "enum lookup")
}

// Validate reports an error unless v names a declared constant, ignoring case.
func (s *Set[T]) Validate(v T) error {
	if _, ok := s.byName[strings.ToUpper(string(v))]; ok {
		return nil
	}
	return errors.WrapValidation(fmt.Errorf("%w %q", errors.ErrUnknownValue, string(v)), s.name, "Validate", "enum lookup")
}

// Format returns the wire text of v.
func (s *Set[T]) Format(v T) string {
	return s.write.Apply(string(v))
}

// MarshalText writes the constant v names in the declared case, so "online"
// and "ONLINE" produce the same text. The zero value is written as an empty
// string so unset fields can still be inspected.
func (s *Set[T]) MarshalText(v T) ([]byte, error) {
	if v == "" {
		return []byte{}, nil
	}
	declared, ok := s.byName[strings.ToUpper(string(v))]
	if !ok {
		return nil, errors.WrapValidation(fmt.Errorf("%w %q", errors.ErrUnknownValue, string(v)), s.name, "MarshalText", "enum lookup")
	}
	return []byte(s.Format(declared)), nil
}

// UnmarshalText parses b into dst. Empty text leaves dst unset.
func (s *Set[T]) UnmarshalText(dst *T, b []byte) error {
	if len(b) == 0 {
		var zero T
		*dst = zero
		return nil
	}
	v, err := s.Parse(string(b))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
