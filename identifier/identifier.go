// Package identifier validates the identifier syntax shared by message
// discriminators and other domain identifiers.
//
// A valid identifier is 3 to 50 ASCII characters drawn from letters, digits,
// dash and underscore.
package identifier

import (
	"fmt"
	"unicode/utf8"
)

// Length limits, inclusive.
const (
	MinLength = 3
	MaxLength = 50
)

// SyntaxErrorKind names the rule an identifier broke.
type SyntaxErrorKind int

const (
	// Empty means the identifier has no characters
	Empty SyntaxErrorKind = iota
	// TooShort means the identifier is shorter than MinLength
	TooShort
	// TooLong means the identifier is longer than MaxLength
	TooLong
	// InvalidChar means the identifier contains a character outside [A-Za-z0-9_-]
	InvalidChar
)

// String returns the string representation of SyntaxErrorKind
func (k SyntaxErrorKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case TooShort:
		return "min_length"
	case TooLong:
		return "max_length"
	case InvalidChar:
		return "invalid_char"
	default:
		return "unknown"
	}
}

// SyntaxError reports the first rule an identifier broke.
// Limit is set for TooShort and TooLong, Char for InvalidChar.
type SyntaxError struct {
	Kind  SyntaxErrorKind
	Limit int
	Char  rune
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	switch e.Kind {
	case Empty:
		return "identifier cannot be empty"
	case TooShort:
		return fmt.Sprintf("identifier cannot be less than %d characters", e.Limit)
	case TooLong:
		return fmt.Sprintf("identifier cannot be greater than %d characters", e.Limit)
	case InvalidChar:
		return fmt.Sprintf("identifier contains invalid character %q", e.Char)
	default:
		return "invalid identifier"
	}
}

// Validate checks id against the identifier syntax. Rules are checked in order:
// emptiness, minimum length, maximum length, then characters left to right.
// The returned error, if any, is a *SyntaxError.
func Validate(id string) error {
	if id == "" {
		return &SyntaxError{Kind: Empty}
	}

	n := utf8.RuneCountInString(id)
	if n < MinLength {
		return &SyntaxError{Kind: TooShort, Limit: MinLength}
	}
	if n > MaxLength {
		return &SyntaxError{Kind: TooLong, Limit: MaxLength}
	}

	for _, r := range id {
		if !isIdentifierRune(r) {
			return &SyntaxError{Kind: InvalidChar, Char: r}
		}
	}
	return nil
}

// IsValid reports whether id passes Validate.
func IsValid(id string) bool {
	return Validate(id) == nil
}

func isIdentifierRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '-' || r == '_'
}
