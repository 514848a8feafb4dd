// Package subject parses the identifiers of the entities that messages refer to.
//
// A subject identifier is a UUID written in one of three forms:
//
//	reBaGYgHQ8OoTqfamvttvA                 22 chars, unpadded base64url
//	c35a67c9b797469fa893cf81b4104898       32 chars, hex without hyphens
//	c35a67c9-b797-469f-a893-cf81b4104898   36 chars, canonical
package subject

import (
	"encoding/base64"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/c360/envelope/errors"
)

// Lengths of the accepted textual forms.
const (
	Base64Length    = 22
	CompactLength   = 32
	CanonicalLength = 36
)

// ErrInvalidSubject is returned for text that is not a subject identifier.
var ErrInvalidSubject = stderrors.New("invalid subject identifier")

// ParseID parses s in any of the accepted forms. Errors are parse-class and
// wrap ErrInvalidSubject.
func ParseID(s string) (uuid.UUID, error) {
	switch len(s) {
	case Base64Length:
		return DecodeBase64(s)
	case CompactLength, CanonicalLength:
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, errors.WrapParse(
				fmt.Errorf("%w: %q: %v", ErrInvalidSubject, s, err), "subject", "ParseID", "uuid parse")
		}
		return id, nil
	default:
		return uuid.Nil, errors.WrapParse(
			fmt.Errorf("%w: %q has length %d", ErrInvalidSubject, s, len(s)), "subject", "ParseID", "length check")
	}
}

// EncodeBase64 returns the 22-character form of id.
func EncodeBase64(id uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// DecodeBase64 parses the 22-character form produced by EncodeBase64.
func DecodeBase64(s string) (uuid.UUID, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return uuid.Nil, errors.WrapParse(
			fmt.Errorf("%w: %q: %v", ErrInvalidSubject, s, err), "subject", "DecodeBase64", "base64 decode")
	}
	id, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.Nil, errors.WrapParse(
			fmt.Errorf("%w: %q: %v", ErrInvalidSubject, s, err), "subject", "DecodeBase64", "uuid conversion")
	}
	return id, nil
}
