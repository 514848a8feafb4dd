package message

import (
	"github.com/google/uuid"

	"github.com/c360/envelope/errors"
)

// Message is the contract every envelope variant satisfies.
//
// MessageType returns the discriminator declared by the concrete type. It must
// be a constant: the codec normalizes and validates it once per Go type and
// caches the result. Validate checks the variant's own required fields; it is
// run before encoding but never automatically after decoding.
//
// Example implementation:
//
//	type PingMessage struct {
//	    Nonce string `json:"nonce"`
//	}
//
//	func (m *PingMessage) MessageType() string { return "ping" }
//
//	func (m *PingMessage) Validate() error {
//	    if m.Nonce == "" {
//	        return errors.WrapValidation(errors.ErrMissingField, "PingMessage", "Validate", "nonce check")
//	    }
//	    return nil
//	}
type Message interface {
	// MessageType returns the discriminator written to the "type" field.
	MessageType() string

	// Validate returns nil if the message may be encoded.
	Validate() error
}

// Identifiable is implemented by messages about a specific subject.
type Identifiable interface {
	Message

	// Subject returns the identifier of the subject this message is about.
	Subject() uuid.UUID
}

// Identity carries the subject identifier of an Identifiable message.
// Embed it in a variant and call Identity.Validate first from the variant's Validate.
type Identity struct {
	SubjectID uuid.UUID `json:"subject_id"`
}

// Subject returns the subject identifier.
func (i Identity) Subject() uuid.UUID {
	return i.SubjectID
}

// Validate ensures the subject identifier is set.
func (i Identity) Validate() error {
	if i.SubjectID == uuid.Nil {
		return errors.WrapValidation(errors.ErrMissingField, "Identity", "Validate", "subject_id check")
	}
	return nil
}
