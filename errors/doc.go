// Package errors provides the classified error taxonomy used across the envelope codec.
//
// # Overview
//
// Every failure surfaced by the codec falls in one of three classes:
//
//   - Registration: a message type could not be registered (bad discriminator,
//     conflicting Go type, no usable zero value, registry already frozen). These are
//     programmer errors, meant to be caught during service startup and never retried.
//   - Parse: wire data could not be turned into messages (malformed JSON, missing
//     or unknown type, empty batch, input over the configured limits). Recoverable
//     per call; report them to whoever sent the payload.
//   - Validation: a message is missing required fields. Encode aggregates these for
//     the whole batch and emits nothing.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapRegistration(err, "Registry", "Register", "conflict check")
//	errors.WrapParse(err, "Codec", "Decode", "type lookup")
//	errors.WrapValidation(err, "StatusMessage", "Validate", "status check")
//
// # Branching on the Class
//
//	msgs, err := c.Decode(data)
//	switch {
//	case errors.IsParse(err):
//	    // reject the payload, keep serving
//	case errors.IsValidation(err):
//	    // report the missing fields
//	}
//
// Sentinels such as ErrUnknownType and ErrEmptyBatch remain reachable through
// errors.Is, and ValidationErrors unwraps to every per-message cause.
package errors
