// Package message defines the contract shared by every envelope variant and
// ships the Status, Heartbeat and Command variants.
//
// # Variants
//
// A variant is a plain struct whose pointer implements Message:
//
//   - MessageType returns a constant discriminator ("status", "heartbeat", ...)
//   - Validate checks required fields
//
// Variants about a specific subject embed Identity, which contributes the
// "subject_id" field and the Identifiable interface. Their Validate calls
// Identity.Validate before checking their own fields.
//
// # Enumerations
//
// Enum-valued fields declare their wire case through an enum.Set. Status is
// written in lowercase ("online"), Command in its natural uppercase spelling.
// Both are read case-insensitively.
//
// # Wire Shape
//
//	{"type":"status","subject_id":"780e33be-1d57-4f15-9b8e-370e82c2378b","status":"online"}
//	{"type":"heartbeat","payload":"ping"}
//	{"type":"command","subject_id":"780e33be-1d57-4f15-9b8e-370e82c2378b","command":"ADD"}
//
// The "type" field is injected and consumed by the codec package; variants never
// declare it themselves.
package message
