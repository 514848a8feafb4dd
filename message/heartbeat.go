package message

import "github.com/c360/envelope/errors"

// HeartbeatType is the discriminator of HeartbeatMessage.
const HeartbeatType = "heartbeat"

// HeartbeatMessage is a keep-alive carrying a free-form payload.
// A nil Payload is written as null; an empty one is a valid payload.
type HeartbeatMessage struct {
	Payload *string `json:"payload"`
}

// NewHeartbeat creates a HeartbeatMessage.
func NewHeartbeat(payload string) *HeartbeatMessage {
	return &HeartbeatMessage{Payload: &payload}
}

// Text returns the payload, or "" when it is null.
func (m *HeartbeatMessage) Text() string {
	if m.Payload == nil {
		return ""
	}
	return *m.Payload
}

// MessageType implements Message
func (m *HeartbeatMessage) MessageType() string {
	return HeartbeatType
}

// Validate implements Message
func (m *HeartbeatMessage) Validate() error {
	if m.Payload == nil {
		return errors.WrapValidation(errors.ErrMissingField, "HeartbeatMessage", "Validate", "payload check")
	}
	return nil
}
