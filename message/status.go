package message

import (
	"github.com/google/uuid"

	"github.com/c360/envelope/enum"
	"github.com/c360/envelope/errors"
)

// StatusType is the discriminator of StatusMessage.
const StatusType = "status"

// Status is the connection status of a subject.
type Status string

// Status values.
const (
	StatusOnline  Status = "ONLINE"
	StatusOffline Status = "OFFLINE"
)

// Statuses are written in lowercase; existing consumers only accept "online" and "offline".
var Statuses = enum.NewSet("status", enum.Lower, StatusOnline, StatusOffline)

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return Statuses.MarshalText(s)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(b []byte) error {
	return Statuses.UnmarshalText(s, b)
}

// StatusMessage updates the Status of the subject identified by SubjectID.
type StatusMessage struct {
	Identity
	Status Status `json:"status"`
}

// NewStatus creates a StatusMessage for subject.
func NewStatus(subject uuid.UUID, status Status) *StatusMessage {
	return &StatusMessage{
		Identity: Identity{SubjectID: subject},
		Status:   status,
	}
}

// MessageType implements Message
func (m *StatusMessage) MessageType() string {
	return StatusType
}

// Validate implements Message
func (m *StatusMessage) Validate() error {
	if err := m.Identity.Validate(); err != nil {
		return err
	}
	if m.Status == "" {
		return errors.WrapValidation(errors.ErrMissingField, "StatusMessage", "Validate", "status check")
	}
	if err := Statuses.Validate(m.Status); err != nil {
		return errors.WrapValidation(err, "StatusMessage", "Validate", "status check")
	}
	return nil
}
