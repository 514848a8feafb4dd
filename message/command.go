package message

import (
	"github.com/google/uuid"

	"github.com/c360/envelope/enum"
	"github.com/c360/envelope/errors"
)

// CommandType is the discriminator of CommandMessage.
const CommandType = "command"

// Command is an instruction applied to a subject.
type Command string

// Command values.
const (
	CommandAdd    Command = "ADD"
	CommandRemove Command = "REMOVE"
)

// Commands are written as declared.
var Commands = enum.NewSet("command", enum.Natural, CommandAdd, CommandRemove)

// MarshalText implements encoding.TextMarshaler
func (c Command) MarshalText() ([]byte, error) {
	return Commands.MarshalText(c)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Command) UnmarshalText(b []byte) error {
	return Commands.UnmarshalText(c, b)
}

// CommandMessage asks the receiver to apply Command to the subject.
type CommandMessage struct {
	Identity
	Command Command `json:"command"`
}

// NewCommand creates a CommandMessage for subject.
func NewCommand(subject uuid.UUID, command Command) *CommandMessage {
	return &CommandMessage{
		Identity: Identity{SubjectID: subject},
		Command:  command,
	}
}

// MessageType implements Message
func (m *CommandMessage) MessageType() string {
	return CommandType
}

// Validate implements Message
func (m *CommandMessage) Validate() error {
	if err := m.Identity.Validate(); err != nil {
		return err
	}
	if m.Command == "" {
		return errors.WrapValidation(errors.ErrMissingField, "CommandMessage", "Validate", "command check")
	}
	if err := Commands.Validate(m.Command); err != nil {
		return errors.WrapValidation(err, "CommandMessage", "Validate", "command check")
	}
	return nil
}
