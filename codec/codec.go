// Package codec serializes heterogeneous messages to a JSON envelope and
// reconstructs their concrete types from the embedded "type" discriminator.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/c360/envelope/errors"
	"github.com/c360/envelope/message"
	"github.com/c360/envelope/metric"
	"github.com/c360/envelope/registry"
)

const typeField = "type"

// Operation labels used for metrics.
const (
	opEncode = "encode"
	opDecode = "decode"
)

// Codec encodes and decodes message envelopes.
//
// A Codec is created by Builder.Build and is safe for concurrent use: its
// registry is frozen and the per-type discriminator cache is a sync.Map.
type Codec struct {
	registry *registry.Registry
	logger   *slog.Logger
	metrics  *metric.CodecMetrics
	policies policyTable
	maxBytes int
	maxDepth int

	// reflect.Type -> normalized discriminator
	types sync.Map
}

// Types returns the registered message types sorted by discriminator.
func (c *Codec) Types() []registry.Descriptor {
	return c.registry.List()
}

// Discriminator returns the normalized discriminator of m's concrete type.
//
// Registered types use the discriminator they were registered under. Other
// types are resolved from MessageType on first use, validated, and cached.
func (c *Codec) Discriminator(m message.Message) (string, error) {
	if isNilMessage(m) {
		return "", errors.WrapValidation(errors.ErrNilMessage, "Codec", "Discriminator", "message check")
	}

	goType := reflect.TypeOf(m)
	if cached, ok := c.types.Load(goType); ok {
		return cached.(string), nil
	}

	discriminator, err := registry.ValidateDiscriminator(m.MessageType())
	if err != nil {
		return "", errors.WrapRegistration(err, "Codec", "Discriminator", fmt.Sprintf("type of %v", goType))
	}

	actual, _ := c.types.LoadOrStore(goType, discriminator)
	return actual.(string), nil
}

// Encode validates every message and serializes them as a JSON array of
// tagged objects. If any message is invalid nothing is emitted and the
// returned error aggregates every failure of the batch. Encoding no messages
// is a validation error.
func (c *Codec) Encode(msgs ...message.Message) ([]byte, error) {
	out, types, err := c.encode(msgs)
	if err != nil {
		c.metrics.ObserveError(opEncode, err)
		return nil, err
	}
	c.metrics.ObserveBatch(opEncode, types)
	return out, nil
}

func (c *Codec) encode(msgs []message.Message) ([]byte, []string, error) {
	// An empty array would not decode
	if len(msgs) == 0 {
		return nil, nil, errors.WrapValidation(errors.ErrEmptyBatch, "Codec", "Encode", "batch check")
	}

	types := make([]string, len(msgs))
	failures := &errors.ValidationErrors{}

	for i, m := range msgs {
		if isNilMessage(m) {
			failures.Add(i, "", errors.ErrNilMessage)
			continue
		}

		discriminator, err := c.Discriminator(m)
		if err != nil {
			return nil, nil, err
		}
		types[i] = discriminator

		if err := m.Validate(); err != nil {
			failures.Add(i, discriminator, err)
		}
	}

	if err := failures.ErrOrNil(); err != nil {
		return nil, nil, errors.WrapValidation(err, "Codec", "Encode", "message validation")
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, m := range msgs {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := c.encodeOne(&buf, i, types[i], m); err != nil {
			return nil, nil, err
		}
	}
	buf.WriteByte(']')

	return buf.Bytes(), types, nil
}

func (c *Codec) encodeOne(buf *bytes.Buffer, index int, discriminator string, m message.Message) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return errors.WrapValidation(err, "Codec", "Encode", fmt.Sprintf("message %d marshal", index))
	}

	obj, err := parseObject(raw)
	if err != nil {
		return errors.WrapRegistration(
			fmt.Errorf("%w: %s must encode as a JSON object: %w", errors.ErrNotMessageType, discriminator, err),
			"Codec", "Encode", fmt.Sprintf("message %d shape", index))
	}

	if obj.has(typeField) {
		return errors.WrapRegistration(
			fmt.Errorf("%w: %s declares its own %q property", errors.ErrReservedField, discriminator, typeField),
			"Codec", "Encode", fmt.Sprintf("message %d shape", index))
	}

	if err := c.policies.apply(discriminator, obj); err != nil {
		return errors.WrapValidation(err, "Codec", "Encode", fmt.Sprintf("message %d field policy", index))
	}

	return obj.writeTagged(buf, discriminator)
}

// Decode parses a single JSON object or a JSON array of objects into messages.
//
// Each object's "type" property selects the registered Go type, matched
// case-insensitively. Decoded messages are NOT validated; use DecodeValid or
// call Validate before trusting them.
func (c *Codec) Decode(data []byte) ([]message.Message, error) {
	msgs, types, err := c.decode(data)
	if err != nil {
		c.metrics.ObserveError(opDecode, err)
		c.logger.Debug("decode failed", "error", err, "bytes", len(data))
		return nil, err
	}
	c.metrics.ObserveBatch(opDecode, types)
	return msgs, nil
}

func (c *Codec) decode(data []byte) ([]message.Message, []string, error) {
	if c.maxBytes > 0 && len(data) > c.maxBytes {
		return nil, nil, errors.WrapParse(
			fmt.Errorf("%w: %d bytes > %d", errors.ErrTooLarge, len(data), c.maxBytes),
			"Codec", "Decode", "size check")
	}

	trimmed := bytes.TrimSpace(data)

	if c.maxDepth > 0 {
		if err := CheckDepth(trimmed, c.maxDepth); err != nil {
			return nil, nil, errors.WrapParse(
				fmt.Errorf("%w: %w", errors.ErrTooLarge, err),
				"Codec", "Decode", "depth check")
		}
	}

	var objects []json.RawMessage
	if len(trimmed) >= 2 && trimmed[0] == '[' && trimmed[len(trimmed)-1] == ']' {
		if err := json.Unmarshal(trimmed, &objects); err != nil {
			return nil, nil, errors.WrapParse(
				fmt.Errorf("%w: %w", errors.ErrMalformed, err),
				"Codec", "Decode", "array parse")
		}
		if len(objects) == 0 {
			return nil, nil, errors.WrapParse(
				fmt.Errorf("%w: empty JSON array", errors.ErrEmptyBatch),
				"Codec", "Decode", "batch check")
		}
	} else {
		objects = []json.RawMessage{trimmed}
	}

	msgs := make([]message.Message, 0, len(objects))
	types := make([]string, 0, len(objects))
	for i, raw := range objects {
		m, discriminator, err := c.decodeOne(i, raw)
		if err != nil {
			return nil, nil, err
		}
		msgs = append(msgs, m)
		types = append(types, discriminator)
	}
	return msgs, types, nil
}

func (c *Codec) decodeOne(index int, raw json.RawMessage) (message.Message, string, error) {
	action := fmt.Sprintf("message %d", index)

	obj, err := parseObject(raw)
	if err != nil {
		return nil, "", errors.WrapParse(fmt.Errorf("%w: %w", errors.ErrMalformed, err), "Codec", "Decode", action)
	}

	typeRaw, ok := obj.get(typeField)
	if !ok || string(typeRaw) == "null" {
		return nil, "", errors.WrapParse(errors.ErrMissingType, "Codec", "Decode", action)
	}

	var typeName string
	if err := json.Unmarshal(typeRaw, &typeName); err != nil {
		return nil, "", errors.WrapParse(
			fmt.Errorf("%w: %q property must be a string", errors.ErrMalformed, typeField),
			"Codec", "Decode", action)
	}

	d, err := c.registry.Resolve(typeName)
	if err != nil {
		return nil, "", errors.WrapParse(err, "Codec", "Decode", action)
	}

	m, err := populate(d.New(), raw)
	if err != nil {
		return nil, "", errors.WrapParse(
			fmt.Errorf("%w: %s: %w", errors.ErrMalformed, d.Type, err),
			"Codec", "Decode", action)
	}
	return m, d.Type, nil
}

// DecodeValid decodes data and validates every message, aggregating failures.
func (c *Codec) DecodeValid(data []byte) ([]message.Message, error) {
	msgs, err := c.Decode(data)
	if err != nil {
		return nil, err
	}

	failures := &errors.ValidationErrors{}
	for i, m := range msgs {
		if err := m.Validate(); err != nil {
			discriminator, _ := c.Discriminator(m)
			failures.Add(i, discriminator, err)
		}
	}
	if err := failures.ErrOrNil(); err != nil {
		err = errors.WrapValidation(err, "Codec", "DecodeValid", "message validation")
		c.metrics.ObserveError(opDecode, err)
		return nil, err
	}
	return msgs, nil
}

// populate unmarshals raw into instance. Pointer instances are filled in
// place; value instances are copied into a fresh pointer and dereferenced.
func populate(instance message.Message, raw json.RawMessage) (message.Message, error) {
	v := reflect.ValueOf(instance)
	if v.Kind() == reflect.Pointer {
		if err := json.Unmarshal(raw, instance); err != nil {
			return nil, err
		}
		return instance, nil
	}

	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface().(message.Message), nil
}

func isNilMessage(m message.Message) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
