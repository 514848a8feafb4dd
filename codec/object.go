package codec

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// objectField is one top-level property of a JSON object, kept in wire order.
type objectField struct {
	key   string
	value json.RawMessage
}

// object is a JSON object split into its top-level properties.
type object []objectField

// parseObject splits data into its top-level properties. Anything other than
// exactly one JSON object is an error.
func parseObject(data []byte) (object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %s", describeToken(tok))
	}

	var obj object
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %s", describeToken(tok))
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		obj = append(obj, objectField{key: key, value: value})
	}

	// Closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !stderrors.Is(err, io.EOF) {
		return nil, stderrors.New("unexpected data after JSON object")
	}
	return obj, nil
}

// get returns the value of key. Like encoding/json, an exact match is preferred
// over a case-insensitive one and the last occurrence wins.
func (o object) get(key string) (json.RawMessage, bool) {
	var folded json.RawMessage
	foundFolded := false
	var exact json.RawMessage
	foundExact := false

	for _, f := range o {
		switch {
		case f.key == key:
			exact, foundExact = f.value, true
		case strings.EqualFold(f.key, key):
			folded, foundFolded = f.value, true
		}
	}
	if foundExact {
		return exact, true
	}
	return folded, foundFolded
}

// has reports whether key is present, compared case-insensitively.
func (o object) has(key string) bool {
	_, ok := o.get(key)
	return ok
}

// writeTagged writes the object to buf with a leading "type" property.
func (o object) writeTagged(buf *bytes.Buffer, discriminator string) error {
	buf.WriteString(`{"type":`)
	if err := writeJSONString(buf, discriminator); err != nil {
		return err
	}
	for _, f := range o {
		buf.WriteByte(',')
		if err := writeJSONString(buf, f.key); err != nil {
			return err
		}
		buf.WriteByte(':')
		buf.Write(f.value)
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		return fmt.Sprintf("%q", string(v))
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	default:
		return "a number"
	}
}
