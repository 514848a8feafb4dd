package codec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/c360/envelope/enum"
	"github.com/c360/envelope/errors"
	"github.com/c360/envelope/registry"
)

// FieldPolicy overrides the case a top-level string field of one message type
// is written in. Reading is unaffected: enum fields always match case-insensitively.
type FieldPolicy struct {
	Type  string    // Discriminator of the message type
	Field string    // JSON property name as written by the variant, matched exactly
	Case  enum.Case // Case applied to the written value
}

// policyTable maps discriminator -> field -> case.
type policyTable map[string]map[string]enum.Case

// buildPolicyTable checks every policy against the registry.
func buildPolicyTable(policies []FieldPolicy, reg *registry.Registry) (policyTable, error) {
	table := make(policyTable)
	for _, p := range policies {
		d, err := reg.Resolve(p.Type)
		if err != nil {
			return nil, errors.WrapRegistration(
				fmt.Errorf("%w: field policy for %q: %w", errors.ErrNotMessageType, p.Type, err),
				"Codec", "Build", "field policy validation")
		}
		if p.Field == "" {
			return nil, errors.WrapRegistration(
				fmt.Errorf("%w: field policy for %q has no field", errors.ErrInvalidIdentifier, d.Type),
				"Codec", "Build", "field policy validation")
		}
		if registry.Normalize(p.Field) == typeField {
			return nil, errors.WrapRegistration(
				fmt.Errorf("%w: %q", errors.ErrReservedField, typeField),
				"Codec", "Build", "field policy validation")
		}

		if err := checkPolicyField(d, p.Field); err != nil {
			return nil, errors.WrapRegistration(err, "Codec", "Build", "field policy validation")
		}

		fields, ok := table[d.Type]
		if !ok {
			fields = make(map[string]enum.Case)
			table[d.Type] = fields
		}
		fields[p.Field] = p.Case
	}
	return table, nil
}

// apply rewrites the string values of the configured fields in obj.
func (t policyTable) apply(discriminator string, obj object) error {
	fields, ok := t[discriminator]
	if !ok {
		return nil
	}

	for i := range obj {
		c, ok := fields[obj[i].key]
		if !ok {
			continue
		}

		// Only string values carry a case
		raw := obj[i].value
		if len(raw) == 0 || raw[0] != '"' {
			continue
		}

		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		rewritten, err := json.Marshal(c.Apply(s))
		if err != nil {
			return err
		}
		obj[i].value = rewritten
	}
	return nil
}

var jsonMarshaler = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

// checkPolicyField rejects a field the type never writes. Property names are
// case-sensitive on the wire, so a near miss reports the exact spelling.
// Types with their own MarshalJSON are not checked.
func checkPolicyField(d *registry.Descriptor, field string) error {
	if d.GoType == nil || d.GoType.Implements(jsonMarshaler) {
		return nil
	}

	names := make(map[string]bool)
	collectJSONNames(d.GoType, names)
	if names[field] {
		return nil
	}
	for name := range names {
		if strings.EqualFold(name, field) {
			return fmt.Errorf("%w: %s writes %q, not %q", errors.ErrUnknownField, d.Type, name, field)
		}
	}
	return fmt.Errorf("%w: %s does not write %q", errors.ErrUnknownField, d.Type, field)
}

// collectJSONNames adds the top-level property names encoding/json writes for t.
func collectJSONNames(t reflect.Type, names map[string]bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			collectJSONNames(f.Type, names)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names[name] = true
	}
}
