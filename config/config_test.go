package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/envelope/codec"
	"github.com/c360/envelope/message"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultMaxMessageBytes, cfg.MaxMessageBytes)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.Empty(t, cfg.FieldPolicies)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "envelope.json", `{
		"max_message_bytes": 2048,
		"max_depth": 8,
		"field_policies": [
			{"type": "status", "field": "status", "case": "upper"}
		],
		"logging": {"level": "debug", "format": "text"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2048, cfg.MaxMessageBytes)
	assert.Equal(t, 8, cfg.MaxDepth)
	require.Len(t, cfg.FieldPolicies, 1)
	assert.Equal(t, FieldPolicy{Type: "status", Field: "status", Case: "upper"}, cfg.FieldPolicies[0])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "envelope.yaml", `
max_message_bytes: 4096
field_policies:
  - type: status
    field: status
    case: lower
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.MaxMessageBytes)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth, "unset fields keep defaults")
	require.Len(t, cfg.FieldPolicies, 1)
	assert.Equal(t, "lower", cfg.FieldPolicies[0].Case)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_YMLExtension(t *testing.T) {
	path := writeFile(t, "envelope.yml", "max_depth: 4\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxDepth)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		errMsg  string
	}{
		{"unsupported extension", "envelope.toml", "max_depth = 4", "only JSON or YAML"},
		{"invalid json", "bad.json", `{"max_depth": }`, "invalid JSON"},
		{"invalid yaml", "bad.yaml", "max_depth: [", "invalid YAML"},
		{"negative limit", "neg.json", `{"max_depth": -1}`, "max_depth cannot be negative"},
		{"bad policy type", "policy.json", `{"field_policies":[{"type":"$x","field":"status"}]}`, "field_policies[0].type"},
		{"missing policy field", "policy.json", `{"field_policies":[{"type":"status"}]}`, "field_policies[0].field is required"},
		{"bad policy case", "policy.json", `{"field_policies":[{"type":"status","field":"status","case":"title"}]}`, "field_policies[0].case"},
		{"duplicate policy", "dup.yaml", `
field_policies:
  - {type: status, field: status, case: upper}
  - {type: STATUS, field: status, case: lower}
`, "duplicate policy"},
		{"bad log format", "log.json", `{"logging":{"format":"xml"}}`, "logging.format"},
		{"bad log level", "level.yaml", "logging:\n  level: verbose\n", "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot stat config file")
}

func TestLoad_TooDeep(t *testing.T) {
	deep := `{"field_policies":[` + repeat("[", maxJSONDepth) + repeat("]", maxJSONDepth) + `]}`
	path := writeFile(t, "deep.json", deep)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting too deep")
}

func TestLoader_Layers(t *testing.T) {
	base := writeFile(t, "base.yaml", `
max_message_bytes: 1000
max_depth: 10
field_policies:
  - {type: status, field: status, case: upper}
`)
	override := writeFile(t, "override.json", `{"max_depth": 20}`)

	loader := NewLoader()
	loader.AddLayer(base)
	loader.AddLayer(override)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.MaxMessageBytes)
	assert.Equal(t, 20, cfg.MaxDepth)
	assert.Len(t, cfg.FieldPolicies, 1)
}

func TestLoader_EnvOverrides(t *testing.T) {
	path := writeFile(t, "envelope.json", `{"max_message_bytes": 100}`)

	t.Setenv("ENVELOPE_MAX_MESSAGE_BYTES", "512")
	t.Setenv("ENVELOPE_MAX_DEPTH", "3")
	t.Setenv("ENVELOPE_LOG_LEVEL", "warn")
	t.Setenv("ENVELOPE_LOG_FORMAT", "text")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.MaxMessageBytes)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoader_EnvOverrideInvalid(t *testing.T) {
	path := writeFile(t, "envelope.json", `{}`)
	t.Setenv("ENVELOPE_MAX_DEPTH", "deep")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENVELOPE_MAX_DEPTH")
}

func TestLoader_ValidationDisabled(t *testing.T) {
	path := writeFile(t, "envelope.json", `{"max_depth": -5}`)

	loader := NewLoader()
	loader.EnableValidation(false)
	cfg, err := loader.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, -5, cfg.MaxDepth)
}

func TestConfig_SaveToFile(t *testing.T) {
	cfg := Default()
	cfg.FieldPolicies = []FieldPolicy{{Type: "status", Field: "status", Case: "upper"}}

	for _, name := range []string{"saved.json", "saved.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, cfg.SaveToFile(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}

	assert.Error(t, cfg.SaveToFile(filepath.Join(t.TempDir(), "saved.txt")))
}

func TestConfig_Clone(t *testing.T) {
	cfg := Default()
	cfg.FieldPolicies = []FieldPolicy{{Type: "status", Field: "status", Case: "upper"}}

	clone := cfg.Clone()
	clone.FieldPolicies[0].Case = "lower"
	clone.MaxDepth = 1

	assert.Equal(t, "upper", cfg.FieldPolicies[0].Case)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.NotNil(t, (*Config)(nil).Clone())
}

func TestConfig_CodecOptions(t *testing.T) {
	cfg := Default()
	cfg.MaxMessageBytes = 64
	cfg.FieldPolicies = []FieldPolicy{{Type: "status", Field: "status", Case: "upper"}}

	opts, err := cfg.CodecOptions()
	require.NoError(t, err)

	c, err := codec.NewBuilder(opts...).Build()
	require.NoError(t, err)

	out, err := c.Encode(message.NewStatus(uuid.MustParse("0b7e6c1a-3f1e-4d5b-9b8f-2a6c4d1e9f00"), message.StatusOnline))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"status":"ONLINE"`)

	_, err = c.Decode([]byte(`{"type":"heartbeat","payload":"` + repeat("x", 64) + `"}`))
	assert.Error(t, err, "max_message_bytes should reach the codec")
}

func TestConfig_CodecOptionsBadCase(t *testing.T) {
	cfg := Default()
	cfg.FieldPolicies = []FieldPolicy{{Type: "status", Field: "status", Case: "camel"}}

	_, err := cfg.CodecOptions()
	assert.Error(t, err)
}

func repeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
