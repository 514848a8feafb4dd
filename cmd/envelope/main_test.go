package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const subjectID = "c35a67c9-b797-469f-a893-cf81b4104898"

func runCLI(t *testing.T, input string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(input), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Decode(t *testing.T) {
	input := `[{"type":"status","subject_id":"` + subjectID + `","status":"online"},{"type":"heartbeat"}]`

	code, out, _ := runCLI(t, input)
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0\tstatus\t"+subjectID+"\tvalid", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1\theartbeat\t-\tinvalid: "), lines[1])
}

func TestRun_DecodeUnknownType(t *testing.T) {
	code, out, errOut := runCLI(t, `{"type":"bogus"}`, "-log-format", "text")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "class=parse")
	assert.Contains(t, errOut, "unknown type")
}

func TestRun_Validate(t *testing.T) {
	code, out, _ := runCLI(t, `{"type":"heartbeat","payload":"x"}`, "-mode", "validate")
	assert.Equal(t, 0, code)
	assert.Equal(t, "ok: 1 valid message(s)\n", out)

	code, out, errOut := runCLI(t, `{"type":"status","status":"online"}`, "-mode", "validate", "-log-format", "text")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "class=validation")
}

func TestRun_Normalize(t *testing.T) {
	input := `  {"TYPE":"STATUS","status":"ONLINE","subject_id":"` + subjectID + `"}  `

	code, out, _ := runCLI(t, input, "-mode", "normalize")
	require.Equal(t, 0, code)
	assert.Equal(t, `[{"type":"status","subject_id":"`+subjectID+`","status":"online"}]`+"\n", out)
}

func TestRun_NormalizeWithConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "envelope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
field_policies:
  - type: status
    field: status
    case: upper
`), 0600))

	input := `{"type":"status","status":"online","subject_id":"` + subjectID + `"}`
	code, out, _ := runCLI(t, input, "-mode", "normalize", "-config", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"status":"ONLINE"`)
}

func TestRun_Emit(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "status from base64 subject",
			args:     []string{"-mode", "emit", "-type", "status", "-subject", "w1pnybeXRp-ok8-BtBBImA", "-value", "OFFLINE"},
			expected: `[{"type":"status","subject_id":"` + subjectID + `","status":"offline"}]`,
		},
		{
			name:     "command from compact subject",
			args:     []string{"-mode", "emit", "-type", "command", "-subject", "c35a67c9b797469fa893cf81b4104898", "-value", "add"},
			expected: `[{"type":"command","subject_id":"` + subjectID + `","command":"ADD"}]`,
		},
		{
			name:     "heartbeat",
			args:     []string{"-mode", "emit", "-type", "heartbeat", "-value", "tick"},
			expected: `[{"type":"heartbeat","payload":"tick"}]`,
		},
		{
			name:     "empty heartbeat",
			args:     []string{"-mode", "emit", "-type", "heartbeat", "-value", ""},
			expected: `[{"type":"heartbeat","payload":""}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, "", tt.args...)
			require.Equal(t, 0, code, errOut)
			assert.Equal(t, tt.expected+"\n", out)
		})
	}
}

func TestRun_EmitErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing type", []string{"-mode", "emit"}, 2},
		{"unsupported type", []string{"-mode", "emit", "-type", "ping"}, 1},
		{"bad subject", []string{"-mode", "emit", "-type", "status", "-subject", "xyz", "-value", "online"}, 1},
		{"bad status", []string{"-mode", "emit", "-type", "status", "-subject", subjectID, "-value", "away"}, 1},
		{"heartbeat without value", []string{"-mode", "emit", "-type", "heartbeat"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, _ := runCLI(t, "", tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Empty(t, out)
		})
	}
}

func TestRun_Flags(t *testing.T) {
	code, out, _ := runCLI(t, "", "-version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, Version)

	code, _, _ = runCLI(t, "", "-mode", "shred")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "", "-log-level", "loud")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "", "-no-such-flag")
	assert.Equal(t, 2, code)

	code, _, errOut := runCLI(t, "", "-help")
	assert.Equal(t, 0, code)
	assert.Contains(t, errOut, "Usage:")
}

func TestRun_EnvFallback(t *testing.T) {
	t.Setenv("ENVELOPE_MODE", "validate")

	code, out, _ := runCLI(t, `{"type":"heartbeat","payload":"x"}`)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "ok: 1")
}

func TestRun_MissingConfig(t *testing.T) {
	code, _, errOut := runCLI(t, "{}", "-config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "load config")
}

func TestRun_Metrics(t *testing.T) {
	code, _, errOut := runCLI(t, `{"type":"heartbeat","payload":"x"}`, "-metrics")
	require.Equal(t, 0, code)
	assert.Contains(t, errOut, `envelope_codec_messages_total{codec="envelope",operation="decode",type="heartbeat"} 1`)
}

func TestRun_InputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"type":"heartbeat","payload":"a"},{"type":"heartbeat","payload":"b"}]`), 0600))

	code, out, _ := runCLI(t, "", "-mode", "validate", "-input", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "ok: 2 valid message(s)\n", out)
}
