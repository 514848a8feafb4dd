package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360/envelope/codec"
	"github.com/c360/envelope/enum"
	"github.com/c360/envelope/identifier"
)

// Default limits applied to decode input.
const (
	DefaultMaxMessageBytes = 1 << 20
	DefaultMaxDepth        = 32
)

// Config is the configuration of a codec and the tools built around it.
type Config struct {
	MaxMessageBytes int           `json:"max_message_bytes" yaml:"max_message_bytes"` // 0 disables the limit
	MaxDepth        int           `json:"max_depth" yaml:"max_depth"`                 // 0 disables the limit
	FieldPolicies   []FieldPolicy `json:"field_policies,omitempty" yaml:"field_policies,omitempty"`
	Logging         LoggingConfig `json:"logging" yaml:"logging"`
}

// FieldPolicy overrides the written case of one field of one message type.
type FieldPolicy struct {
	Type  string `json:"type" yaml:"type"`
	Field string `json:"field" yaml:"field"`
	Case  string `json:"case" yaml:"case"` // natural, lower or upper
}

// LoggingConfig selects the log handler used by the CLI.
type LoggingConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`   // debug, info, warn, error
	Format string `json:"format,omitempty" yaml:"format,omitempty"` // json or text
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		MaxMessageBytes: DefaultMaxMessageBytes,
		MaxDepth:        DefaultMaxDepth,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.MaxMessageBytes < 0 {
		return errors.New("max_message_bytes cannot be negative")
	}
	if c.MaxDepth < 0 {
		return errors.New("max_depth cannot be negative")
	}

	seen := make(map[string]bool, len(c.FieldPolicies))
	for i, p := range c.FieldPolicies {
		if err := identifier.Validate(strings.TrimSpace(p.Type)); err != nil {
			return fmt.Errorf("field_policies[%d].type: %w", i, err)
		}
		if p.Field == "" {
			return fmt.Errorf("field_policies[%d].field is required", i)
		}
		if _, err := enum.ParseCase(p.Case); err != nil {
			return fmt.Errorf("field_policies[%d].case: %w", i, err)
		}

		key := strings.ToLower(strings.TrimSpace(p.Type)) + "." + p.Field
		if seen[key] {
			return fmt.Errorf("field_policies[%d]: duplicate policy for %s", i, key)
		}
		seen[key] = true
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level '%s' must be debug, info, warn or error", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format '%s' must be json or text", c.Logging.Format)
	}

	return nil
}

// CodecOptions translates the configuration into codec builder options.
func (c *Config) CodecOptions() ([]codec.Option, error) {
	opts := []codec.Option{
		codec.WithMaxBytes(c.MaxMessageBytes),
		codec.WithMaxDepth(c.MaxDepth),
	}

	policies := make([]codec.FieldPolicy, 0, len(c.FieldPolicies))
	for i, p := range c.FieldPolicies {
		cs, err := enum.ParseCase(p.Case)
		if err != nil {
			return nil, fmt.Errorf("field_policies[%d].case: %w", i, err)
		}
		policies = append(policies, codec.FieldPolicy{Type: p.Type, Field: p.Field, Case: cs})
	}
	if len(policies) > 0 {
		opts = append(opts, codec.WithFieldPolicies(policies...))
	}

	return opts, nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	clone := *c
	clone.FieldPolicies = append([]FieldPolicy(nil), c.FieldPolicies...)
	return &clone
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// SaveToFile saves the configuration as JSON or YAML depending on the extension of path.
func (c *Config) SaveToFile(path string) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case formatYAML:
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return safeWriteFile(path, data)
}

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: true,
		envPrefix:  "ENVELOPE",
	}
}

// AddLayer adds a configuration file layer. Later layers override the
// fields they set; lists are replaced, not merged.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load loads and merges all configuration layers
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	for _, path := range l.layers {
		if err := l.loadLayer(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// Load reads and validates a single config file on top of the defaults.
func Load(path string) (*Config, error) {
	return NewLoader().LoadFile(path)
}

// loadLayer decodes one file into cfg, leaving unset fields untouched.
func (l *Loader) loadLayer(path string, cfg *Config) error {
	data, err := safeReadFile(path)
	if err != nil {
		return err
	}

	format, err := formatOf(path)
	if err != nil {
		return err
	}

	switch format {
	case formatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		if err := codec.CheckDepth(data, maxJSONDepth); err != nil {
			return fmt.Errorf("invalid JSON structure: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	if val, err := l.getEnv("MAX_MESSAGE_BYTES"); err != nil {
		return err
	} else if val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s_MAX_MESSAGE_BYTES: %w", l.envPrefix, err)
		}
		cfg.MaxMessageBytes = n
	}

	if val, err := l.getEnv("MAX_DEPTH"); err != nil {
		return err
	} else if val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s_MAX_DEPTH: %w", l.envPrefix, err)
		}
		cfg.MaxDepth = n
	}

	if val, err := l.getEnv("LOG_LEVEL"); err != nil {
		return err
	} else if val != "" {
		cfg.Logging.Level = val
	}

	if val, err := l.getEnv("LOG_FORMAT"); err != nil {
		return err
	} else if val != "" {
		cfg.Logging.Format = val
	}

	return nil
}

func (l *Loader) getEnv(name string) (string, error) {
	key := l.envPrefix + "_" + name
	val := os.Getenv(key)
	if err := validateEnvVar(key, val); err != nil {
		return "", err
	}
	return val, nil
}
