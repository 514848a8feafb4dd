package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Modes of operation.
const (
	modeDecode    = "decode"
	modeValidate  = "validate"
	modeNormalize = "normalize"
	modeEmit      = "emit"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	Debug       bool
	Mode        string
	Input       string
	Metrics     bool
	ShowVersion bool

	// Emit mode
	Type    string
	Subject string
	Value   string
	// ValueSet distinguishes -value "" from an omitted -value
	ValueSet bool
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Define flags with environment variable fallback
	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("ENVELOPE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: ENVELOPE_CONFIG)")

	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv("ENVELOPE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: ENVELOPE_CONFIG)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("ENVELOPE_LOG_LEVEL", ""),
		"Log level: debug, info, warn, error (env: ENVELOPE_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("ENVELOPE_LOG_FORMAT", ""),
		"Log format: json, text (env: ENVELOPE_LOG_FORMAT)")

	fs.BoolVar(&cfg.Debug, "debug",
		getEnvBool("ENVELOPE_DEBUG", false),
		"Enable debug logging (env: ENVELOPE_DEBUG)")

	fs.StringVar(&cfg.Mode, "mode",
		getEnv("ENVELOPE_MODE", modeDecode),
		"Mode: decode, validate, normalize, emit (env: ENVELOPE_MODE)")

	fs.StringVar(&cfg.Input, "input", "-", "Envelope file to read, - for stdin")
	fs.BoolVar(&cfg.Metrics, "metrics", false, "Print codec metrics to stderr on exit")

	fs.StringVar(&cfg.Type, "type", "", "emit: message type (status, heartbeat, command)")
	fs.StringVar(&cfg.Subject, "subject", "", "emit: subject identifier (canonical, compact or base64 UUID)")
	fs.StringVar(&cfg.Value, "value", "", "emit: status, payload or command value")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")

	fs.Usage = func() {
		printDetailedHelp(fs, stderr)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "value" {
			cfg.ValueSet = true
		}
	})

	// Override log level if debug is set
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion {
		return nil
	}

	validModes := []string{modeDecode, modeValidate, modeNormalize, modeEmit}
	if !contains(validModes, cfg.Mode) {
		return fmt.Errorf("invalid mode: %s", cfg.Mode)
	}

	if cfg.LogLevel != "" {
		validLevels := []string{"debug", "info", "warn", "error"}
		if !contains(validLevels, cfg.LogLevel) {
			return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
		}
	}

	if cfg.LogFormat != "" {
		validFormats := []string{"json", "text"}
		if !contains(validFormats, cfg.LogFormat) {
			return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
		}
	}

	if cfg.Mode == modeEmit && cfg.Type == "" {
		return fmt.Errorf("emit mode requires -type")
	}

	return nil
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - inspect and produce message envelopes

Usage: %s [options] < envelope.json

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # List the messages of an envelope
  %s < batch.json

  # Fail unless every message is valid
  %s --mode=validate --input=batch.json

  # Rewrite an envelope in canonical form using a config file
  %s --mode=normalize --config=envelope.yaml < batch.json

  # Produce a status envelope
  %s --mode=emit --type=status --subject=reBaGYgHQ8OoTqfamvttvA --value=online

Version: %s
`, appName, appName, appName, appName, Version)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
