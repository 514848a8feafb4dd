// Package main implements the envelope command, which decodes, validates,
// normalizes and produces message envelopes from the command line.
package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/prometheus/common/expfmt"

	"github.com/c360/envelope/codec"
	"github.com/c360/envelope/config"
	"github.com/c360/envelope/errors"
	"github.com/c360/envelope/message"
	"github.com/c360/envelope/metric"
	"github.com/c360/envelope/subject"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "envelope"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cliCfg, err := parseFlags(args, stderr)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := validateFlags(cliCfg); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if cliCfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return 0
	}

	cfg, err := loadConfig(cliCfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger := setupLogger(stderr,
		firstNonEmpty(cliCfg.LogLevel, cfg.Logging.Level),
		firstNonEmpty(cliCfg.LogFormat, cfg.Logging.Format))

	metrics := metric.NewMetricsRegistry()
	if cliCfg.Metrics {
		defer dumpMetrics(metrics, stderr, logger)
	}

	c, err := buildCodec(cfg, metrics, logger)
	if err != nil {
		logger.Error("Failed to build codec", "error", err)
		return 1
	}

	if err := execute(cliCfg, c, stdin, stdout, logger); err != nil {
		class := "unknown"
		if ec, ok := errors.Classify(err); ok {
			class = ec.String()
		}
		logger.Error("Command failed", "mode", cliCfg.Mode, "class", class, "error", err)
		return 1
	}
	return 0
}

func loadConfig(cliCfg *CLIConfig) (*config.Config, error) {
	if cliCfg.ConfigPath == "" {
		return config.Default(), nil
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func buildCodec(cfg *config.Config, metrics *metric.MetricsRegistry, logger *slog.Logger) (*codec.Codec, error) {
	opts, err := cfg.CodecOptions()
	if err != nil {
		return nil, err
	}

	m, err := metrics.CodecMetrics(appName)
	if err != nil {
		return nil, err
	}
	opts = append(opts, codec.WithLogger(logger), codec.WithMetrics(m))

	b := codec.NewBuilder(opts...)
	if err := b.Register(func() message.Message { return &message.CommandMessage{} }); err != nil {
		return nil, err
	}
	return b.Build()
}

func execute(cliCfg *CLIConfig, c *codec.Codec, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	if cliCfg.Mode == modeEmit {
		msg, err := buildMessage(cliCfg)
		if err != nil {
			return err
		}
		return writeEnvelope(c, stdout, msg)
	}

	data, err := readInput(cliCfg.Input, stdin)
	if err != nil {
		return err
	}

	switch cliCfg.Mode {
	case modeValidate:
		msgs, err := c.DecodeValid(data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "ok: %d valid message(s)\n", len(msgs))
		return err

	case modeNormalize:
		msgs, err := c.DecodeValid(data)
		if err != nil {
			return err
		}
		return writeEnvelope(c, stdout, msgs...)

	default:
		msgs, err := c.Decode(data)
		if err != nil {
			return err
		}
		for i, m := range msgs {
			if err := describe(c, stdout, i, m); err != nil {
				return err
			}
		}
		logger.Debug("Decoded envelope", "messages", len(msgs), "bytes", len(data))
		return nil
	}
}

// describe writes one tab-separated line per message: index, type, subject
// and validation result.
func describe(c *codec.Codec, w io.Writer, index int, m message.Message) error {
	discriminator, err := c.Discriminator(m)
	if err != nil {
		return err
	}

	subjectID := "-"
	if id, ok := m.(message.Identifiable); ok {
		subjectID = id.Subject().String()
	}

	state := "valid"
	if err := m.Validate(); err != nil {
		state = "invalid: " + err.Error()
	}

	_, err = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", index, discriminator, subjectID, state)
	return err
}

func buildMessage(cliCfg *CLIConfig) (message.Message, error) {
	switch strings.ToLower(cliCfg.Type) {
	case message.HeartbeatType:
		if !cliCfg.ValueSet {
			return &message.HeartbeatMessage{}, nil
		}
		return message.NewHeartbeat(cliCfg.Value), nil

	case message.StatusType:
		id, err := subject.ParseID(cliCfg.Subject)
		if err != nil {
			return nil, err
		}
		status, err := message.Statuses.Parse(cliCfg.Value)
		if err != nil {
			return nil, err
		}
		return message.NewStatus(id, status), nil

	case message.CommandType:
		id, err := subject.ParseID(cliCfg.Subject)
		if err != nil {
			return nil, err
		}
		command, err := message.Commands.Parse(cliCfg.Value)
		if err != nil {
			return nil, err
		}
		return message.NewCommand(id, command), nil

	default:
		return nil, fmt.Errorf("cannot emit message type %q", cliCfg.Type)
	}
}

func writeEnvelope(c *codec.Codec, w io.Writer, msgs ...message.Message) error {
	out, err := c.Encode(msgs...)
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// dumpMetrics writes the codec metric families in the Prometheus text format.
func dumpMetrics(metrics *metric.MetricsRegistry, w io.Writer, logger *slog.Logger) {
	families, err := metrics.PrometheusRegistry().Gather()
	if err != nil {
		logger.Warn("Failed to gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "envelope_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			logger.Warn("Failed to write metrics", "error", err)
			return
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
