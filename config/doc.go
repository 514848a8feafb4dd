// Package config loads the configuration of envelope codecs from JSON or YAML
// files and environment variables.
//
// # Basic Usage
//
//	cfg, err := config.Load("envelope.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	opts, err := cfg.CodecOptions()
//	if err != nil {
//		log.Fatal(err)
//	}
//	c, err := codec.NewBuilder(opts...).Build()
//
// # File Format
//
// The format is chosen by extension: .json is decoded with encoding/json,
// .yaml and .yml with gopkg.in/yaml.v3. Both use the same field names:
//
//	max_message_bytes: 1048576
//	max_depth: 32
//	field_policies:
//	  - type: status
//	    field: status
//	    case: upper
//	logging:
//	  level: debug
//	  format: text
//
// # Layers and Overrides
//
// Loader applies files in order on top of Default; a later layer overrides the
// fields it sets. Environment variables are applied last:
//
//	ENVELOPE_MAX_MESSAGE_BYTES
//	ENVELOPE_MAX_DEPTH
//	ENVELOPE_LOG_LEVEL
//	ENVELOPE_LOG_FORMAT
//
// # Security
//
// Config files are read through the same checks everywhere: relative paths
// cannot leave the working directory, files over 1MB are rejected, only
// regular files are read, and JSON nesting is limited before decoding.
package config
