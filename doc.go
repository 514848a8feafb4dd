// Package envelope is a polymorphic message envelope codec: it serializes
// heterogeneous, strongly typed messages to JSON and reconstructs the concrete
// Go type of each message from an embedded "type" discriminator.
//
// # Wire Format
//
// A single message is a JSON object whose "type" property names its variant,
// followed by the variant's own fields:
//
//	{"type":"status","subject_id":"c35a67c9-b797-469f-a893-cf81b4104898","status":"online"}
//
// A batch is a JSON array of such objects. Encoding always produces an array;
// decoding accepts either form. An empty array is rejected.
//
// # Packages
//
//   - codec: Builder, Codec, field policies and decode limits
//   - registry: discriminator to Go type descriptors, with zero-value factories
//   - message: the Message contract and the Status, Heartbeat and Command variants
//   - enum: case-insensitive string enumerations with a per-type write case
//   - identifier: the 3-50 character [A-Za-z0-9_-] identifier syntax
//   - errors: registration, parse and validation error classes
//   - subject: parsing of subject identifiers in canonical, compact and base64 forms
//   - metric: Prometheus instrumentation of a codec
//   - config: JSON and YAML configuration of a codec
//   - cmd/envelope: command line tool to decode, validate, normalize and emit envelopes
//
// # Basic Usage
//
//	b := codec.NewBuilder() // Status and Heartbeat are registered
//	if err := b.Register(func() message.Message { return &message.CommandMessage{} }); err != nil {
//	    log.Fatal(err)
//	}
//	c := b.MustBuild()
//
//	data, err := c.Encode(message.NewHeartbeat("tick"))
//	msgs, err := c.Decode(data)
//
// # Extending
//
// Any type implementing message.Message can be registered at runtime. The
// codec does not need to know about it in advance:
//
//	type Ping struct {
//	    Nonce string `json:"nonce"`
//	}
//
//	func (*Ping) MessageType() string { return "ping" }
//	func (p *Ping) Validate() error { ... }
//
//	b.Register(func() message.Message { return &Ping{} })
//
// Registration errors are programmer errors and surface when the codec is
// built. Parse errors describe bad input and are recoverable per call.
// Validation errors describe messages missing required fields; Encode refuses
// to emit a batch containing any of them.
package envelope
