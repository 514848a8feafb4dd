package codec_test

import (
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/c360/envelope/codec"
	"github.com/c360/envelope/errors"
	"github.com/c360/envelope/message"
)

func ExampleCodec_Encode() {
	c := codec.NewBuilder().MustBuild()

	subject := uuid.MustParse("c35a67c9-b797-469f-a893-cf81b4104898")
	out, err := c.Encode(
		message.NewStatus(subject, message.StatusOnline),
		message.NewHeartbeat("still here"),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(out))
	// Output:
	// [{"type":"status","subject_id":"c35a67c9-b797-469f-a893-cf81b4104898","status":"online"},{"type":"heartbeat","payload":"still here"}]
}

func ExampleCodec_Decode() {
	c := codec.NewBuilder().MustBuild()

	msgs, err := c.Decode([]byte(`[
		{"type":"STATUS","subject_id":"c35a67c9-b797-469f-a893-cf81b4104898","status":"OFFLINE"},
		{"type":"heartbeat","payload":"tick"}
	]`))
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, m := range msgs {
		switch m := m.(type) {
		case *message.StatusMessage:
			fmt.Println("status", m.SubjectID, m.Status)
		case *message.HeartbeatMessage:
			fmt.Println("heartbeat", m.Text())
		}
	}
	// Output:
	// status c35a67c9-b797-469f-a893-cf81b4104898 OFFLINE
	// heartbeat tick
}

func ExampleBuilder_Register() {
	b := codec.NewBuilder()
	if err := b.Register(func() message.Message { return &message.CommandMessage{} }); err != nil {
		fmt.Println(err)
		return
	}
	c := b.MustBuild()

	msgs, err := c.Decode([]byte(`{"type":"command","subject_id":"c35a67c9-b797-469f-a893-cf81b4104898","command":"add"}`))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(msgs[0].(*message.CommandMessage).Command)
	// Output:
	// ADD
}

func ExampleCodec_Decode_errors() {
	c := codec.NewBuilder().MustBuild()

	_, err := c.Decode([]byte(`[]`))
	fmt.Println(errors.IsParse(err), stderrors.Is(err, errors.ErrEmptyBatch))

	_, err = c.Encode(message.NewStatus(uuid.Nil, message.StatusOnline))
	fmt.Println(errors.IsValidation(err))
	// Output:
	// true true
	// true
}
