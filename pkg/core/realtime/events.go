package realtime

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/voxkit/voxkit/pkg/core"
)

// Event is a decoded server event. The set of variants is closed; event
// types the client does not recognize decode to UnknownEvent so new server
// event types never break the receive loop.
type Event interface {
	eventType() string
}

// SessionCreatedEvent acknowledges the session and carries its identifier.
type SessionCreatedEvent struct{ SessionID string }

func (e SessionCreatedEvent) eventType() string { return "session.created" }

// SessionUpdatedEvent acknowledges a session.update request.
type SessionUpdatedEvent struct{ SessionID string }

func (e SessionUpdatedEvent) eventType() string { return "session.updated" }

// ItemCreatedEvent acknowledges a conversation item.
type ItemCreatedEvent struct {
	ItemID         string
	PreviousItemID string
}

func (e ItemCreatedEvent) eventType() string { return "conversation.item.created" }

// SpeechStartedEvent reports that the remote turn-detector hears the user.
type SpeechStartedEvent struct{ AudioStartMS int64 }

func (e SpeechStartedEvent) eventType() string { return "input_audio_buffer.speech_started" }

// SpeechStoppedEvent reports that the user stopped speaking.
type SpeechStoppedEvent struct{ AudioEndMS int64 }

func (e SpeechStoppedEvent) eventType() string { return "input_audio_buffer.speech_stopped" }

// ResponseCreatedEvent marks the start of a response turn.
type ResponseCreatedEvent struct{ ResponseID string }

func (e ResponseCreatedEvent) eventType() string { return "response.created" }

// ResponseDoneEvent marks the end of a response cycle.
type ResponseDoneEvent struct{ ResponseID string }

func (e ResponseDoneEvent) eventType() string { return "response.done" }

// TextDeltaEvent carries an incremental piece of response text.
type TextDeltaEvent struct{ Delta string }

func (e TextDeltaEvent) eventType() string { return "response.text.delta" }

// TextDoneEvent marks the end of the streamed response text.
type TextDoneEvent struct{ Text string }

func (e TextDoneEvent) eventType() string { return "response.text.done" }

// AudioDeltaEvent carries decoded response PCM.
type AudioDeltaEvent struct{ Audio []byte }

func (e AudioDeltaEvent) eventType() string { return "response.audio.delta" }

// AudioDoneEvent marks the end of the streamed response audio.
type AudioDoneEvent struct{}

func (e AudioDoneEvent) eventType() string { return "response.audio.done" }

// ErrorEvent is a server-emitted error. It is terminal for the session.
type ErrorEvent struct {
	Code    string
	Message string
}

func (e ErrorEvent) eventType() string { return "error" }

// UnknownEvent carries an event type the client does not handle.
type UnknownEvent struct {
	Type string
	Raw  json.RawMessage
}

func (e UnknownEvent) eventType() string { return e.Type }

// decodeEvent parses one websocket message into a typed event. A malformed
// envelope or event body is a receive error (protocol violation); a
// malformed base64 audio payload is an encoding error the caller may skip.
func decodeEvent(data []byte) (Event, error) {
	var envelope serverEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, core.NewReceiveError("decode event envelope", err)
	}
	if envelope.Type == "" {
		return nil, core.NewReceiveError("event missing type", nil)
	}

	switch envelope.Type {
	case "session.created":
		var body serverSession
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, decodeErr(envelope.Type, err)
		}
		return SessionCreatedEvent{SessionID: body.Session.ID}, nil
	case "session.updated":
		var body serverSession
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, decodeErr(envelope.Type, err)
		}
		return SessionUpdatedEvent{SessionID: body.Session.ID}, nil
	case "conversation.item.created":
		var body serverItem
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, decodeErr(envelope.Type, err)
		}
		return ItemCreatedEvent{ItemID: body.Item.ID, PreviousItemID: body.PreviousItemID}, nil
	case "input_audio_buffer.speech_started":
		var body serverSpeech
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, decodeErr(envelope.Type, err)
		}
		return SpeechStartedEvent{AudioStartMS: body.AudioStartMS}, nil
	case "input_audio_buffer.speech_stopped":
		var body serverSpeech
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, decodeErr(envelope.Type, err)
		}
		return SpeechStoppedEvent{AudioEndMS: body.AudioEndMS}, nil
	case "response.created":
		var body serverResponse
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, decodeErr(envelope.Type, err)
		}
		return ResponseCreatedEvent{ResponseID: body.Response.ID}, nil
	case "response.done":
		var body serverResponse
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, decodeErr(envelope.Type, err)
		}
		return ResponseDoneEvent{ResponseID: body.Response.ID}, nil
	case "response.text.delta":
		var body serverDelta
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, decodeErr(envelope.Type, err)
		}
		return TextDeltaEvent{Delta: body.Delta}, nil
	case "response.text.done":
		var body serverTextDone
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, decodeErr(envelope.Type, err)
		}
		return TextDoneEvent{Text: body.Text}, nil
	case "response.audio.delta":
		var body serverDelta
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, decodeErr(envelope.Type, err)
		}
		pcm, err := base64.StdEncoding.DecodeString(body.Delta)
		if err != nil {
			return nil, core.NewEncodingError("decode audio delta payload", err)
		}
		return AudioDeltaEvent{Audio: pcm}, nil
	case "response.audio.done":
		return AudioDoneEvent{}, nil
	case "error":
		var body serverError
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, decodeErr(envelope.Type, err)
		}
		return ErrorEvent{Code: body.Error.Code, Message: body.Error.Message}, nil
	default:
		return UnknownEvent{Type: envelope.Type, Raw: append(json.RawMessage(nil), data...)}, nil
	}
}

func decodeErr(eventType string, err error) error {
	return core.NewReceiveError(fmt.Sprintf("decode %s", eventType), err)
}
