package realtime

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/voxkit/voxkit/pkg/core"
)

// closeNormalCode is the websocket normal-closure status.
const closeNormalCode = 1000

// DefaultTerminateWord ends the session when read from the capture source.
const DefaultTerminateWord = "exit"

// sendEngine drains the inbound queue, frames each unit into protocol
// requests, and runs the barge-in interruption protocol in audio mode.
type sendEngine struct {
	conn      Conn
	state     *State
	terminate string
	logger    *slog.Logger
}

// run consumes input units until the terminate sentinel, queue close, or a
// send failure. The sentinel path closes the transport gracefully and sends
// nothing afterward.
func (e *sendEngine) run() error {
	for {
		unit, ok := e.state.Inbound.Pop()
		if !ok {
			return nil
		}

		if unit.Kind == InputText && strings.EqualFold(strings.TrimSpace(unit.Text), e.terminate) {
			e.logger.Info("terminate requested, closing session")
			_ = e.conn.Close(closeNormalCode, "client requested close")
			return nil
		}

		if e.state.Mode() == ModeAudio {
			if err := e.maybeInterrupt(); err != nil {
				return err
			}
		}

		switch unit.Kind {
		case InputText:
			if err := e.sendText(unit.Text); err != nil {
				return err
			}
		case InputAudio:
			if err := e.sendAudio(unit.Audio); err != nil {
				return err
			}
		}
	}
}

// maybeInterrupt runs the interruption protocol when agent audio is still
// streaming and the user has started speaking. The cycle fires once per
// overlap: clear the not-yet-rendered output, cancel the response, truncate
// the interrupted item, then let the pending send proceed. The receive
// engine re-arms the latch when the user stops speaking.
func (e *sendEngine) maybeInterrupt() error {
	if !(e.state.AgentSpeaking() && e.state.UserSpeaking()) {
		return nil
	}
	if !e.state.interrupted.CompareAndSwap(false, true) {
		return nil
	}

	prev := e.state.Turn()
	e.state.setTurn(TurnInterrupting)
	e.logger.Info("barge-in detected, cancelling response")

	e.state.Outbound.Clear()

	if err := e.sendJSON(clientResponseCancel{Type: "response.cancel"}); err != nil {
		return err
	}
	// Rendered-audio duration is not tracked, so truncation is approximated
	// at the start of the item (offset zero).
	err := e.sendJSON(clientItemTruncate{
		Type:         "conversation.item.truncate",
		ItemID:       e.state.LastItemID(),
		ContentIndex: 0,
		AudioEndMS:   0,
	})
	if err != nil {
		return err
	}

	e.state.setTurn(prev)
	return nil
}

// sendText submits one user message and requests exactly one response turn.
func (e *sendEngine) sendText(text string) error {
	item := clientItemCreate{
		Type:           "conversation.item.create",
		PreviousItemID: e.state.LastItemID(),
		Item: conversationItem{
			ID:   newItemID(),
			Type: "message",
			Role: "user",
			Content: []itemContent{
				{Type: "input_text", Text: text},
			},
		},
	}
	e.state.setTurn(TurnAwaitingItemAck)
	if err := e.sendJSON(item); err != nil {
		return err
	}
	return e.sendJSON(clientResponseCreate{
		Type:     "response.create",
		Response: responseOptions{Modalities: e.state.Mode().Modalities()},
	})
}

// sendAudio appends one captured PCM frame to the remote input buffer.
// Response turns are started by the server's voice-activity detector, not
// by the client.
func (e *sendEngine) sendAudio(pcm []byte) error {
	return e.sendJSON(clientAudioAppend{
		Type:  "input_audio_buffer.append",
		Audio: base64.StdEncoding.EncodeToString(pcm),
	})
}

func (e *sendEngine) sendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return core.NewSendError("marshal request", err)
	}
	return e.conn.WriteMessage(data)
}
