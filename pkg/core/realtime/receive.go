package realtime

import (
	"errors"
	"log/slog"

	"github.com/voxkit/voxkit/pkg/core"
)

// receiveEngine consumes transport messages, updates session state, and
// enqueues renderable fragments. It is the sole writer of the session id,
// last item id, speaking flags, and the outbound queue.
type receiveEngine struct {
	conn      Conn
	state     *State
	frameSize int
	logger    *slog.Logger
}

// run processes events strictly in transport arrival order until the
// connection closes or a fatal error occurs. A clean close returns nil.
func (e *receiveEngine) run() error {
	for {
		data, err := e.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, core.ErrSessionClosed) {
				return nil
			}
			return err
		}

		event, err := decodeEvent(data)
		if err != nil {
			var sessErr *core.Error
			if errors.As(err, &sessErr) && !sessErr.IsFatal() {
				e.logger.Warn("skipping malformed fragment", "error", err)
				continue
			}
			return err
		}

		e.logger.Debug("receive", "event", event.eventType())
		if err := e.handle(event); err != nil {
			return err
		}
	}
}

func (e *receiveEngine) handle(event Event) error {
	switch ev := event.(type) {
	case SessionCreatedEvent:
		e.state.setSessionID(ev.SessionID)
	case SessionUpdatedEvent:
		e.state.setSessionID(ev.SessionID)
	case ItemCreatedEvent:
		e.state.setLastItemID(ev.ItemID)
	case SpeechStartedEvent:
		e.state.userSpeaking.Store(true)
	case SpeechStoppedEvent:
		e.state.userSpeaking.Store(false)
		e.state.interrupted.Store(false)
	case ResponseCreatedEvent:
		e.state.setTurn(TurnResponseInFlight)
	case ResponseDoneEvent:
		e.state.setTurn(TurnIdle)
	case TextDeltaEvent:
		e.state.Outbound.Push(Fragment{Kind: FragmentText, Text: ev.Delta})
	case TextDoneEvent:
		// Turn terminator so the sink can end the rendered line.
		e.state.Outbound.Push(Fragment{Kind: FragmentText, Text: "\n"})
	case AudioDeltaEvent:
		e.state.agentSpeaking.Store(true)
		for _, frame := range SplitFrames(ev.Audio, e.frameSize) {
			e.state.Outbound.Push(Fragment{Kind: FragmentAudio, Audio: frame})
		}
	case AudioDoneEvent:
		e.state.agentSpeaking.Store(false)
	case ErrorEvent:
		e.logger.Error("server error event", "code", ev.Code, "message", ev.Message)
		return core.NewProtocolError(ev.Message, ev.Code)
	case UnknownEvent:
		// Forward compatibility: unrecognized event types are ignored.
		e.logger.Debug("ignoring event", "type", ev.Type)
	}
	return nil
}
