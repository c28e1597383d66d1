package realtime

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Mode selects which modalities the session carries.
type Mode int

const (
	// ModeText is a text-in, text-out session.
	ModeText Mode = iota
	// ModeAudio is a voice session with text captions.
	ModeAudio
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeText:
		return "TEXT"
	case ModeAudio:
		return "AUDIO"
	default:
		return "UNKNOWN"
	}
}

// Modalities returns the protocol modalities requested for this mode.
func (m Mode) Modalities() []string {
	if m == ModeAudio {
		return []string{"text", "audio"}
	}
	return []string{"text"}
}

// TurnState tracks the lifecycle of the in-flight conversational turn.
type TurnState int32

const (
	// TurnIdle means no turn is in flight.
	TurnIdle TurnState = iota
	// TurnAwaitingItemAck means an item was submitted but not yet acknowledged.
	TurnAwaitingItemAck
	// TurnResponseInFlight means the agent is streaming a response.
	TurnResponseInFlight
	// TurnInterrupting means a barge-in cancellation cycle is running.
	TurnInterrupting
)

// String returns a human-readable turn state name.
func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "IDLE"
	case TurnAwaitingItemAck:
		return "AWAITING_ITEM_ACK"
	case TurnResponseInFlight:
		return "RESPONSE_IN_FLIGHT"
	case TurnInterrupting:
		return "INTERRUPTING"
	default:
		return "UNKNOWN"
	}
}

// InputKind tags an input unit.
type InputKind int

const (
	// InputText is one line of user text.
	InputText InputKind = iota
	// InputAudio is one raw PCM frame of captured audio.
	InputAudio
)

// InputUnit is a single user-origin unit produced by a capture source.
type InputUnit struct {
	Kind  InputKind
	Text  string
	Audio []byte
}

// TextUnit wraps a user text line as an input unit.
func TextUnit(text string) InputUnit {
	return InputUnit{Kind: InputText, Text: text}
}

// AudioUnit wraps a raw PCM frame as an input unit.
func AudioUnit(pcm []byte) InputUnit {
	return InputUnit{Kind: InputAudio, Audio: pcm}
}

// FragmentKind tags a renderable fragment.
type FragmentKind int

const (
	// FragmentText is an incremental piece of response text.
	FragmentText FragmentKind = iota
	// FragmentAudio is one fixed-size PCM frame of response audio.
	FragmentAudio
)

// Fragment is a renderable unit delivered to the render sink in generation
// order.
type Fragment struct {
	Kind  FragmentKind
	Text  string
	Audio []byte
}

// State is the session state shared by the two engines. Each field has a
// single writer: the receive engine owns the speaking flags, session id and
// last item id; the send engine owns the turn transitions it initiates. The
// speaking flags are a best-effort interruption hint, exposed as atomics so
// the send engine's hot path never takes a lock.
type State struct {
	mode Mode

	mu         sync.Mutex
	sessionID  string
	lastItemID string

	// ready is closed when the remote agent first acknowledges the
	// session configuration.
	ready     chan struct{}
	readyOnce sync.Once

	agentSpeaking atomic.Bool
	userSpeaking  atomic.Bool
	turn          atomic.Int32

	// interrupted latches the barge-in cycle: the send engine sets it
	// when a cancellation fires, the receive engine clears it when the
	// user stops speaking. The latch lives here so an overlap that ends
	// between input units still re-arms.
	interrupted atomic.Bool

	// Inbound carries capture-source units to the send engine.
	Inbound *Queue[InputUnit]
	// Outbound carries renderable fragments to the render sink.
	Outbound *Queue[Fragment]
}

// NewState creates session state for the given mode.
func NewState(mode Mode) *State {
	return &State{
		mode:     mode,
		ready:    make(chan struct{}),
		Inbound:  NewQueue[InputUnit](),
		Outbound: NewQueue[Fragment](),
	}
}

// Mode returns the session mode.
func (s *State) Mode() Mode { return s.mode }

// SessionID returns the identifier assigned by the remote agent, or "" if
// the session has not been acknowledged yet.
func (s *State) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *State) setSessionID(id string) {
	s.mu.Lock()
	if s.sessionID == "" {
		s.sessionID = id
	}
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}

// LastItemID returns the most recently acknowledged conversation item id,
// or "" before the first acknowledgement.
func (s *State) LastItemID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastItemID
}

func (s *State) setLastItemID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastItemID = id
}

// AgentSpeaking reports whether agent audio is currently streaming.
func (s *State) AgentSpeaking() bool { return s.agentSpeaking.Load() }

// UserSpeaking reports whether the remote turn-detector currently hears the
// user.
func (s *State) UserSpeaking() bool { return s.userSpeaking.Load() }

// Turn returns the current turn state.
func (s *State) Turn() TurnState { return TurnState(s.turn.Load()) }

func (s *State) setTurn(t TurnState) { s.turn.Store(int32(t)) }

// newItemID generates a client-side conversation item identifier: a fixed
// 32-character collision-resistant token.
func newItemID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
