package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/voxkit/voxkit/pkg/core"
)

// DefaultHandshakeTimeout bounds the wait for the remote agent to
// acknowledge the session configuration.
const DefaultHandshakeTimeout = 10 * time.Second

// Options configures a session before the engines start.
type Options struct {
	// Mode selects text-only or voice operation. Fixed for the session
	// lifetime.
	Mode Mode

	// Instructions is the system prompt sent with session.update.
	Instructions string

	// Voice selects the agent voice (audio mode).
	Voice string

	// FrameSize is the playback frame size in bytes. Zero means
	// DefaultFrameSize.
	FrameSize int

	// TerminateWord ends the session when read from the capture source
	// (case-insensitive). Zero means DefaultTerminateWord.
	TerminateWord string

	// TranscriptionModel transcribes user audio (audio mode). Zero means
	// "whisper-1".
	TranscriptionModel string

	// TurnDetection overrides the server VAD configuration (audio mode).
	// Nil means DefaultTurnDetection.
	TurnDetection *TurnDetection

	// HandshakeTimeout bounds the wait for the session acknowledgement in
	// Connect. Zero means DefaultHandshakeTimeout.
	HandshakeTimeout time.Duration

	// Logger receives engine diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.FrameSize <= 0 {
		o.FrameSize = DefaultFrameSize
	}
	if o.TerminateWord == "" {
		o.TerminateWord = DefaultTerminateWord
	}
	if o.TranscriptionModel == "" {
		o.TranscriptionModel = "whisper-1"
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// sessionConfig builds the session.update payload for these options.
func (o Options) sessionConfig() SessionConfig {
	cfg := SessionConfig{
		Modalities:   o.Mode.Modalities(),
		Instructions: o.Instructions,
	}
	if o.Mode == ModeAudio {
		cfg.Voice = o.Voice
		cfg.InputAudioFormat = "pcm16"
		cfg.OutputAudioFormat = "pcm16"
		cfg.InputAudioTranscription = &TranscriptionModel{Model: o.TranscriptionModel}
		cfg.TurnDetection = o.TurnDetection
		if cfg.TurnDetection == nil {
			cfg.TurnDetection = DefaultTurnDetection()
		}
	}
	return cfg
}

// Session is one duplex conversation over a connection. Both engines run
// from Connect until a terminate sentinel, a clean remote close, or a fatal
// error.
type Session struct {
	state *State
	conn  Conn
	done  chan struct{}

	closeOnce sync.Once

	errMu sync.Mutex
	err   error
}

// Connect configures the session on conn, starts the send and receive
// engines, and blocks until the remote agent acknowledges the configuration
// or the handshake timeout elapses.
func Connect(conn Conn, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	update := clientSessionUpdate{Type: "session.update", Session: opts.sessionConfig()}
	data, err := json.Marshal(update)
	if err != nil {
		return nil, core.NewSendError("marshal session.update", err)
	}
	if err := conn.WriteMessage(data); err != nil {
		return nil, err
	}

	s := &Session{
		state: NewState(opts.Mode),
		conn:  conn,
		done:  make(chan struct{}),
	}

	recv := &receiveEngine{
		conn:      conn,
		state:     s.state,
		frameSize: opts.FrameSize,
		logger:    opts.Logger,
	}
	send := &sendEngine{
		conn:      conn,
		state:     s.state,
		terminate: opts.TerminateWord,
		logger:    opts.Logger,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.finish(recv.run())
	}()
	go func() {
		defer wg.Done()
		s.finish(send.run())
	}()
	go func() {
		wg.Wait()
		s.state.Outbound.Close()
		close(s.done)
	}()

	timer := time.NewTimer(opts.HandshakeTimeout)
	defer timer.Stop()
	select {
	case <-s.state.ready:
		return s, nil
	case <-s.done:
		// The acknowledgement may have landed in the same batch that
		// ended the session; the session is still usable then.
		select {
		case <-s.state.ready:
			return s, nil
		default:
		}
		if err := s.Err(); err != nil {
			return nil, err
		}
		return nil, core.NewConnectionError("session closed before acknowledgement", nil)
	case <-timer.C:
		select {
		case <-s.state.ready:
			return s, nil
		default:
		}
		s.finish(core.NewConnectionError("timed out waiting for session acknowledgement", nil))
		<-s.done
		return nil, s.Err()
	}
}

// finish records the first terminal error and tears the session down so the
// peer engine unblocks: closing the transport ends a pending read, closing
// the inbound queue ends a pending pop.
func (s *Session) finish(err error) {
	s.setErr(err)
	s.closeOnce.Do(func() {
		_ = s.conn.Close(closeNormalCode, "session finished")
	})
	s.state.Inbound.Close()
}

func (s *Session) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// Push enqueues one capture-source unit for the send engine.
func (s *Session) Push(unit InputUnit) {
	s.state.Inbound.Push(unit)
}

// Output returns the outbound queue the render sink drains. The queue is
// closed once both engines have stopped; a Pop returning false is the
// end-of-session signal.
func (s *Session) Output() *Queue[Fragment] {
	return s.state.Outbound
}

// State exposes the shared session state.
func (s *Session) State() *State {
	return s.state
}

// ID returns the session identifier assigned by the remote agent, or "" if
// not yet acknowledged.
func (s *Session) ID() string {
	return s.state.SessionID()
}

// Done is closed once both engines have stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close tears the session down and waits for both engines to stop.
func (s *Session) Close() error {
	s.finish(nil)
	<-s.done
	return nil
}

// Err returns the terminal session error after Done, or nil for a graceful
// shutdown.
func (s *Session) Err() error {
	<-s.done
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}
