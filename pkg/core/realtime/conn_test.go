package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/voxkit/voxkit/pkg/core"
)

// fakeConn scripts server messages and records client writes.
type fakeConn struct {
	mu     sync.Mutex
	writes [][]byte

	inbox     chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbox:  make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

// serve queues one server message for ReadMessage.
func (c *fakeConn) serve(msg string) {
	c.inbox <- []byte(msg)
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	// Served messages are delivered before the close signal is honored, so
	// a test may close right after serving without losing events.
	select {
	case data := <-c.inbox:
		return data, nil
	default:
	}
	select {
	case data := <-c.inbox:
		return data, nil
	case <-c.closed:
		return nil, core.ErrSessionClosed
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	select {
	case <-c.closed:
		return core.NewSendError("write on closed connection", nil)
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	c.writes = append(c.writes, buf)
	return nil
}

func (c *fakeConn) Close(code int, reason string) error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

// sentTypes returns the "type" tag of every recorded client request.
func (c *fakeConn) sentTypes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	types := make([]string, 0, len(c.writes))
	for _, data := range c.writes {
		var envelope struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			types = append(types, "invalid")
			continue
		}
		types = append(types, envelope.Type)
	}
	return types
}

// sentAt unmarshals the i-th recorded request into out.
func (c *fakeConn) sentAt(t *testing.T, i int, out any) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if i >= len(c.writes) {
		t.Fatalf("requested write %d but only %d recorded", i, len(c.writes))
	}
	if err := json.Unmarshal(c.writes[i], out); err != nil {
		t.Fatalf("unmarshal write %d: %v", i, err)
	}
}

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
