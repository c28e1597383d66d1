package realtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxkit/voxkit/pkg/core"
)

const defaultConnectTimeout = 15 * time.Second

// Conn is the duplex message channel the engines run against: an ordered,
// reliable, message-framed transport. The production implementation wraps a
// websocket; tests substitute a scripted fake.
type Conn interface {
	// ReadMessage blocks for the next complete message. It returns
	// core.ErrSessionClosed after a clean close and a receive error on
	// anything else.
	ReadMessage() ([]byte, error)
	// WriteMessage sends one complete message.
	WriteMessage(data []byte) error
	// Close performs a graceful websocket close handshake. Subsequent
	// writes fail.
	Close(code int, reason string) error
}

type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	// localClose is set before the close handshake starts. A blocked read
	// races the peer's close echo against the socket teardown; the flag
	// resolves either outcome as a clean shutdown.
	localClose atomic.Bool
}

// Dial opens a websocket connection to the realtime endpoint. A default
// connect timeout applies when ctx carries no deadline.
func Dial(ctx context.Context, endpoint string, header http.Header) (Conn, error) {
	dialer := websocket.DefaultDialer
	if dialer == nil {
		dialer = &websocket.Dialer{}
	}

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		dialCtx, cancel = context.WithTimeout(ctx, defaultConnectTimeout)
		defer cancel()
	}

	conn, resp, err := dialer.DialContext(dialCtx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, core.NewConnectionError(fmt.Sprintf("websocket dial failed (status %d)", resp.StatusCode), err)
		}
		return nil, core.NewConnectionError("websocket dial failed", err)
	}
	return &wsConn{conn: conn}, nil
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.localClose.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, core.ErrSessionClosed
			}
			return nil, core.NewReceiveError("read message", err)
		}
		if messageType != websocket.TextMessage {
			// The protocol is JSON-over-text frames only.
			continue
		}
		return data, nil
	}
}

func (c *wsConn) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return core.NewSendError("write message", err)
	}
	return nil
}

func (c *wsConn) Close(code int, reason string) error {
	c.localClose.Store(true)
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(2*time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}
