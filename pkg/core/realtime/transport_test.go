package realtime

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxkit/voxkit/pkg/core"
)

// newWSTestServer upgrades each request and hands the server-side conn to
// handler on its own goroutine.
func newWSTestServer(t *testing.T, handler func(*websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialRoundTripSkipsBinaryFrames(t *testing.T) {
	endpoint := newWSTestServer(t, func(conn *websocket.Conn) {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0x01})
		_ = conn.WriteMessage(websocket.TextMessage, data)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	conn, err := Dial(context.Background(), endpoint, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close(closeNormalCode, "done")

	payload := []byte(`{"type":"session.update"}`)
	if err := conn.WriteMessage(payload); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("echoed %q, want %q", data, payload)
	}
}

func TestCloseResolvesBlockedReadAsSessionClosed(t *testing.T) {
	endpoint := newWSTestServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	conn, err := Dial(context.Background(), endpoint, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	errs := make(chan error, 1)
	go func() {
		_, err := conn.ReadMessage()
		errs <- err
	}()

	if err := conn.Close(closeNormalCode, "client requested close"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := <-errs; !errors.Is(err, core.ErrSessionClosed) {
		t.Fatalf("read after local close = %v, want core.ErrSessionClosed", err)
	}
}

func TestReadMapsRemoteCleanClose(t *testing.T) {
	endpoint := newWSTestServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	conn, err := Dial(context.Background(), endpoint, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close(closeNormalCode, "done")

	if _, err := conn.ReadMessage(); !errors.Is(err, core.ErrSessionClosed) {
		t.Fatalf("read after remote close = %v, want core.ErrSessionClosed", err)
	}
}
