package core

import (
	"errors"
	"fmt"
)

// ErrSessionClosed reports a graceful session shutdown: a clean websocket
// close initiated by either peer. It is the non-error terminal state of the
// engine loops.
var ErrSessionClosed = errors.New("session closed")

// Error represents a session error.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error wrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes errors.
type ErrorType string

const (
	// ErrConnection means the websocket channel could not be established.
	ErrConnection ErrorType = "connection_error"
	// ErrSend means a transport write failed mid-session.
	ErrSend ErrorType = "send_error"
	// ErrReceive means a transport read failed mid-session.
	ErrReceive ErrorType = "receive_error"
	// ErrProtocol means the remote agent emitted an error event.
	ErrProtocol ErrorType = "protocol_error"
	// ErrEncoding means a single fragment payload was malformed.
	ErrEncoding ErrorType = "encoding_error"
)

// IsFatal reports whether the error terminates the session. Encoding errors
// are isolated to the offending fragment; everything else ends both engines.
func (e *Error) IsFatal() bool {
	return e.Type != ErrEncoding
}

// NewConnectionError creates a connection establishment error.
func NewConnectionError(message string, cause error) *Error {
	return &Error{Type: ErrConnection, Message: message, Cause: cause}
}

// NewSendError creates a transport write error.
func NewSendError(message string, cause error) *Error {
	return &Error{Type: ErrSend, Message: message, Cause: cause}
}

// NewReceiveError creates a transport read error.
func NewReceiveError(message string, cause error) *Error {
	return &Error{Type: ErrReceive, Message: message, Cause: cause}
}

// NewProtocolError creates an error for a server-emitted error event.
func NewProtocolError(message, code string) *Error {
	return &Error{Type: ErrProtocol, Message: message, Code: code}
}

// NewEncodingError creates an error for a malformed fragment payload.
func NewEncodingError(message string, cause error) *Error {
	return &Error{Type: ErrEncoding, Message: message, Cause: cause}
}
