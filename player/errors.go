package player

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDisconnected is returned by every operation once the session has left
	// the open state, and to every caller still waiting when the connection drops.
	ErrDisconnected = errors.New("player disconnected")

	// ErrTimeout is returned when a reply does not arrive within the command timeout.
	// The connection itself stays open.
	ErrTimeout = errors.New("player command timed out")

	// ErrInvalidCommand is returned when a command fails validation before encoding.
	ErrInvalidCommand = errors.New("invalid player command")

	// ErrKindMismatch is returned when a property is observed with a value kind
	// different from the one it was first registered with.
	ErrKindMismatch = errors.New("property already observed with a different kind")
)

// SpawnError reports that the player binary could not be located or launched.
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Binary, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ConnectError reports that the IPC endpoint never became connectable.
type ConnectError struct {
	Endpoint string
	Timeout  time.Duration
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s (timeout %s): %v", e.Endpoint, e.Timeout, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ProtocolError reports an inbound line that is neither a response nor an event.
type ProtocolError struct {
	Line   string
	Reason string
}

func (e *ProtocolError) Error() string {
	line := e.Line
	if len(line) > 120 {
		line = line[:120] + "..."
	}
	return fmt.Sprintf("protocol error: %s: %q", e.Reason, line)
}

// IpcError reports that the player rejected a command.
type IpcError struct {
	Command string
	Status  string
}

func (e *IpcError) Error() string {
	return fmt.Sprintf("player rejected %s: %s", e.Command, e.Status)
}

// disconnected wraps the cause of a disconnect so callers can match on ErrDisconnected.
func disconnected(cause error) error {
	if cause == nil || errors.Is(cause, ErrDisconnected) {
		return ErrDisconnected
	}
	return fmt.Errorf("%w: %v", ErrDisconnected, cause)
}
