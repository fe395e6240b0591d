// ABOUTME: Error taxonomy shared by the control client layers
// ABOUTME: Sentinels for local failures, typed errors for async conditions
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned synchronously for bad constructor or
	// subscription input. It is never delivered through an error callback.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when Open or Close is issued while another
	// lifecycle operation is still in flight.
	ErrInvalidState = errors.New("invalid connection state")

	// ErrConnectionClosed marks a socket the remote end closed while open.
	ErrConnectionClosed = errors.New("connection closed by remote")
)

// TransportError wraps a socket-level failure with the operation that hit it.
type TransportError struct {
	Op   string // dial, read, close
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// MalformedFrameError reports a chunk that could not be decoded as JSON.
// The connection stays open after one of these.
type MalformedFrameError struct {
	Frame []byte
	Err   error
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed frame (%d bytes): %v", len(e.Frame), e.Err)
}

func (e *MalformedFrameError) Unwrap() error { return e.Err }

// IsMalformedFrame reports whether err is or wraps a *MalformedFrameError.
func IsMalformedFrame(err error) bool {
	var me *MalformedFrameError
	return errors.As(err, &me)
}

// IsInvalidArgument reports whether err wraps ErrInvalidArgument.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// InvalidArgument builds an error wrapping ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
