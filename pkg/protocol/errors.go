package protocol

import (
	"errors"
	"fmt"
	"net"
)

// FatalError indicates that the connection is no longer usable.
type FatalError struct {
	Err error
}

// Timeout implements net.Error.Timeout().
func (e *FatalError) Timeout() bool { return false }

// Temporary implements net.Error.Temporary().
func (e *FatalError) Temporary() bool { return false }

// Unwrap implements Go1.13 error unwrapper.
func (e *FatalError) Unwrap() error { return e.Err }

func (e *FatalError) Error() string { return fmt.Sprintf("seal fatal: %v", e.Err) }

// InternalError indicates an error caused by the implementation, after which
// the connection is no longer usable.
type InternalError struct {
	Err error
}

// Timeout implements net.Error.Timeout().
func (e *InternalError) Timeout() bool { return false }

// Temporary implements net.Error.Temporary().
func (e *InternalError) Temporary() bool { return false }

// Unwrap implements Go1.13 error unwrapper.
func (e *InternalError) Unwrap() error { return e.Err }

func (e *InternalError) Error() string { return fmt.Sprintf("seal internal: %v", e.Err) }

// TemporaryError indicates that the connection is still usable, but the
// requested operation failed for now.
type TemporaryError struct {
	Err error
}

// Timeout implements net.Error.Timeout().
func (e *TemporaryError) Timeout() bool { return false }

// Temporary implements net.Error.Temporary().
func (e *TemporaryError) Temporary() bool { return true }

// Unwrap implements Go1.13 error unwrapper.
func (e *TemporaryError) Unwrap() error { return e.Err }

func (e *TemporaryError) Error() string { return fmt.Sprintf("seal temporary: %v", e.Err) }

// TimeoutError indicates that the operation timed out.
type TimeoutError struct {
	Err error
}

// Timeout implements net.Error.Timeout().
func (e *TimeoutError) Timeout() bool { return true }

// Temporary implements net.Error.Temporary().
func (e *TimeoutError) Temporary() bool { return true }

// Unwrap implements Go1.13 error unwrapper.
func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Error() string { return fmt.Sprintf("seal timeout: %v", e.Err) }

// HandshakeError wraps an error that occurred while the handshake was
// still in progress.
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string { return fmt.Sprintf("handshake error: %v", e.Err) }

// Unwrap implements Go1.13 error unwrapper.
func (e *HandshakeError) Unwrap() error { return e.Err }

// Timeout implements net.Error.Timeout().
func (e *HandshakeError) Timeout() bool {
	var netErr net.Error
	if errors.As(e.Err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// Temporary implements net.Error.Temporary().
func (e *HandshakeError) Temporary() bool {
	var netErr net.Error
	if errors.As(e.Err, &netErr) {
		return netErr.Temporary() //nolint:staticcheck
	}

	return false
}
