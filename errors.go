package seal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/sealproto/seal/pkg/crypto/ciphersuite"
	"github.com/sealproto/seal/pkg/protocol"
	"github.com/sealproto/seal/pkg/protocol/alert"
)

// Typed errors.
var (
	// ErrConnClosed is returned from operations on a locally closed Conn.
	ErrConnClosed = &FatalError{Err: errors.New("conn is closed")} //nolint:err113

	// ErrNotReady is returned when application data is written before the
	// handshake reached Established. The caller may retry once it has.
	ErrNotReady = &TemporaryError{Err: errors.New("handshake not complete")} //nolint:err113

	// ErrNoCommonCipherSuite means the two preference lists share no suite.
	ErrNoCommonCipherSuite = &FatalError{Err: errors.New("client and server share no cipher suite")} //nolint:err113

	// ErrRecordAuthenticationFailed means an AEAD tag mismatch: tampering or
	// corruption. The Conn is torn down, altered plaintext is never returned.
	ErrRecordAuthenticationFailed = ciphersuite.ErrAuthenticationFailed

	// Certificate verification failures, in the order the checks run.
	ErrBrokenChain        = &FatalError{Err: errors.New("certificate chain link is not signed by its issuer")} //nolint:err113
	ErrCertificateExpired = &FatalError{Err: errors.New("certificate is outside its validity window")}         //nolint:err113
	ErrHostnameMismatch   = &FatalError{Err: errors.New("certificate is not valid for the requested name")}    //nolint:err113
	ErrUntrustedRoot      = &FatalError{Err: errors.New("certificate chain does not reach a trust anchor")}    //nolint:err113

	errDeadlineExceeded = &TimeoutError{Err: fmt.Errorf("read/write timeout: %w", context.DeadlineExceeded)}

	//nolint:err113
	errContextUnsupported = &TemporaryError{Err: errors.New("context is not supported for ExportKeyingMaterial")}
	//nolint:err113
	errReservedExportKeyingMaterial = &TemporaryError{
		Err: errors.New("ExportKeyingMaterial can not be used with a reserved label"),
	}
	//nolint:err113
	errUnhandledContentType = &FatalError{Err: errors.New("unhandled contentType")}

	//nolint:err113
	errUnexpectedMessage = &FatalError{Err: errors.New("handshake message received out of sequence")}
	//nolint:err113
	errUnsupportedProtocolVersion = &FatalError{Err: errors.New("unsupported protocol version")}
	//nolint:err113
	errCipherSuiteNotOffered = &FatalError{Err: errors.New("server selected a cipher suite we did not offer")}
	//nolint:err113
	errInvalidNamedCurve = &FatalError{Err: errors.New("remote requested an unsupported named curve")}
	//nolint:err113
	errVerifyDataMismatch = &FatalError{Err: errors.New("expected and actual verify data does not match")}
	//nolint:err113
	errTranscriptSignatureMismatch = &FatalError{Err: errors.New("transcript signature does not verify")}
	//nolint:err113
	errInvalidSignatureAlgorithm = &FatalError{Err: errors.New("invalid signature algorithm")}
	//nolint:err113
	errNoCertificate = &FatalError{Err: errors.New("peer sent no certificate but one is required")}
	//nolint:err113
	errInvalidCertificate = &FatalError{Err: errors.New("peer certificate could not be parsed")}
	//nolint:err113
	errInvalidPrivateKey = &FatalError{Err: errors.New("invalid private key type")}
	//nolint:err113
	errServerMustHaveCertificate = &FatalError{Err: errors.New("server must be configured with a certificate")}
	//nolint:err113
	errServerNameRequired = &FatalError{Err: errors.New("config must set ServerName or InsecureSkipVerify")}
	//nolint:err113
	errNoConfigProvided = &FatalError{Err: errors.New("no config provided")}
	//nolint:err113
	errNilNextConn = &FatalError{Err: errors.New("conn can not be created with a nil transport")}
	//nolint:err113
	errNoAvailableCipherSuites = &FatalError{Err: errors.New("no cipher suites satisfy this Config")}
	//nolint:err113
	errHandshakeRecordEncrypted = &FatalError{Err: errors.New("handshake content inside a protected record")}

	//nolint:err113
	errInvalidStateTransition = &InternalError{Err: errors.New("handshake states only move forward")}
)

// FatalError indicates that the connection is no longer usable.
type FatalError = protocol.FatalError

// InternalError indicates an error caused by the implementation, after which
// the connection is no longer usable.
type InternalError = protocol.InternalError

// TemporaryError indicates that the connection is still usable, but the
// requested operation failed for now.
type TemporaryError = protocol.TemporaryError

// TimeoutError indicates that the operation timed out.
type TimeoutError = protocol.TimeoutError

// HandshakeError wraps an error that occurred before the handshake
// completed.
type HandshakeError = protocol.HandshakeError

// invalidCipherSuiteError is an attempt at using an unknown cipher suite id.
type invalidCipherSuiteError struct {
	id CipherSuiteID
}

func (e *invalidCipherSuiteError) Error() string {
	return fmt.Sprintf("CipherSuite with id(%d) is not valid", e.id)
}

func (e *invalidCipherSuiteError) Is(err error) bool {
	var other *invalidCipherSuiteError
	if errors.As(err, &other) {
		return e.id == other.id
	}

	return false
}

// alertError wraps an alert notification received from the peer.
type alertError struct {
	*alert.Alert
}

func (e *alertError) Error() string {
	return fmt.Sprintf("alert: %s", e.Alert.String())
}

func (e *alertError) IsFatalOrCloseNotify() bool {
	return e.Level == alert.Fatal || e.Description == alert.CloseNotify
}

func (e *alertError) Is(err error) bool {
	var other *alertError
	if errors.As(err, &other) {
		return e.Level == other.Level && e.Description == other.Description
	}

	return false
}

// netError translates an error from the underlying transport into the
// closest net.Error shape.
func netError(err error) error {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Returned as is.
		return err
	case errors.Is(err, os.ErrDeadlineExceeded):
		return &TimeoutError{Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return err
	}

	return &FatalError{Err: err}
}
