package handshake

import (
	"errors"

	"github.com/sealproto/seal/pkg/protocol"
)

// maxMessageLength is the largest body a handshake header can describe (uint24).
const maxMessageLength = 1<<24 - 1

var (
	//nolint:err113
	errBufferTooSmall = &protocol.TemporaryError{Err: errors.New("buffer is too small")}
	//nolint:err113
	errLengthOverflow = &protocol.InternalError{Err: errors.New("handshake message too large for uint24 length")}
	//nolint:err113
	errNotImplemented = &protocol.InternalError{Err: errors.New("not implemented")}
	//nolint:err113
	errHandshakeMessageUnset = &protocol.InternalError{Err: errors.New("handshake message unset, unable to marshal")}
	//nolint:err113
	errCipherSuiteUnset = &protocol.FatalError{Err: errors.New("server hello can not be created without a cipher suite")}
	//nolint:err113
	errNoCipherSuites = &protocol.FatalError{Err: errors.New("client hello must offer at least one cipher suite")}
	//nolint:err113
	errKeyShareTooLong = &protocol.FatalError{Err: errors.New("key share must not be longer than 255 bytes")}
)
