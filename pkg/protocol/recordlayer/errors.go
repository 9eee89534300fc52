package recordlayer

import (
	"errors"

	"github.com/sealproto/seal/pkg/protocol"
)

var (
	// ErrIncomplete signals that the buffer does not yet hold a full record.
	// It is not a failure: the caller must read more bytes and retry.
	ErrIncomplete = errors.New("partial record, need more bytes") //nolint:err113

	// ErrRecordOverflow signals a record whose declared length exceeds the
	// configured maximum. A peer sending one is either broken or hostile.
	ErrRecordOverflow = &protocol.FatalError{Err: errors.New("record length exceeds maximum")} //nolint:err113

	//nolint:err113
	errBufferTooSmall = &protocol.TemporaryError{Err: errors.New("buffer is too small")}
	//nolint:err113
	errInvalidContentType = &protocol.FatalError{Err: errors.New("invalid content type")}
	//nolint:err113
	errUnsupportedProtocolVersion = &protocol.FatalError{Err: errors.New("unsupported protocol version")}
)
