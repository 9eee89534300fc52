// Package recordlayer implements the framing that carries all SEAL data.
// The record layer sits directly on top of a reliable byte-stream transport
// and can carry three kinds of content: handshake messages, alerts and
// application data.
package recordlayer

import (
	"encoding/binary"

	"github.com/sealproto/seal/pkg/protocol"
	"github.com/sealproto/seal/pkg/protocol/alert"
	"github.com/sealproto/seal/pkg/protocol/handshake"
)

// DefaultMaxRecordLen is the largest payload a record may carry unless the
// caller configures a different limit.
const DefaultMaxRecordLen = 16384 // 16 KiB

// RecordLayer is one framed unit on the wire.
type RecordLayer struct {
	Header  Header
	Content protocol.Content
}

// Marshal encodes the RecordLayer to binary.
func (r *RecordLayer) Marshal() ([]byte, error) {
	contentRaw, err := r.Content.Marshal()
	if err != nil {
		return nil, err
	}

	r.Header.ContentLen = uint16(len(contentRaw)) //nolint:gosec // G115
	r.Header.ContentType = r.Content.ContentType()

	headerRaw, err := r.Header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(headerRaw, contentRaw...), nil
}

// Unmarshal populates the RecordLayer from binary.
func (r *RecordLayer) Unmarshal(data []byte) error {
	if err := r.Header.Unmarshal(data); err != nil {
		return err
	}
	if len(data) < HeaderSize+int(r.Header.ContentLen) {
		return errBufferTooSmall
	}

	switch r.Header.ContentType {
	case protocol.ContentTypeAlert:
		r.Content = &alert.Alert{}
	case protocol.ContentTypeHandshake:
		r.Content = &handshake.Handshake{}
	case protocol.ContentTypeApplicationData:
		r.Content = &protocol.ApplicationData{}
	default:
		return errInvalidContentType
	}

	return r.Content.Unmarshal(data[HeaderSize : HeaderSize+int(r.Header.ContentLen)])
}

// ReadRecord parses one record from buf, which may hold a partial stream.
// It returns the raw record (header included) and the unconsumed remainder.
// ErrIncomplete means buf does not yet hold a full record and more bytes
// must be buffered; ErrRecordOverflow means the declared length exceeds
// maxLen and the stream cannot be trusted further.
//
// The length check happens before the body has arrived, so a hostile peer
// cannot force the caller to buffer an unbounded record.
func ReadRecord(buf []byte, maxLen int) (raw, rest []byte, err error) {
	if len(buf) < HeaderSize {
		return nil, buf, ErrIncomplete
	}

	contentLen := int(binary.BigEndian.Uint16(buf[3:]))
	if maxLen <= 0 {
		maxLen = DefaultMaxRecordLen
	}
	if contentLen > maxLen {
		return nil, buf, ErrRecordOverflow
	}

	recordLen := HeaderSize + contentLen
	if len(buf) < recordLen {
		return nil, buf, ErrIncomplete
	}

	return buf[:recordLen], buf[recordLen:], nil
}
