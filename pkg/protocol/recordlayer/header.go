package recordlayer

import (
	"encoding/binary"

	"github.com/sealproto/seal/pkg/protocol"
)

// HeaderSize is the size of a marshaled record header.
const HeaderSize = 5

// Header is the fixed prefix of every record:
// ContentType(1) Version(2) ContentLen(2).
type Header struct {
	ContentType protocol.ContentType
	Version     protocol.Version
	ContentLen  uint16
}

// Marshal encodes the Header to binary.
func (h *Header) Marshal() ([]byte, error) {
	out := make([]byte, HeaderSize)
	out[0] = byte(h.ContentType)
	out[1] = h.Version.Major
	out[2] = h.Version.Minor
	binary.BigEndian.PutUint16(out[3:], h.ContentLen)

	return out, nil
}

// Unmarshal populates the Header from binary.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < HeaderSize {
		return errBufferTooSmall
	}

	h.ContentType = protocol.ContentType(data[0])
	h.Version.Major = data[1]
	h.Version.Minor = data[2]
	h.ContentLen = binary.BigEndian.Uint16(data[3:])

	if !protocol.IsSupported(h.Version) {
		return errUnsupportedProtocolVersion
	}

	return nil
}
