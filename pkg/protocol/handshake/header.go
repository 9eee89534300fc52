package handshake

import (
	"github.com/sealproto/seal/internal/util"
)

// HeaderSize is the size of a marshaled handshake header.
const HeaderSize = 4

// Header is the fixed prefix of every handshake message:
// Type(1) Length(3, uint24).
type Header struct {
	Type   Type
	Length uint32 // uint24
}

// Marshal encodes the Header to binary.
func (h *Header) Marshal() ([]byte, error) {
	if h.Length > maxMessageLength {
		return nil, errLengthOverflow
	}

	out := make([]byte, HeaderSize)
	out[0] = byte(h.Type)
	util.PutBigEndianUint24(out[1:], h.Length)

	return out, nil
}

// Unmarshal populates the Header from binary.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < HeaderSize {
		return errBufferTooSmall
	}

	h.Type = Type(data[0])
	h.Length = util.BigEndianUint24(data[1:])

	return nil
}
