package handshake

import (
	"github.com/sealproto/seal/internal/util"
)

// MessageCertificate carries the sender's certificate chain, leaf first,
// each certificate in DER form. A client that has no certificate sends the
// message with an empty chain.
type MessageCertificate struct {
	Certificate [][]byte
}

// Type returns the Handshake Type.
func (m MessageCertificate) Type() Type {
	return TypeCertificate
}

const certificateLengthFieldSize = 3

// Marshal encodes the Handshake.
func (m *MessageCertificate) Marshal() ([]byte, error) {
	out := make([]byte, certificateLengthFieldSize)

	for _, r := range m.Certificate {
		// Certificate length
		out = append(out, make([]byte, certificateLengthFieldSize)...)
		util.PutBigEndianUint24(out[len(out)-certificateLengthFieldSize:], uint32(len(r))) //nolint:gosec // G115

		// Certificate body
		out = append(out, r...)
	}

	// Total chain length
	util.PutBigEndianUint24(out[0:], uint32(len(out)-certificateLengthFieldSize)) //nolint:gosec // G115

	return out, nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageCertificate) Unmarshal(data []byte) error {
	if len(data) < certificateLengthFieldSize {
		return errBufferTooSmall
	}

	chainLen := int(util.BigEndianUint24(data))
	if len(data) != certificateLengthFieldSize+chainLen {
		return errBufferTooSmall
	}

	m.Certificate = nil
	for offset := certificateLengthFieldSize; offset < len(data); {
		if len(data) < offset+certificateLengthFieldSize {
			return errBufferTooSmall
		}
		certLen := int(util.BigEndianUint24(data[offset:]))
		offset += certificateLengthFieldSize

		if len(data) < offset+certLen {
			return errBufferTooSmall
		}
		m.Certificate = append(m.Certificate, append([]byte{}, data[offset:offset+certLen]...))
		offset += certLen
	}

	return nil
}
