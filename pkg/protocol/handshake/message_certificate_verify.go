package handshake

import (
	"encoding/binary"

	"github.com/sealproto/seal/pkg/crypto/signature"
)

// MessageCertificateVerify proves possession of the private key matching
// the previously sent certificate: a signature over the transcript hash at
// the moment of signing.
type MessageCertificateVerify struct {
	Algorithm signature.Algorithm
	Signature []byte
}

const messageCertificateVerifyMinLength = 4

// Type returns the Handshake Type.
func (m MessageCertificateVerify) Type() Type {
	return TypeCertificateVerify
}

// Marshal encodes the Handshake.
func (m *MessageCertificateVerify) Marshal() ([]byte, error) {
	out := make([]byte, 2+2+len(m.Signature))

	binary.BigEndian.PutUint16(out[0:], uint16(m.Algorithm))
	binary.BigEndian.PutUint16(out[2:], uint16(len(m.Signature))) //nolint:gosec // G115
	copy(out[4:], m.Signature)

	return out, nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageCertificateVerify) Unmarshal(data []byte) error {
	if len(data) < messageCertificateVerifyMinLength {
		return errBufferTooSmall
	}

	m.Algorithm = signature.Algorithm(binary.BigEndian.Uint16(data[0:]))

	signatureLength := int(binary.BigEndian.Uint16(data[2:]))
	if signatureLength+4 != len(data) {
		return errBufferTooSmall
	}

	m.Signature = append([]byte{}, data[4:]...)

	return nil
}
