package handshake

import (
	"encoding/binary"

	"github.com/sealproto/seal/pkg/crypto/elliptic"
	"github.com/sealproto/seal/pkg/protocol"
)

// MessageServerHello answers a ClientHello when the server found an
// acceptable cipher suite. It carries the server's key share and the single
// suite that won the negotiation.
type MessageServerHello struct {
	Version protocol.Version
	Random  Random

	KeyShareCurve elliptic.Curve
	KeyShare      []byte

	CipherSuiteID uint16
}

const messageServerHelloFixedLength = 2 + RandomLength + 2 + 1

// Type returns the Handshake Type.
func (m MessageServerHello) Type() Type {
	return TypeServerHello
}

// Marshal encodes the Handshake.
func (m *MessageServerHello) Marshal() ([]byte, error) {
	if m.CipherSuiteID == 0 {
		return nil, errCipherSuiteUnset
	}
	if len(m.KeyShare) > 255 {
		return nil, errKeyShareTooLong
	}

	out := make([]byte, messageServerHelloFixedLength)
	out[0] = m.Version.Major
	out[1] = m.Version.Minor

	rand := m.Random.MarshalFixed()
	copy(out[2:], rand[:])

	binary.BigEndian.PutUint16(out[2+RandomLength:], uint16(m.KeyShareCurve))
	out[2+RandomLength+2] = byte(len(m.KeyShare))
	out = append(out, m.KeyShare...)

	out = append(out, []byte{0x00, 0x00}...)
	binary.BigEndian.PutUint16(out[len(out)-2:], m.CipherSuiteID)

	return out, nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageServerHello) Unmarshal(data []byte) error {
	if len(data) < messageServerHelloFixedLength {
		return errBufferTooSmall
	}

	m.Version.Major = data[0]
	m.Version.Minor = data[1]

	var random [RandomLength]byte
	copy(random[:], data[2:])
	m.Random.UnmarshalFixed(random)

	m.KeyShareCurve = elliptic.Curve(binary.BigEndian.Uint16(data[2+RandomLength:]))

	currOffset := messageServerHelloFixedLength
	keyShareLen := int(data[currOffset-1])
	if len(data) < currOffset+keyShareLen+2 {
		return errBufferTooSmall
	}
	m.KeyShare = append([]byte{}, data[currOffset:currOffset+keyShareLen]...)
	currOffset += keyShareLen

	m.CipherSuiteID = binary.BigEndian.Uint16(data[currOffset:])
	if m.CipherSuiteID == 0 {
		return errCipherSuiteUnset
	}

	return nil
}
