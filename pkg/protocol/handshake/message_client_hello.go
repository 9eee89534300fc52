package handshake

import (
	"encoding/binary"

	"github.com/sealproto/seal/pkg/crypto/elliptic"
	"github.com/sealproto/seal/pkg/protocol"
)

// MessageClientHello opens the handshake. The client advertises its
// protocol version, its ephemeral key share and its cipher suite
// preference list, most preferred first.
type MessageClientHello struct {
	Version protocol.Version
	Random  Random

	KeyShareCurve elliptic.Curve
	KeyShare      []byte

	CipherSuiteIDs []uint16
}

const messageClientHelloFixedLength = 2 + RandomLength + 2 + 1

// Type returns the Handshake Type.
func (m MessageClientHello) Type() Type {
	return TypeClientHello
}

// Marshal encodes the Handshake.
func (m *MessageClientHello) Marshal() ([]byte, error) {
	if len(m.CipherSuiteIDs) == 0 {
		return nil, errNoCipherSuites
	}
	if len(m.KeyShare) > 255 {
		return nil, errKeyShareTooLong
	}

	out := make([]byte, messageClientHelloFixedLength)
	out[0] = m.Version.Major
	out[1] = m.Version.Minor

	rand := m.Random.MarshalFixed()
	copy(out[2:], rand[:])

	binary.BigEndian.PutUint16(out[2+RandomLength:], uint16(m.KeyShareCurve))
	out[2+RandomLength+2] = byte(len(m.KeyShare))
	out = append(out, m.KeyShare...)

	out = append(out, byte(len(m.CipherSuiteIDs)))
	for _, id := range m.CipherSuiteIDs {
		out = append(out, []byte{0x00, 0x00}...)
		binary.BigEndian.PutUint16(out[len(out)-2:], id)
	}

	return out, nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageClientHello) Unmarshal(data []byte) error {
	if len(data) < messageClientHelloFixedLength {
		return errBufferTooSmall
	}

	m.Version.Major = data[0]
	m.Version.Minor = data[1]

	var random [RandomLength]byte
	copy(random[:], data[2:])
	m.Random.UnmarshalFixed(random)

	m.KeyShareCurve = elliptic.Curve(binary.BigEndian.Uint16(data[2+RandomLength:]))

	currOffset := messageClientHelloFixedLength
	keyShareLen := int(data[currOffset-1])
	if len(data) < currOffset+keyShareLen+1 {
		return errBufferTooSmall
	}
	m.KeyShare = append([]byte{}, data[currOffset:currOffset+keyShareLen]...)
	currOffset += keyShareLen

	suiteCount := int(data[currOffset])
	currOffset++
	if len(data) < currOffset+suiteCount*2 {
		return errBufferTooSmall
	}

	m.CipherSuiteIDs = make([]uint16, suiteCount)
	for i := 0; i < suiteCount; i++ {
		m.CipherSuiteIDs[i] = binary.BigEndian.Uint16(data[currOffset+i*2:])
	}

	return nil
}
