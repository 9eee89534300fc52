package handshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealproto/seal/pkg/crypto/elliptic"
	"github.com/sealproto/seal/pkg/protocol"
)

func mustRandom(t *testing.T) Random {
	t.Helper()

	r := Random{}
	require.NoError(t, r.Populate())

	return r
}

func TestHandshakeRoundTrip(t *testing.T) {
	for _, test := range []struct {
		Name    string
		Message Message
	}{
		{
			Name: "ClientHello",
			Message: &MessageClientHello{
				Version:        protocol.Version1_0,
				Random:         mustRandom(t),
				KeyShareCurve:  elliptic.X25519,
				KeyShare:       []byte{0x01, 0x02, 0x03, 0x04},
				CipherSuiteIDs: []uint16{0x0101, 0x0102},
			},
		},
		{
			Name: "ServerHello",
			Message: &MessageServerHello{
				Version:       protocol.Version1_0,
				Random:        mustRandom(t),
				KeyShareCurve: elliptic.P256,
				KeyShare:      []byte{0xAA, 0xBB},
				CipherSuiteID: 0x0101,
			},
		},
		{
			Name: "Certificate",
			Message: &MessageCertificate{
				Certificate: [][]byte{{0x01, 0x02}, {0x03}},
			},
		},
		{
			Name:    "Empty Certificate",
			Message: &MessageCertificate{},
		},
		{
			Name: "CertificateVerify",
			Message: &MessageCertificateVerify{
				Algorithm: 0x0807,
				Signature: []byte{0xDE, 0xAD, 0xBE, 0xEF},
			},
		},
		{
			Name: "Finished",
			Message: &MessageFinished{
				VerifyData: []byte{0x01, 0x02, 0x03},
			},
		},
	} {
		hs := &Handshake{Message: test.Message}
		raw, err := hs.Marshal()
		require.NoError(t, err, test.Name)
		assert.Equal(t, test.Message.Type(), Type(raw[0]), test.Name)

		parsed := &Handshake{}
		require.NoError(t, parsed.Unmarshal(raw), test.Name)
		assert.Equal(t, test.Message.Type(), parsed.Header.Type, test.Name)

		// Random carries a time.Time, so compare re-marshaled bytes rather
		// than the structs.
		reRaw, err := parsed.Marshal()
		require.NoError(t, err, test.Name)
		assert.Equal(t, raw, reRaw, test.Name)
	}
}

func TestHandshakeUnmarshalInvalid(t *testing.T) {
	t.Run("UnknownType", func(t *testing.T) {
		raw := []byte{0x63, 0x00, 0x00, 0x00}
		assert.ErrorIs(t, (&Handshake{}).Unmarshal(raw), errNotImplemented)
	})

	t.Run("TruncatedHeader", func(t *testing.T) {
		raw := []byte{0x01, 0x00}
		assert.ErrorIs(t, (&Handshake{}).Unmarshal(raw), errBufferTooSmall)
	})

	t.Run("TruncatedBody", func(t *testing.T) {
		raw := []byte{0x14, 0x00, 0x00, 0x20, 0x01}
		assert.ErrorIs(t, (&Handshake{}).Unmarshal(raw), errBufferTooSmall)
	})
}

func TestClientHelloNoSuites(t *testing.T) {
	msg := &MessageClientHello{
		Version:       protocol.Version1_0,
		KeyShareCurve: elliptic.X25519,
		KeyShare:      []byte{0x01},
	}
	_, err := msg.Marshal()
	assert.ErrorIs(t, err, errNoCipherSuites)
}

func TestSplit(t *testing.T) {
	first, err := (&Handshake{Message: &MessageFinished{VerifyData: []byte{0x01}}}).Marshal()
	require.NoError(t, err)
	second, err := (&Handshake{Message: &MessageCertificate{Certificate: [][]byte{{0xFF}}}}).Marshal()
	require.NoError(t, err)

	msgs, err := Split(append(append([]byte{}, first...), second...))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first, msgs[0])
	assert.Equal(t, second, msgs[1])

	t.Run("TrailingGarbage", func(t *testing.T) {
		_, err := Split(append(append([]byte{}, first...), 0x01, 0x00))
		assert.ErrorIs(t, err, errBufferTooSmall)
	})

	t.Run("Empty", func(t *testing.T) {
		msgs, err := Split(nil)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestHeaderUint24(t *testing.T) {
	header := &Header{Type: TypeCertificate, Length: 0x010203}
	raw, err := header.Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0B, 0x01, 0x02, 0x03}, raw)

	parsed := &Header{}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Equal(t, header, parsed)

	_, err = (&Header{Length: maxMessageLength + 1}).Marshal()
	assert.ErrorIs(t, err, errLengthOverflow)
}
