package ciphersuite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealproto/seal/pkg/protocol"
	"github.com/sealproto/seal/pkg/protocol/recordlayer"
)

type recordCipher interface {
	Encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error)
	Decrypt(in []byte) ([]byte, error)
}

// cipherPair builds the two ends of a connection with mirrored keys.
func cipherPair(t *testing.T, name string) (local, remote recordCipher) {
	t.Helper()

	var (
		clientKey = []byte("0123456789abcdef")
		serverKey = []byte("fedcba9876543210")
		clientIV  = []byte("aaaabbbbcccc")
		serverIV  = []byte("ddddeeeeffff")
	)

	switch name {
	case "GCM":
		localC, err := NewGCM(clientKey, clientIV, serverKey, serverIV)
		require.NoError(t, err)
		remoteC, err := NewGCM(serverKey, serverIV, clientKey, clientIV)
		require.NoError(t, err)

		return localC, remoteC
	case "ChaCha20Poly1305":
		clientKey256 := append(append([]byte{}, clientKey...), clientKey...)
		serverKey256 := append(append([]byte{}, serverKey...), serverKey...)
		localC, err := NewChaCha20Poly1305(clientKey256, clientIV, serverKey256, serverIV)
		require.NoError(t, err)
		remoteC, err := NewChaCha20Poly1305(serverKey256, serverIV, clientKey256, clientIV)
		require.NoError(t, err)

		return localC, remoteC
	}

	t.Fatalf("unknown cipher %s", name)

	return nil, nil
}

func marshalAppData(t *testing.T, data []byte) (*recordlayer.RecordLayer, []byte) {
	t.Helper()

	pkt := &recordlayer.RecordLayer{
		Header:  recordlayer.Header{Version: protocol.Version1_0},
		Content: &protocol.ApplicationData{Data: data},
	}
	raw, err := pkt.Marshal()
	require.NoError(t, err)

	return pkt, raw
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"GCM", "ChaCha20Poly1305"} {
		t.Run(name, func(t *testing.T) {
			local, remote := cipherPair(t, name)

			pkt, raw := marshalAppData(t, []byte("records on the wire"))
			protected, err := local.Encrypt(pkt, raw)
			require.NoError(t, err)
			assert.NotEqual(t, raw, protected)
			assert.Len(t, protected, len(raw)+MaxOverhead)

			plain, err := remote.Decrypt(protected)
			require.NoError(t, err)
			assert.Equal(t, raw, plain)
		})
	}
}

func TestTamperDetected(t *testing.T) {
	for _, name := range []string{"GCM", "ChaCha20Poly1305"} {
		t.Run(name, func(t *testing.T) {
			local, remote := cipherPair(t, name)

			pkt, raw := marshalAppData(t, []byte("do not touch"))
			protected, err := local.Encrypt(pkt, raw)
			require.NoError(t, err)

			// Any flipped bit, payload or tag, must fail authentication.
			for _, idx := range []int{recordlayer.HeaderSize, len(protected) - 1} {
				tampered := append([]byte{}, protected...)
				tampered[idx] ^= 0x01

				_, err := remote.Decrypt(tampered)
				assert.ErrorIs(t, err, ErrAuthenticationFailed)
			}

			// The header rides as additional data, so it is covered too.
			tampered := append([]byte{}, protected...)
			tampered[3] ^= 0x01 // length field
			_, err = remote.Decrypt(tampered)
			assert.Error(t, err)

			// The untouched record still opens: a failed decrypt must not
			// consume the sequence slot.
			plain, err := remote.Decrypt(protected)
			require.NoError(t, err)
			assert.Equal(t, raw, plain)
		})
	}
}

func TestSequenceBinding(t *testing.T) {
	local, remote := cipherPair(t, "GCM")

	pktOne, rawOne := marshalAppData(t, []byte("one"))
	protectedOne, err := local.Encrypt(pktOne, rawOne)
	require.NoError(t, err)

	pktTwo, rawTwo := marshalAppData(t, []byte("two"))
	protectedTwo, err := local.Encrypt(pktTwo, rawTwo)
	require.NoError(t, err)

	// Delivered in order both open.
	plain, err := remote.Decrypt(protectedOne)
	require.NoError(t, err)
	assert.Equal(t, rawOne, plain)
	plain, err = remote.Decrypt(protectedTwo)
	require.NoError(t, err)
	assert.Equal(t, rawTwo, plain)

	// A replay arrives under the wrong sequence number and fails.
	_, err = remote.Decrypt(protectedOne)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestDecryptTooShort(t *testing.T) {
	_, remote := cipherPair(t, "GCM")

	header, err := (&recordlayer.Header{
		ContentType: protocol.ContentTypeApplicationData,
		Version:     protocol.Version1_0,
		ContentLen:  2,
	}).Marshal()
	require.NoError(t, err)

	_, err = remote.Decrypt(append(header, 0x01, 0x02))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestNonceConstruction(t *testing.T) {
	a := newAEAD(nil, nil, nil, nil, 12, 16)
	writeIV := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	zero, err := a.nonce(writeIV, 0)
	require.NoError(t, err)
	assert.Equal(t, writeIV, zero)

	one, err := a.nonce(writeIV, 1)
	require.NoError(t, err)
	assert.NotEqual(t, zero, one)
	assert.Equal(t, writeIV[:4], one[:4]) // sequence only touches the low 8 bytes

	_, err = a.nonce(writeIV[:4], 0)
	assert.ErrorIs(t, err, errNonceMismatch)
}
