package keyschedule

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandLabelDeterministic(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	transcript := []byte("transcript hash")

	first, err := ExpandLabel(sha256.New, secret, LabelClientWrite, transcript, 16)
	require.NoError(t, err)
	second, err := ExpandLabel(sha256.New, secret, LabelClientWrite, transcript, 16)
	require.NoError(t, err)

	assert.Len(t, first, 16)
	assert.Equal(t, first, second)
}

func TestExpandLabelIndependence(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	transcript := []byte("transcript hash")

	clientKey, err := ExpandLabel(sha256.New, secret, LabelClientWrite, transcript, 16)
	require.NoError(t, err)
	serverKey, err := ExpandLabel(sha256.New, secret, LabelServerWrite, transcript, 16)
	require.NoError(t, err)
	assert.NotEqual(t, clientKey, serverKey)

	otherTranscript, err := ExpandLabel(sha256.New, secret, LabelClientWrite, []byte("other"), 16)
	require.NoError(t, err)
	assert.NotEqual(t, clientKey, otherTranscript)
}

func TestExpandLabelLimits(t *testing.T) {
	secret := []byte("secret")

	_, err := ExpandLabel(nil, secret, "x", nil, 16)
	assert.ErrorIs(t, err, errMissingHashFunction)

	longLabel := make([]byte, 256)
	_, err = ExpandLabel(sha256.New, secret, string(longLabel), nil, 16)
	assert.ErrorIs(t, err, errLabelTooBig)

	longContext := make([]byte, 256)
	_, err = ExpandLabel(sha256.New, secret, "x", longContext, 16)
	assert.ErrorIs(t, err, errContextTooBig)
}

func TestScheduleDeterministic(t *testing.T) {
	sharedSecret := []byte("shared secret from key agreement")
	transcript := []byte("full handshake transcript hash")

	one, err := New(sha256.New, sharedSecret)
	require.NoError(t, err)
	two, err := New(sha256.New, sharedSecret)
	require.NoError(t, err)

	require.NoError(t, one.DeriveTrafficKeys(transcript, 16, 12))
	require.NoError(t, two.DeriveTrafficKeys(transcript, 16, 12))

	// Both sides derive from the same inputs and must land on identical
	// key material, with the two directions distinct from each other.
	assert.Equal(t, one.ClientWriteKey, two.ClientWriteKey)
	assert.Equal(t, one.ServerWriteKey, two.ServerWriteKey)
	assert.Equal(t, one.ClientWriteIV, two.ClientWriteIV)
	assert.Equal(t, one.ServerWriteIV, two.ServerWriteIV)
	assert.Equal(t, one.ExporterSecret, two.ExporterSecret)
	assert.NotEqual(t, one.ClientWriteKey, one.ServerWriteKey)
	assert.NotEqual(t, one.ClientWriteIV, one.ServerWriteIV)
}

func TestScheduleRejectsEmptySecret(t *testing.T) {
	_, err := New(sha256.New, nil)
	assert.ErrorIs(t, err, errMissingSharedSecret)
}

func TestFinishedKeyPerSide(t *testing.T) {
	schedule, err := New(sha256.New, []byte("shared secret"))
	require.NoError(t, err)

	transcript := []byte("transcript at finished point")
	clientKey, err := schedule.FinishedKey(true, transcript)
	require.NoError(t, err)
	serverKey, err := schedule.FinishedKey(false, transcript)
	require.NoError(t, err)
	assert.NotEqual(t, clientKey, serverKey)
}

func TestExport(t *testing.T) {
	schedule, err := New(sha256.New, []byte("shared secret"))
	require.NoError(t, err)

	_, err = schedule.Export("my label", nil, 32)
	assert.ErrorIs(t, err, errSpent) // exporter secret not derived yet

	require.NoError(t, schedule.DeriveTrafficKeys([]byte("transcript"), 16, 12))

	one, err := schedule.Export("my label", nil, 32)
	require.NoError(t, err)
	two, err := schedule.Export("other label", nil, 32)
	require.NoError(t, err)
	assert.Len(t, one, 32)
	assert.NotEqual(t, one, two)
}

func TestZero(t *testing.T) {
	schedule, err := New(sha256.New, []byte("shared secret"))
	require.NoError(t, err)
	require.NoError(t, schedule.DeriveTrafficKeys([]byte("transcript"), 16, 12))

	key := schedule.ClientWriteKey
	schedule.Zero()

	// The backing bytes are wiped, not just unreferenced.
	assert.Equal(t, make([]byte, 16), key)
	assert.Nil(t, schedule.ClientWriteKey)

	_, err = schedule.FinishedKey(true, nil)
	assert.ErrorIs(t, err, errSpent)
	assert.ErrorIs(t, schedule.DeriveTrafficKeys(nil, 16, 12), errSpent)
	_, err = schedule.Export("label", nil, 16)
	assert.ErrorIs(t, err, errSpent)
}
