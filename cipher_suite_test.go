package seal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCipherSuites(t *testing.T) {
	t.Run("DefaultsWhenEmpty", func(t *testing.T) {
		suites, err := parseCipherSuites(nil)
		require.NoError(t, err)
		require.Len(t, suites, 2)
		assert.Equal(t, SEAL_AES_128_GCM_SHA256, suites[0].ID())
		assert.Equal(t, SEAL_CHACHA20_POLY1305_SHA256, suites[1].ID())
	})

	t.Run("PreservesOrder", func(t *testing.T) {
		suites, err := parseCipherSuites([]CipherSuiteID{SEAL_CHACHA20_POLY1305_SHA256, SEAL_AES_128_GCM_SHA256})
		require.NoError(t, err)
		require.Len(t, suites, 2)
		assert.Equal(t, SEAL_CHACHA20_POLY1305_SHA256, suites[0].ID())
	})

	t.Run("UnknownID", func(t *testing.T) {
		_, err := parseCipherSuites([]CipherSuiteID{0x9999})
		assert.ErrorIs(t, err, &invalidCipherSuiteError{0x9999})
	})
}

func TestFindMatchingCipherSuite(t *testing.T) {
	local, err := parseCipherSuites([]CipherSuiteID{SEAL_CHACHA20_POLY1305_SHA256, SEAL_AES_128_GCM_SHA256})
	require.NoError(t, err)

	// The local preference order decides, not the peer's.
	suite, ok := findMatchingCipherSuite(local, []uint16{
		uint16(SEAL_AES_128_GCM_SHA256), uint16(SEAL_CHACHA20_POLY1305_SHA256),
	})
	require.True(t, ok)
	assert.Equal(t, SEAL_CHACHA20_POLY1305_SHA256, suite.ID())

	suite, ok = findMatchingCipherSuite(local, []uint16{uint16(SEAL_AES_128_GCM_SHA256)})
	require.True(t, ok)
	assert.Equal(t, SEAL_AES_128_GCM_SHA256, suite.ID())

	_, ok = findMatchingCipherSuite(local, []uint16{0x9999})
	assert.False(t, ok)
}

func TestCipherSuiteNotReadyBeforeInit(t *testing.T) {
	for _, suite := range defaultCipherSuites() {
		assert.False(t, suite.IsInitialized(), suite.String())

		_, err := suite.Decrypt([]byte{0x17, 0x01, 0x00, 0x00, 0x00})
		assert.ErrorIs(t, err, ErrNotReady, suite.String())
	}
}

func TestCipherSuiteIDString(t *testing.T) {
	assert.Equal(t, "SEAL_AES_128_GCM_SHA256", SEAL_AES_128_GCM_SHA256.String())
	assert.Equal(t, "SEAL_CHACHA20_POLY1305_SHA256", SEAL_CHACHA20_POLY1305_SHA256.String())
	assert.Equal(t, "unknown or unsupported cipher suite", CipherSuiteID(0x9999).String())
}
