package seal

import (
	"hash"

	"github.com/sealproto/seal/pkg/crypto/keyschedule"
	"github.com/sealproto/seal/pkg/protocol/recordlayer"
)

// CipherSuiteID is an ID for our supported CipherSuites.
type CipherSuiteID uint16

// Supported Cipher Suites.
const (
	SEAL_AES_128_GCM_SHA256       CipherSuiteID = 0x0101 //nolint:revive,stylecheck
	SEAL_CHACHA20_POLY1305_SHA256 CipherSuiteID = 0x0102 //nolint:revive,stylecheck
)

func (c CipherSuiteID) String() string {
	switch c {
	case SEAL_AES_128_GCM_SHA256:
		return "SEAL_AES_128_GCM_SHA256"
	case SEAL_CHACHA20_POLY1305_SHA256:
		return "SEAL_CHACHA20_POLY1305_SHA256"
	default:
		return "unknown or unsupported cipher suite"
	}
}

// CipherSuite is an interface that all SEAL CipherSuites must satisfy.
type CipherSuite interface {
	// ID of the CipherSuite, as offered on the wire.
	ID() CipherSuiteID
	String() string

	// HashFunc is the hash backing the transcript and the key schedule.
	HashFunc() func() hash.Hash

	// KeyLen and IVLen describe the material the key schedule must derive.
	KeyLen() int
	IVLen() int

	// Init takes a derived key schedule and readies the record protection.
	Init(schedule *keyschedule.Schedule, isClient bool) error
	IsInitialized() bool

	// Encrypt and Decrypt protect and unprotect records once initialized.
	Encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error)
	Decrypt(in []byte) ([]byte, error)
}

// cipherSuiteForID returns a new instance for the given ID, or nil when the
// ID is unknown.
func cipherSuiteForID(id CipherSuiteID) CipherSuite {
	switch id { //nolint:exhaustive
	case SEAL_AES_128_GCM_SHA256:
		return &cipherSuiteAes128GcmSha256{}
	case SEAL_CHACHA20_POLY1305_SHA256:
		return &cipherSuiteChaCha20Poly1305Sha256{}
	}

	return nil
}

// defaultCipherSuites is the built-in preference list, most preferred first.
func defaultCipherSuites() []CipherSuite {
	return []CipherSuite{
		&cipherSuiteAes128GcmSha256{},
		&cipherSuiteChaCha20Poly1305Sha256{},
	}
}

// parseCipherSuites turns a user preference list into suite instances,
// preserving order. An empty list selects the defaults.
func parseCipherSuites(userSelected []CipherSuiteID) ([]CipherSuite, error) {
	if len(userSelected) == 0 {
		return defaultCipherSuites(), nil
	}

	out := make([]CipherSuite, len(userSelected))
	for i, id := range userSelected {
		suite := cipherSuiteForID(id)
		if suite == nil {
			return nil, &invalidCipherSuiteError{id}
		}
		out[i] = suite
	}
	if len(out) == 0 {
		return nil, errNoAvailableCipherSuites
	}

	return out, nil
}

// cipherSuiteIDs flattens suites to their wire IDs, preserving order.
func cipherSuiteIDs(cipherSuites []CipherSuite) []uint16 {
	ids := []uint16{}
	for _, c := range cipherSuites {
		ids = append(ids, uint16(c.ID()))
	}

	return ids
}

// findMatchingCipherSuite picks the first suite in the local preference
// list that the peer also offered. The local ordering decides.
func findMatchingCipherSuite(localPreference []CipherSuite, peerOffered []uint16) (CipherSuite, bool) {
	for _, suite := range localPreference {
		for _, id := range peerOffered {
			if uint16(suite.ID()) == id {
				return suite, true
			}
		}
	}

	return nil, false
}
