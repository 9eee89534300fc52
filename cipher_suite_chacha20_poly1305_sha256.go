package seal

import (
	"crypto/sha256"
	"hash"
	"sync/atomic"

	"github.com/sealproto/seal/pkg/crypto/ciphersuite"
	"github.com/sealproto/seal/pkg/crypto/keyschedule"
	"github.com/sealproto/seal/pkg/protocol/recordlayer"
)

type cipherSuiteChaCha20Poly1305Sha256 struct {
	cipher atomic.Value // *ciphersuite.ChaCha20Poly1305
}

func (c *cipherSuiteChaCha20Poly1305Sha256) ID() CipherSuiteID {
	return SEAL_CHACHA20_POLY1305_SHA256
}

func (c *cipherSuiteChaCha20Poly1305Sha256) String() string {
	return c.ID().String()
}

func (c *cipherSuiteChaCha20Poly1305Sha256) HashFunc() func() hash.Hash {
	return sha256.New
}

func (c *cipherSuiteChaCha20Poly1305Sha256) KeyLen() int { return 32 }

func (c *cipherSuiteChaCha20Poly1305Sha256) IVLen() int { return 12 }

func (c *cipherSuiteChaCha20Poly1305Sha256) IsInitialized() bool {
	return c.cipher.Load() != nil
}

func (c *cipherSuiteChaCha20Poly1305Sha256) Init(schedule *keyschedule.Schedule, isClient bool) error {
	localKey, localIV := schedule.ClientWriteKey, schedule.ClientWriteIV
	remoteKey, remoteIV := schedule.ServerWriteKey, schedule.ServerWriteIV
	if !isClient {
		localKey, localIV, remoteKey, remoteIV = remoteKey, remoteIV, localKey, localIV
	}

	cipher, err := ciphersuite.NewChaCha20Poly1305(localKey, localIV, remoteKey, remoteIV)
	if err != nil {
		return err
	}
	c.cipher.Store(cipher)

	return nil
}

func (c *cipherSuiteChaCha20Poly1305Sha256) Encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error) {
	cipherSuite, ok := c.cipher.Load().(*ciphersuite.ChaCha20Poly1305)
	if !ok {
		return nil, ErrNotReady
	}

	return cipherSuite.Encrypt(pkt, raw)
}

func (c *cipherSuiteChaCha20Poly1305Sha256) Decrypt(raw []byte) ([]byte, error) {
	cipherSuite, ok := c.cipher.Load().(*ciphersuite.ChaCha20Poly1305)
	if !ok {
		return nil, ErrNotReady
	}

	return cipherSuite.Decrypt(raw)
}
