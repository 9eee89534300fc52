package seal

import (
	"crypto/sha256"
	"hash"
	"sync/atomic"

	"github.com/sealproto/seal/pkg/crypto/ciphersuite"
	"github.com/sealproto/seal/pkg/crypto/keyschedule"
	"github.com/sealproto/seal/pkg/protocol/recordlayer"
)

type cipherSuiteAes128GcmSha256 struct {
	gcm atomic.Value // *ciphersuite.GCM
}

func (c *cipherSuiteAes128GcmSha256) ID() CipherSuiteID {
	return SEAL_AES_128_GCM_SHA256
}

func (c *cipherSuiteAes128GcmSha256) String() string {
	return c.ID().String()
}

func (c *cipherSuiteAes128GcmSha256) HashFunc() func() hash.Hash {
	return sha256.New
}

func (c *cipherSuiteAes128GcmSha256) KeyLen() int { return 16 }

func (c *cipherSuiteAes128GcmSha256) IVLen() int { return 12 }

func (c *cipherSuiteAes128GcmSha256) IsInitialized() bool {
	return c.gcm.Load() != nil
}

func (c *cipherSuiteAes128GcmSha256) Init(schedule *keyschedule.Schedule, isClient bool) error {
	localKey, localIV := schedule.ClientWriteKey, schedule.ClientWriteIV
	remoteKey, remoteIV := schedule.ServerWriteKey, schedule.ServerWriteIV
	if !isClient {
		localKey, localIV, remoteKey, remoteIV = remoteKey, remoteIV, localKey, localIV
	}

	gcm, err := ciphersuite.NewGCM(localKey, localIV, remoteKey, remoteIV)
	if err != nil {
		return err
	}
	c.gcm.Store(gcm)

	return nil
}

func (c *cipherSuiteAes128GcmSha256) Encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error) {
	cipherSuite, ok := c.gcm.Load().(*ciphersuite.GCM)
	if !ok {
		return nil, ErrNotReady
	}

	return cipherSuite.Encrypt(pkt, raw)
}

func (c *cipherSuiteAes128GcmSha256) Decrypt(raw []byte) ([]byte, error) {
	cipherSuite, ok := c.gcm.Load().(*ciphersuite.GCM)
	if !ok {
		return nil, ErrNotReady
	}

	return cipherSuite.Decrypt(raw)
}
