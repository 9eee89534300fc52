package ciphersuite

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/sealproto/seal/pkg/protocol/recordlayer"
)

const (
	gcmTagLength   = 16
	gcmNonceLength = 12
)

// GCM protects records with AES-GCM.
type GCM struct {
	aead *aead
}

// NewGCM creates a GCM record cipher from per-direction keys and IVs.
func NewGCM(localKey, localWriteIV, remoteKey, remoteWriteIV []byte) (*GCM, error) {
	localBlock, err := aes.NewCipher(localKey)
	if err != nil {
		return nil, err
	}
	localGCM, err := cipher.NewGCM(localBlock)
	if err != nil {
		return nil, err
	}

	remoteBlock, err := aes.NewCipher(remoteKey)
	if err != nil {
		return nil, err
	}
	remoteGCM, err := cipher.NewGCM(remoteBlock)
	if err != nil {
		return nil, err
	}

	return &GCM{
		aead: newAEAD(localGCM, localWriteIV, remoteGCM, remoteWriteIV, gcmNonceLength, gcmTagLength),
	}, nil
}

// Encrypt encrypts a RecordLayer message.
func (g *GCM) Encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error) {
	return g.aead.encrypt(pkt, raw)
}

// Decrypt decrypts a RecordLayer message.
func (g *GCM) Decrypt(in []byte) ([]byte, error) {
	return g.aead.decrypt(in)
}
