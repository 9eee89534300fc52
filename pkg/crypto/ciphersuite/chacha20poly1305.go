package ciphersuite

import (
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/sealproto/seal/pkg/protocol/recordlayer"
)

const chacha20Poly1305TagLength = 16

// ChaCha20Poly1305 protects records with ChaCha20-Poly1305.
type ChaCha20Poly1305 struct {
	aead *aead
}

// NewChaCha20Poly1305 creates a ChaCha20-Poly1305 record cipher from
// per-direction keys and IVs.
func NewChaCha20Poly1305(localKey, localWriteIV, remoteKey, remoteWriteIV []byte) (*ChaCha20Poly1305, error) {
	localAEAD, err := chacha20poly1305.New(localKey)
	if err != nil {
		return nil, err
	}

	remoteAEAD, err := chacha20poly1305.New(remoteKey)
	if err != nil {
		return nil, err
	}

	return &ChaCha20Poly1305{
		aead: newAEAD(
			localAEAD, localWriteIV, remoteAEAD, remoteWriteIV,
			chacha20poly1305.NonceSize, chacha20Poly1305TagLength,
		),
	}, nil
}

// Encrypt encrypts a RecordLayer message.
func (c *ChaCha20Poly1305) Encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error) {
	return c.aead.encrypt(pkt, raw)
}

// Decrypt decrypts a RecordLayer message.
func (c *ChaCha20Poly1305) Decrypt(in []byte) ([]byte, error) {
	return c.aead.decrypt(in)
}
