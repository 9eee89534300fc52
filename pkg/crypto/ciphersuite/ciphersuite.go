// Package ciphersuite provides the AEAD record protection used once a
// connection is established
package ciphersuite

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"sync/atomic"

	"github.com/sealproto/seal/pkg/protocol"
	"github.com/sealproto/seal/pkg/protocol/recordlayer"
)

var (
	// ErrAuthenticationFailed signals an AEAD tag mismatch: the record was
	// tampered with or corrupted. Always fatal, never retried.
	ErrAuthenticationFailed = &protocol.FatalError{Err: errors.New("record authentication failed")} //nolint:err113

	//nolint:err113
	errNonceMismatch = &protocol.InternalError{Err: errors.New("write IV shorter than nonce")}
)

// MaxOverhead is the most bytes any implemented AEAD adds to a plaintext.
const MaxOverhead = 16

// aead protects records in both directions. The record sequence number is
// implicit: each direction counts records independently and mixes the
// count into the nonce, so a reordered or replayed record fails to open.
type aead struct {
	localAEAD     cipher.AEAD
	remoteAEAD    cipher.AEAD
	localWriteIV  []byte
	remoteWriteIV []byte

	localSequence  atomic.Uint64
	remoteSequence atomic.Uint64

	nonceLength int
	tagLength   int
}

func newAEAD(localAEAD cipher.AEAD, localWriteIV []byte, remoteAEAD cipher.AEAD, remoteWriteIV []byte,
	nonceLength, tagLength int,
) *aead {
	return &aead{
		localAEAD:     localAEAD,
		localWriteIV:  localWriteIV,
		remoteAEAD:    remoteAEAD,
		remoteWriteIV: remoteWriteIV,
		nonceLength:   nonceLength,
		tagLength:     tagLength,
	}
}

// nonce XORs the big-endian record sequence into the write IV, the
// RFC 8446 section 5.3 construction.
func (a *aead) nonce(writeIV []byte, sequence uint64) ([]byte, error) {
	if len(writeIV) < a.nonceLength {
		return nil, errNonceMismatch
	}

	nonce := make([]byte, a.nonceLength)
	copy(nonce, writeIV[:a.nonceLength])

	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], sequence)
	for i := 0; i < 8; i++ {
		nonce[a.nonceLength-8+i] ^= seq[i]
	}

	return nonce, nil
}

// encrypt seals a marshaled record. The returned frame carries the same
// header with its length patched to the ciphertext size; the header is
// bound as additional data.
func (a *aead) encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error) {
	payload := raw[recordlayer.HeaderSize:]

	nonce, err := a.nonce(a.localWriteIV, a.localSequence.Add(1)-1)
	if err != nil {
		return nil, err
	}

	pkt.Header.ContentLen = uint16(len(payload) + a.tagLength) //nolint:gosec // G115
	additionalData, err := pkt.Header.Marshal()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, recordlayer.HeaderSize+len(payload)+a.tagLength)
	out = append(out, additionalData...)
	out = a.localAEAD.Seal(out, nonce, payload, additionalData)

	return out, nil
}

// decrypt opens a raw record received from the peer and returns the frame
// with its plaintext payload and a corrected length field. A tag mismatch
// returns ErrAuthenticationFailed without consuming the sequence slot of a
// later record.
func (a *aead) decrypt(in []byte) ([]byte, error) {
	var header recordlayer.Header
	if err := header.Unmarshal(in); err != nil {
		return nil, err
	}
	if len(in) < recordlayer.HeaderSize+a.tagLength {
		return nil, ErrAuthenticationFailed
	}

	sequence := a.remoteSequence.Load()
	nonce, err := a.nonce(a.remoteWriteIV, sequence)
	if err != nil {
		return nil, err
	}

	additionalData := make([]byte, recordlayer.HeaderSize)
	copy(additionalData, in[:recordlayer.HeaderSize])

	payload, err := a.remoteAEAD.Open(nil, nonce, in[recordlayer.HeaderSize:], additionalData)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	a.remoteSequence.Store(sequence + 1)

	header.ContentLen = uint16(len(payload)) //nolint:gosec // G115
	headerRaw, err := header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(headerRaw, payload...), nil
}
