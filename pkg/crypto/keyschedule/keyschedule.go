// Package keyschedule derives every symmetric key a connection uses from
// the handshake's shared secret and transcript hash. The derivation is
// deterministic, and each label yields cryptographically independent
// output: compromise of one derived key reveals nothing about another.
package keyschedule

import (
	"errors"
	"hash"
	"io"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/hkdf"
)

// labelPrefix namespaces every expansion so SEAL key material can never
// collide with another HKDF user of the same secret.
const labelPrefix = "seal "

// Key labels.
const (
	LabelClientWrite    = "client_write"
	LabelClientWriteIV  = "client_write_iv"
	LabelServerWrite    = "server_write"
	LabelServerWriteIV  = "server_write_iv"
	LabelClientFinished = "client_finished"
	LabelServerFinished = "server_finished"
	LabelExporter       = "exporter"
)

var (
	errMissingHashFunction = errors.New("expected a non-nil hash function")       //nolint:err113
	errLabelTooBig         = errors.New("expected a label with length <= 255")    //nolint:err113
	errContextTooBig       = errors.New("expected a context with length <= 255")  //nolint:err113
	errMissingSharedSecret = errors.New("expected a non-empty shared secret")     //nolint:err113
	errSpent               = errors.New("key schedule has already been zeroized") //nolint:err113
)

// Extract implements RFC 5869 section 2.2. An empty salt is replaced with
// HashLen zero bytes.
func Extract(hashFunc func() hash.Hash, salt, ikm []byte) ([]byte, error) {
	if hashFunc == nil {
		return nil, errMissingHashFunction
	}

	return hkdf.Extract(hashFunc, ikm, salt), nil
}

// ExpandLabel implements the labeled expansion of RFC 8446 section 7.1
// with the SEAL prefix.
func ExpandLabel(hashFunc func() hash.Hash, secret []byte, label string, context []byte, length int) ([]byte, error) {
	if hashFunc == nil {
		return nil, errMissingHashFunction
	}

	fullLabel := []byte(labelPrefix + label)
	if len(fullLabel) > 255 {
		return nil, errLabelTooBig
	}
	if len(context) > 255 {
		return nil, errContextTooBig
	}

	var builder cryptobyte.Builder
	builder.AddUint16(uint16(length)) //nolint:gosec // G115
	builder.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(fullLabel)
	})
	builder.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(context)
	})
	info, err := builder.Bytes()
	if err != nil {
		return nil, err
	}

	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.Expand(hashFunc, secret, info), out); err != nil {
		return nil, err
	}

	return out, nil
}

// Schedule owns the per-connection key material. It is created once the
// shared secret exists, filled in as the transcript reaches the points the
// protocol derives from, and wiped with Zero when the connection closes.
type Schedule struct {
	hashFunc func() hash.Hash
	secret   []byte // HKDF-Extract(zero salt, shared secret)

	ClientWriteKey []byte
	ClientWriteIV  []byte
	ServerWriteKey []byte
	ServerWriteIV  []byte

	ExporterSecret []byte
}

// New extracts the schedule's root secret from the handshake's shared
// secret. The caller keeps no copy of sharedSecret; the Schedule owns the
// extracted form from here on.
func New(hashFunc func() hash.Hash, sharedSecret []byte) (*Schedule, error) {
	if len(sharedSecret) == 0 {
		return nil, errMissingSharedSecret
	}

	secret, err := Extract(hashFunc, nil, sharedSecret)
	if err != nil {
		return nil, err
	}

	return &Schedule{hashFunc: hashFunc, secret: secret}, nil
}

// FinishedKey derives the HMAC key a side uses for its Finished message.
// The transcript binds the key to everything exchanged so far.
func (s *Schedule) FinishedKey(isClient bool, transcript []byte) ([]byte, error) {
	if s.secret == nil {
		return nil, errSpent
	}

	label := LabelServerFinished
	if isClient {
		label = LabelClientFinished
	}

	return ExpandLabel(s.hashFunc, s.secret, label, transcript, s.hashFunc().Size())
}

// DeriveTrafficKeys fills in the per-direction write keys and IVs plus the
// exporter secret, bound to the full handshake transcript. After this the
// Schedule is immutable until Zero.
func (s *Schedule) DeriveTrafficKeys(transcript []byte, keyLen, ivLen int) error {
	if s.secret == nil {
		return errSpent
	}

	var err error
	if s.ClientWriteKey, err = ExpandLabel(s.hashFunc, s.secret, LabelClientWrite, transcript, keyLen); err != nil {
		return err
	}
	if s.ClientWriteIV, err = ExpandLabel(s.hashFunc, s.secret, LabelClientWriteIV, transcript, ivLen); err != nil {
		return err
	}
	if s.ServerWriteKey, err = ExpandLabel(s.hashFunc, s.secret, LabelServerWrite, transcript, keyLen); err != nil {
		return err
	}
	if s.ServerWriteIV, err = ExpandLabel(s.hashFunc, s.secret, LabelServerWriteIV, transcript, ivLen); err != nil {
		return err
	}
	if s.ExporterSecret, err = ExpandLabel(
		s.hashFunc, s.secret, LabelExporter, transcript, s.hashFunc().Size(),
	); err != nil {
		return err
	}

	return nil
}

// Export derives caller-owned keying material from the exporter secret,
// per RFC 5705's shape.
func (s *Schedule) Export(label string, context []byte, length int) ([]byte, error) {
	if s.ExporterSecret == nil {
		return nil, errSpent
	}

	return ExpandLabel(s.hashFunc, s.ExporterSecret, label, context, length)
}

// Zero wipes every byte of key material. The Schedule is unusable after.
func (s *Schedule) Zero() {
	for _, b := range [][]byte{
		s.secret,
		s.ClientWriteKey, s.ClientWriteIV,
		s.ServerWriteKey, s.ServerWriteIV,
		s.ExporterSecret,
	} {
		for i := range b {
			b[i] = 0
		}
	}

	s.secret = nil
	s.ClientWriteKey, s.ClientWriteIV = nil, nil
	s.ServerWriteKey, s.ServerWriteIV = nil, nil
	s.ExporterSecret = nil
}
