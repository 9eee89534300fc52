// Package elliptic provides the ECDH key agreement used by the handshake
package elliptic

import (
	"crypto/ecdh"
	"crypto/rand"
	"errors"
	"fmt"
)

var errInvalidNamedCurve = errors.New("invalid named curve") //nolint:err113

// Curve identifies a key agreement curve, using the IANA TLS group values
// so the registry stays familiar.
type Curve uint16

// Curve enums.
const (
	P256   Curve = 0x0017
	P384   Curve = 0x0018
	X25519 Curve = 0x001d
)

func (c Curve) String() string {
	switch c {
	case P256:
		return "P-256"
	case P384:
		return "P-384"
	case X25519:
		return "X25519"
	default:
		return fmt.Sprintf("%#x", uint16(c))
	}
}

// Curves returns all curves we implement.
func Curves() map[Curve]struct{} {
	return map[Curve]struct{}{
		X25519: {},
		P256:   {},
		P384:   {},
	}
}

func (c Curve) ecdhCurve() (ecdh.Curve, error) {
	switch c {
	case P256:
		return ecdh.P256(), nil
	case P384:
		return ecdh.P384(), nil
	case X25519:
		return ecdh.X25519(), nil
	default:
		return nil, errInvalidNamedCurve
	}
}

// Keypair is a Curve with an ephemeral Private/Public Keypair.
type Keypair struct {
	Curve      Curve
	PublicKey  []byte
	privateKey *ecdh.PrivateKey
}

// GenerateKeypair generates a fresh ephemeral keypair on the given Curve.
func GenerateKeypair(c Curve) (*Keypair, error) {
	curve, err := c.ecdhCurve()
	if err != nil {
		return nil, err
	}

	privateKey, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	return &Keypair{
		Curve:      c,
		PublicKey:  privateKey.PublicKey().Bytes(),
		privateKey: privateKey,
	}, nil
}

// SharedSecret runs the key agreement between our private key and the
// peer's public key share.
func (k *Keypair) SharedSecret(peerPublicKey []byte) ([]byte, error) {
	curve, err := k.Curve.ecdhCurve()
	if err != nil {
		return nil, err
	}

	remoteKey, err := curve.NewPublicKey(peerPublicKey)
	if err != nil {
		return nil, err
	}

	return k.privateKey.ECDH(remoteKey)
}
