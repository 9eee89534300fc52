// Package signature provides the signature algorithms accepted in a
// CertificateVerify message
package signature

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
)

// Algorithm identifies a signature algorithm, using the IANA TLS
// SignatureScheme values.
type Algorithm uint16

// Algorithm enums.
const (
	ECDSAWithP256AndSHA256 Algorithm = 0x0403
	ECDSAWithP384AndSHA384 Algorithm = 0x0503
	Ed25519                Algorithm = 0x0807
)

func (a Algorithm) String() string {
	switch a {
	case ECDSAWithP256AndSHA256:
		return "ECDSAWithP256AndSHA256"
	case ECDSAWithP384AndSHA384:
		return "ECDSAWithP384AndSHA384"
	case Ed25519:
		return "Ed25519"
	default:
		return "Invalid"
	}
}

// Algorithms returns all implemented signature algorithms.
func Algorithms() map[Algorithm]struct{} {
	return map[Algorithm]struct{}{
		ECDSAWithP256AndSHA256: {},
		ECDSAWithP384AndSHA384: {},
		Ed25519:                {},
	}
}

// ForKey returns the Algorithm a private key signs with, or false if the
// key type is not supported.
func ForKey(key crypto.PrivateKey) (Algorithm, bool) {
	switch k := key.(type) {
	case ed25519.PrivateKey:
		return Ed25519, true
	case *ecdsa.PrivateKey:
		switch k.Curve.Params().BitSize {
		case 256:
			return ECDSAWithP256AndSHA256, true
		case 384:
			return ECDSAWithP384AndSHA384, true
		}
	}

	return 0, false
}
