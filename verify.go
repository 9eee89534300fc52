package seal

import (
	"bytes"
	"crypto/x509"
	"time"
)

// verifyChain validates a peer certificate chain, leaf first, against a set
// of trust anchors. The checks run in a fixed order and the first failure
// wins, so a broken link is never masked by a later, vaguer error:
//
//  1. linkage: every certificate is signed by the next one in the chain
//  2. validity window: now is inside every certificate's NotBefore/NotAfter
//  3. identity: the leaf is valid for expectedName (skipped when empty)
//  4. anchoring: the last certificate chains to, or is, a trust anchor
//
// Revocation is the caller's concern; supply a pre-filtered anchor set.
func verifyChain(chain []*x509.Certificate, anchors []*x509.Certificate, expectedName string, now time.Time) error {
	if len(chain) == 0 {
		return errNoCertificate
	}

	for i := 0; i < len(chain)-1; i++ {
		child, issuer := chain[i], chain[i+1]
		if !bytes.Equal(child.RawIssuer, issuer.RawSubject) {
			return ErrBrokenChain
		}
		if err := child.CheckSignatureFrom(issuer); err != nil {
			return ErrBrokenChain
		}
	}

	for _, cert := range chain {
		if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
			return ErrCertificateExpired
		}
	}

	if expectedName != "" {
		if err := chain[0].VerifyHostname(expectedName); err != nil {
			return ErrHostnameMismatch
		}
	}

	last := chain[len(chain)-1]
	for _, anchor := range anchors {
		if last.Equal(anchor) {
			return nil
		}
		if bytes.Equal(last.RawIssuer, anchor.RawSubject) && last.CheckSignatureFrom(anchor) == nil {
			return nil
		}
	}

	return ErrUntrustedRoot
}

// loadCerts parses the raw DER chain a peer sent.
func loadCerts(rawCertificates [][]byte) ([]*x509.Certificate, error) {
	if len(rawCertificates) == 0 {
		return nil, errNoCertificate
	}

	certs := make([]*x509.Certificate, 0, len(rawCertificates))
	for _, rawCert := range rawCertificates {
		cert, err := x509.ParseCertificate(rawCert)
		if err != nil {
			return nil, errInvalidCertificate
		}
		certs = append(certs, cert)
	}

	return certs, nil
}
