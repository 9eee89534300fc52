package seal

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"hash"

	"github.com/sealproto/seal/pkg/crypto/signature"
)

// transcriptSignatureMessage builds the byte string a CertificateVerify
// signature covers: a fixed pad, a context label, a separator and the
// transcript hash. The pad keeps the signed message from ever colliding
// with a signable application payload.
func transcriptSignatureMessage(transcript []byte) []byte {
	const context = "SEAL, certificate verify"

	msg := make([]byte, 0, 64+len(context)+1+len(transcript))
	for i := 0; i < 64; i++ {
		msg = append(msg, 0x20)
	}
	msg = append(msg, context...)
	msg = append(msg, 0x00)
	msg = append(msg, transcript...)

	return msg
}

func signatureHash(alg signature.Algorithm) (func() hash.Hash, crypto.Hash) {
	if alg == signature.ECDSAWithP384AndSHA384 {
		return sha512.New384, crypto.SHA384
	}

	return sha256.New, crypto.SHA256
}

// generateTranscriptSignature signs the current transcript with the local
// certificate's private key.
func generateTranscriptSignature(transcript []byte, signer crypto.Signer) (signature.Algorithm, []byte, error) {
	alg, ok := signature.ForKey(signer)
	if !ok {
		return 0, nil, errInvalidPrivateKey
	}

	msg := transcriptSignatureMessage(transcript)
	if alg == signature.Ed25519 {
		sig, err := signer.Sign(rand.Reader, msg, crypto.Hash(0))

		return alg, sig, err
	}

	hashFunc, cryptoHash := signatureHash(alg)
	digest := hashFunc()
	digest.Write(msg)
	sig, err := signer.Sign(rand.Reader, digest.Sum(nil), cryptoHash)

	return alg, sig, err
}

// verifyTranscriptSignature checks a CertificateVerify signature against
// the transcript and the peer's leaf certificate.
func verifyTranscriptSignature(
	transcript []byte, alg signature.Algorithm, sig []byte, cert *x509.Certificate,
) error {
	if _, ok := signature.Algorithms()[alg]; !ok {
		return errInvalidSignatureAlgorithm
	}

	msg := transcriptSignatureMessage(transcript)

	switch pub := cert.PublicKey.(type) {
	case ed25519.PublicKey:
		if alg != signature.Ed25519 || !ed25519.Verify(pub, msg, sig) {
			return errTranscriptSignatureMismatch
		}
	case *ecdsa.PublicKey:
		hashFunc, _ := signatureHash(alg)
		digest := hashFunc()
		digest.Write(msg)
		if !ecdsa.VerifyASN1(pub, digest.Sum(nil), sig) {
			return errTranscriptSignatureMismatch
		}
	default:
		return errInvalidSignatureAlgorithm
	}

	return nil
}

// computeVerifyData produces a Finished message body: an HMAC over the
// transcript under the sender's finished key.
func computeVerifyData(hashFunc func() hash.Hash, finishedKey, transcript []byte) []byte {
	mac := hmac.New(hashFunc, finishedKey)
	mac.Write(transcript)

	return mac.Sum(nil)
}

// checkVerifyData compares a received Finished body in constant time.
func checkVerifyData(hashFunc func() hash.Hash, finishedKey, transcript, verifyData []byte) error {
	if !hmac.Equal(computeVerifyData(hashFunc, finishedKey, transcript), verifyData) {
		return errVerifyDataMismatch
	}

	return nil
}
