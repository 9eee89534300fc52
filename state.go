package seal

import (
	"crypto/x509"
	"hash"

	"github.com/sealproto/seal/pkg/crypto/elliptic"
	"github.com/sealproto/seal/pkg/crypto/keyschedule"
	"github.com/sealproto/seal/pkg/protocol/handshake"
)

// HandshakeState enumerates the fixed progression of the handshake. States
// only move forward; the single exception is the terminal Failed state,
// reachable from anywhere.
type HandshakeState uint8

// HandshakeState enums.
const (
	HandshakeStart HandshakeState = iota
	HandshakeAwaitingPeerHello
	HandshakeAwaitingPeerCertificate
	HandshakeAwaitingPeerFinished
	HandshakeEstablished
	HandshakeFailed
)

func (s HandshakeState) String() string {
	switch s {
	case HandshakeStart:
		return "Start"
	case HandshakeAwaitingPeerHello:
		return "AwaitingPeerHello"
	case HandshakeAwaitingPeerCertificate:
		return "AwaitingPeerCertificate"
	case HandshakeAwaitingPeerFinished:
		return "AwaitingPeerFinished"
	case HandshakeEstablished:
		return "Established"
	case HandshakeFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// State holds a connection's negotiated parameters and handshake progress.
// It is mutated only by the handshake state machine, and is frozen once the
// connection reaches Established.
type State struct {
	isClient bool

	handshakeState HandshakeState

	// transcript is a running hash over every handshake message exchanged,
	// in wire order. It anchors the Finished HMACs, the CertificateVerify
	// signatures and the traffic key derivation.
	transcript hash.Hash

	localRandom, remoteRandom handshake.Random

	cipherSuite  CipherSuite // nil until negotiated
	localKeypair *elliptic.Keypair
	remoteShare  []byte // peer's public key share

	schedule *keyschedule.Schedule

	peerCertificates  []*x509.Certificate
	peerCertsVerified bool
}

// transition moves the handshake forward. Anything but a forward move or an
// entry into Failed is a bug in the state machine itself.
func (s *State) transition(next HandshakeState) error {
	if next == HandshakeFailed {
		s.handshakeState = next

		return nil
	}
	if next <= s.handshakeState {
		return errInvalidStateTransition
	}

	s.handshakeState = next

	return nil
}

// writeTranscript mixes a raw handshake message (header included) into the
// transcript hash.
func (s *State) writeTranscript(raw []byte) {
	if s.transcript != nil {
		// hash.Hash.Write never returns an error.
		_, _ = s.transcript.Write(raw)
	}
}

// transcriptHash snapshots the transcript at the current point.
func (s *State) transcriptHash() []byte {
	if s.transcript == nil {
		return nil
	}

	return s.transcript.Sum(nil)
}

// ConnectionState is a snapshot of the negotiated parameters, safe for the
// caller to hold after the Conn is gone.
type ConnectionState struct {
	// CipherSuiteID is the suite that won the negotiation.
	CipherSuiteID CipherSuiteID

	// PeerCertificates is the certificate chain the peer presented, leaf
	// first. Empty when the peer presented none.
	PeerCertificates []*x509.Certificate

	// VerifiedChain reports whether PeerCertificates passed chain
	// validation (it is false when verification was skipped).
	VerifiedChain bool
}
