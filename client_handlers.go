package seal

import (
	"crypto"

	"github.com/sealproto/seal/pkg/crypto/elliptic"
	"github.com/sealproto/seal/pkg/crypto/keyschedule"
	"github.com/sealproto/seal/pkg/protocol"
	"github.com/sealproto/seal/pkg/protocol/alert"
	"github.com/sealproto/seal/pkg/protocol/handshake"
)

const defaultNamedCurve = elliptic.X25519

func (s *handshakeFSM) clientBegin() ([][]byte, *alert.Alert, error) {
	internalErr := &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}

	if err := s.state.localRandom.Populate(); err != nil {
		return nil, internalErr, err
	}

	keypair, err := elliptic.GenerateKeypair(defaultNamedCurve)
	if err != nil {
		return nil, internalErr, err
	}
	s.state.localKeypair = keypair

	flight, err := s.appendOutbound(nil, &handshake.MessageClientHello{
		Version:        protocol.Version1_0,
		Random:         s.state.localRandom,
		KeyShareCurve:  keypair.Curve,
		KeyShare:       keypair.PublicKey,
		CipherSuiteIDs: cipherSuiteIDs(s.cfg.localCipherSuites),
	})
	if err != nil {
		return nil, internalErr, err
	}

	return flight, nil, nil
}

func (s *handshakeFSM) clientAdvance(hs *handshake.Handshake, preHash []byte) ([][]byte, *alert.Alert, error) {
	switch s.state.handshakeState { //nolint:exhaustive // Start/Established/Failed rejected by advance
	case HandshakeAwaitingPeerHello:
		if msg, ok := hs.Message.(*handshake.MessageServerHello); ok {
			return s.handleServerHello(msg)
		}
	case HandshakeAwaitingPeerCertificate:
		if msg, ok := hs.Message.(*handshake.MessageCertificate); ok && s.state.peerCertificates == nil {
			return s.handleServerCertificate(msg)
		}
		if msg, ok := hs.Message.(*handshake.MessageCertificateVerify); ok && s.certVerifyPending {
			return s.handleServerCertificateVerify(msg, preHash)
		}
	case HandshakeAwaitingPeerFinished:
		if msg, ok := hs.Message.(*handshake.MessageFinished); ok {
			return s.handleServerFinished(msg, preHash)
		}
	}

	return nil, &alert.Alert{Level: alert.Fatal, Description: alert.UnexpectedMessage}, errUnexpectedMessage
}

func (s *handshakeFSM) handleServerHello(msg *handshake.MessageServerHello) ([][]byte, *alert.Alert, error) {
	if !protocol.IsSupported(msg.Version) {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.ProtocolVersion}, errUnsupportedProtocolVersion
	}

	suite, ok := findMatchingCipherSuite(s.cfg.localCipherSuites, []uint16{msg.CipherSuiteID})
	if !ok {
		// The server answered with a suite we never offered.
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errCipherSuiteNotOffered
	}
	s.state.cipherSuite = suite

	if msg.KeyShareCurve != s.state.localKeypair.Curve {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errInvalidNamedCurve
	}

	s.state.remoteRandom = msg.Random
	s.state.remoteShare = msg.KeyShare

	sharedSecret, err := s.state.localKeypair.SharedSecret(msg.KeyShare)
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, err
	}
	schedule, err := keyschedule.New(suite.HashFunc(), sharedSecret)
	for i := range sharedSecret {
		sharedSecret[i] = 0
	}
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}
	s.state.schedule = schedule

	return nil, nil, s.state.transition(HandshakeAwaitingPeerCertificate)
}

func (s *handshakeFSM) handleServerCertificate(msg *handshake.MessageCertificate) ([][]byte, *alert.Alert, error) {
	// The server always authenticates; an empty chain is not an option.
	if a, err := s.verifyPeerChain(msg.Certificate, s.cfg.rootCAs, s.cfg.serverName); err != nil {
		return nil, a, err
	}
	s.certVerifyPending = true

	return nil, nil, nil
}

func (s *handshakeFSM) handleServerCertificateVerify(
	msg *handshake.MessageCertificateVerify, preHash []byte,
) ([][]byte, *alert.Alert, error) {
	err := verifyTranscriptSignature(preHash, msg.Algorithm, msg.Signature, s.state.peerCertificates[0])
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
	}
	s.certVerifyPending = false

	return nil, nil, s.state.transition(HandshakeAwaitingPeerFinished)
}

func (s *handshakeFSM) handleServerFinished(msg *handshake.MessageFinished, preHash []byte) ([][]byte, *alert.Alert, error) {
	if s.certVerifyPending {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.UnexpectedMessage}, errUnexpectedMessage
	}

	suite := s.state.cipherSuite
	finishedKey, err := s.state.schedule.FinishedKey(false, preHash)
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}
	if err := checkVerifyData(suite.HashFunc(), finishedKey, preHash, msg.VerifyData); err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, err
	}

	flight, a, err := s.clientFinalFlight()
	if err != nil {
		return nil, a, err
	}

	if err := s.establish(); err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}

	return flight, nil, nil
}

// clientFinalFlight answers the server's flight: the client's certificate
// (possibly empty), proof of possession when one was sent, and the client
// Finished binding the whole transcript.
func (s *handshakeFSM) clientFinalFlight() ([][]byte, *alert.Alert, error) {
	internalErr := &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}

	var rawChain [][]byte
	if len(s.cfg.localCertificates) > 0 {
		rawChain = s.cfg.localCertificates[0].Certificate
	}

	flight, err := s.appendOutbound(nil, &handshake.MessageCertificate{Certificate: rawChain})
	if err != nil {
		return nil, internalErr, err
	}

	if len(rawChain) > 0 {
		signer, ok := s.cfg.localCertificates[0].PrivateKey.(crypto.Signer)
		if !ok {
			return nil, internalErr, errInvalidPrivateKey
		}
		alg, sig, err := generateTranscriptSignature(s.state.transcriptHash(), signer)
		if err != nil {
			return nil, internalErr, err
		}

		flight, err = s.appendOutbound(flight, &handshake.MessageCertificateVerify{Algorithm: alg, Signature: sig})
		if err != nil {
			return nil, internalErr, err
		}
	}

	finishedKey, err := s.state.schedule.FinishedKey(true, s.state.transcriptHash())
	if err != nil {
		return nil, internalErr, err
	}
	verifyData := computeVerifyData(s.state.cipherSuite.HashFunc(), finishedKey, s.state.transcriptHash())

	flight, err = s.appendOutbound(flight, &handshake.MessageFinished{VerifyData: verifyData})
	if err != nil {
		return nil, internalErr, err
	}

	return flight, nil, nil
}
