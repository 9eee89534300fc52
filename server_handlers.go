package seal

import (
	"crypto"

	"github.com/sealproto/seal/pkg/crypto/elliptic"
	"github.com/sealproto/seal/pkg/crypto/keyschedule"
	"github.com/sealproto/seal/pkg/protocol"
	"github.com/sealproto/seal/pkg/protocol/alert"
	"github.com/sealproto/seal/pkg/protocol/handshake"
)

func (s *handshakeFSM) serverAdvance(hs *handshake.Handshake, preHash []byte) ([][]byte, *alert.Alert, error) {
	switch s.state.handshakeState { //nolint:exhaustive // Start/Established/Failed rejected by advance
	case HandshakeAwaitingPeerHello:
		if msg, ok := hs.Message.(*handshake.MessageClientHello); ok {
			return s.handleClientHello(msg)
		}
	case HandshakeAwaitingPeerCertificate:
		if msg, ok := hs.Message.(*handshake.MessageCertificate); ok && s.state.peerCertificates == nil {
			return s.handleClientCertificate(msg)
		}
		if msg, ok := hs.Message.(*handshake.MessageCertificateVerify); ok && s.certVerifyPending {
			return s.handleClientCertificateVerify(msg, preHash)
		}
	case HandshakeAwaitingPeerFinished:
		if msg, ok := hs.Message.(*handshake.MessageFinished); ok {
			return s.handleClientFinished(msg, preHash)
		}
	}

	return nil, &alert.Alert{Level: alert.Fatal, Description: alert.UnexpectedMessage}, errUnexpectedMessage
}

func (s *handshakeFSM) handleClientHello(msg *handshake.MessageClientHello) ([][]byte, *alert.Alert, error) {
	internalErr := &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}

	if !protocol.IsSupported(msg.Version) {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.ProtocolVersion}, errUnsupportedProtocolVersion
	}

	// Our ordered preference decides; the first suite the client also
	// offers wins. No overlap is fatal.
	suite, ok := findMatchingCipherSuite(s.cfg.localCipherSuites, msg.CipherSuiteIDs)
	if !ok {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InsufficientSecurity}, ErrNoCommonCipherSuite
	}
	s.state.cipherSuite = suite

	if _, ok := elliptic.Curves()[msg.KeyShareCurve]; !ok {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errInvalidNamedCurve
	}

	s.state.remoteRandom = msg.Random
	s.state.remoteShare = msg.KeyShare

	if err := s.state.localRandom.Populate(); err != nil {
		return nil, internalErr, err
	}
	keypair, err := elliptic.GenerateKeypair(msg.KeyShareCurve)
	if err != nil {
		return nil, internalErr, err
	}
	s.state.localKeypair = keypair

	sharedSecret, err := keypair.SharedSecret(msg.KeyShare)
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, err
	}
	schedule, err := keyschedule.New(suite.HashFunc(), sharedSecret)
	for i := range sharedSecret {
		sharedSecret[i] = 0
	}
	if err != nil {
		return nil, internalErr, err
	}
	s.state.schedule = schedule

	flight, a, err := s.serverFlight()
	if err != nil {
		return nil, a, err
	}

	return flight, nil, s.state.transition(HandshakeAwaitingPeerCertificate)
}

// serverFlight is everything the server has to say: its hello and key
// share, its chain, proof of possession, and a Finished binding the
// transcript so far.
func (s *handshakeFSM) serverFlight() ([][]byte, *alert.Alert, error) {
	internalErr := &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}

	flight, err := s.appendOutbound(nil, &handshake.MessageServerHello{
		Version:       protocol.Version1_0,
		Random:        s.state.localRandom,
		KeyShareCurve: s.state.localKeypair.Curve,
		KeyShare:      s.state.localKeypair.PublicKey,
		CipherSuiteID: uint16(s.state.cipherSuite.ID()),
	})
	if err != nil {
		return nil, internalErr, err
	}

	cert := s.cfg.localCertificates[0]
	flight, err = s.appendOutbound(flight, &handshake.MessageCertificate{Certificate: cert.Certificate})
	if err != nil {
		return nil, internalErr, err
	}

	signer, ok := cert.PrivateKey.(crypto.Signer)
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

	finishedKey, err := s.state.schedule.FinishedKey(false, s.state.transcriptHash())
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

func (s *handshakeFSM) handleClientCertificate(msg *handshake.MessageCertificate) ([][]byte, *alert.Alert, error) {
	if len(msg.Certificate) == 0 {
		if s.cfg.clientAuth >= RequireAnyClientCert {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, errNoCertificate
		}

		// Anonymous client; no CertificateVerify will follow.
		return nil, nil, s.state.transition(HandshakeAwaitingPeerFinished)
	}

	if s.cfg.clientAuth == RequireAndVerifyClientCert {
		if a, err := s.verifyPeerChain(msg.Certificate, s.cfg.clientCAs, ""); err != nil {
			return nil, a, err
		}
	} else {
		chain, err := loadCerts(msg.Certificate)
		if err != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
		}
		s.state.peerCertificates = chain
		if s.cfg.verifyPeerCertificate != nil {
			if err := s.cfg.verifyPeerCertificate(msg.Certificate, chain); err != nil {
				return nil, &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
			}
		}
	}
	s.certVerifyPending = true

	return nil, nil, nil
}

func (s *handshakeFSM) handleClientCertificateVerify(
	msg *handshake.MessageCertificateVerify, preHash []byte,
) ([][]byte, *alert.Alert, error) {
	err := verifyTranscriptSignature(preHash, msg.Algorithm, msg.Signature, s.state.peerCertificates[0])
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
	}
	s.certVerifyPending = false

	return nil, nil, s.state.transition(HandshakeAwaitingPeerFinished)
}

func (s *handshakeFSM) handleClientFinished(msg *handshake.MessageFinished, preHash []byte) ([][]byte, *alert.Alert, error) {
	if s.certVerifyPending {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.UnexpectedMessage}, errUnexpectedMessage
	}

	suite := s.state.cipherSuite
	finishedKey, err := s.state.schedule.FinishedKey(true, preHash)
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}
	if err := checkVerifyData(suite.HashFunc(), finishedKey, preHash, msg.VerifyData); err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, err
	}

	if err := s.establish(); err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}

	return nil, nil, nil
}
