package seal

import (
	"crypto/tls"
	"crypto/x509"
	"time"

	"github.com/pion/logging"

	"github.com/sealproto/seal/pkg/protocol/alert"
	"github.com/sealproto/seal/pkg/protocol/handshake"
)

// The handshake walks a fixed, monotonic sequence; each transition
// validates the incoming message and folds it into the transcript hash.
//
//	Start
//	  |  send/await hello
//	AwaitingPeerHello
//	  |  negotiate suite, run key agreement
//	AwaitingPeerCertificate
//	  |  authenticate the peer
//	AwaitingPeerFinished
//	  |  bind the transcript
//	Established
//
// Any structural or sequencing violation drops into the terminal Failed
// state and the connection is torn down.

type handshakeConfig struct {
	localCipherSuites  []CipherSuite // ordered preference, most preferred first
	localCertificates  []tls.Certificate
	serverName         string
	rootCAs            []*x509.Certificate
	clientCAs          []*x509.Certificate
	clientAuth         ClientAuthType
	insecureSkipVerify bool

	verifyPeerCertificate func(rawCerts [][]byte, chain []*x509.Certificate) error

	log logging.LeveledLogger
}

// handshakeFSM drives one side of the negotiation. It performs no I/O:
// begin and advance return the raw handshake messages to put on the wire,
// and the Conn moves the bytes.
type handshakeFSM struct {
	state *State
	cfg   *handshakeConfig

	// handshake-phase mutation is serialized by the Conn: both directions
	// feed the same transcript, so advance is never called concurrently.

	// certVerifyPending is set between a non-empty peer Certificate and the
	// CertificateVerify that proves possession of its key.
	certVerifyPending bool
}

func srvCliStr(isClient bool) string {
	if isClient {
		return "client"
	}

	return "server"
}

func newHandshakeFSM(state *State, cfg *handshakeConfig) *handshakeFSM {
	return &handshakeFSM{state: state, cfg: cfg}
}

// begin performs the Start transition. The client emits its ClientHello;
// the server emits nothing and settles in to wait for one. Both sides
// leave Start for AwaitingPeerHello.
func (s *handshakeFSM) begin() ([][]byte, *alert.Alert, error) {
	var flight [][]byte

	if s.state.isClient {
		raws, a, err := s.clientBegin()
		if err != nil {
			return nil, a, s.fail(err)
		}
		flight = raws
	}

	if err := s.state.transition(HandshakeAwaitingPeerHello); err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, s.fail(err)
	}
	s.cfg.log.Tracef("[handshake:%s] Start -> %s", srvCliStr(s.state.isClient), s.state.handshakeState)

	return flight, nil, nil
}

// advance feeds one received handshake message (header included) into the
// state machine and returns the flight to send in response, if any. The
// incoming message joins the transcript after its pre-image hash is
// captured, so signature and verify-data checks cover everything up to but
// not including the message that carries them.
func (s *handshakeFSM) advance(raw []byte) ([][]byte, *alert.Alert, error) {
	if s.state.handshakeState == HandshakeFailed || s.state.handshakeState == HandshakeEstablished {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.UnexpectedMessage},
			s.fail(errUnexpectedMessage)
	}

	hs := &handshake.Handshake{}
	if err := hs.Unmarshal(raw); err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.DecodeError}, s.fail(err)
	}

	preHash := s.state.transcriptHash()
	s.state.writeTranscript(raw)

	before := s.state.handshakeState

	var (
		flight [][]byte
		a      *alert.Alert
		err    error
	)
	if s.state.isClient {
		flight, a, err = s.clientAdvance(hs, preHash)
	} else {
		flight, a, err = s.serverAdvance(hs, preHash)
	}
	if err != nil {
		return nil, a, s.fail(err)
	}

	if after := s.state.handshakeState; after != before {
		s.cfg.log.Tracef("[handshake:%s] %s -> %s", srvCliStr(s.state.isClient), before, after)
	}

	return flight, nil, nil
}

// fail enters the terminal state. Every error path funnels through here so
// a failed handshake can never be advanced further.
func (s *handshakeFSM) fail(err error) error {
	_ = s.state.transition(HandshakeFailed)
	if s.state.schedule != nil {
		s.state.schedule.Zero()
	}
	s.cfg.log.Tracef("[handshake:%s] -> Failed (%v)", srvCliStr(s.state.isClient), err)

	return err
}

// appendOutbound marshals a message, folds it into the transcript and adds
// it to the outgoing flight. Outbound and inbound messages share one
// transcript, in wire order.
func (s *handshakeFSM) appendOutbound(flight [][]byte, msg handshake.Message) ([][]byte, error) {
	hs := &handshake.Handshake{Message: msg}
	raw, err := hs.Marshal()
	if err != nil {
		return nil, err
	}
	s.state.writeTranscript(raw)

	return append(flight, raw), nil
}

// establish derives the traffic keys from the full transcript, readies the
// record protection and freezes the negotiated parameters.
func (s *handshakeFSM) establish() error {
	suite := s.state.cipherSuite
	if err := s.state.schedule.DeriveTrafficKeys(s.state.transcriptHash(), suite.KeyLen(), suite.IVLen()); err != nil {
		return err
	}
	if err := suite.Init(s.state.schedule, s.state.isClient); err != nil {
		return err
	}

	return s.state.transition(HandshakeEstablished)
}

// verifyPeerChain runs the certificate checks for the received chain:
// linkage, validity window, identity, anchoring, then the caller's hook.
func (s *handshakeFSM) verifyPeerChain(rawCerts [][]byte, anchors []*x509.Certificate, expectedName string) (*alert.Alert, error) {
	chain, err := loadCerts(rawCerts)
	if err != nil {
		return &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
	}
	s.state.peerCertificates = chain

	if !s.cfg.insecureSkipVerify {
		if err := verifyChain(chain, anchors, expectedName, time.Now()); err != nil {
			return &alert.Alert{Level: alert.Fatal, Description: alertForCertificateError(err)}, err
		}
		s.state.peerCertsVerified = true
	}

	if s.cfg.verifyPeerCertificate != nil {
		if err := s.cfg.verifyPeerCertificate(rawCerts, chain); err != nil {
			return &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
		}
	}

	return nil, nil
}

func alertForCertificateError(err error) alert.Description {
	switch err { //nolint:errorlint // sentinels, returned unwrapped
	case ErrCertificateExpired:
		return alert.CertificateExpired
	case ErrUntrustedRoot:
		return alert.UnknownCA
	case ErrHostnameMismatch, ErrBrokenChain:
		return alert.BadCertificate
	default:
		return alert.CertificateUnknown
	}
}
