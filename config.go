package seal

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/tls"
	"crypto/x509"
	"time"

	"github.com/pion/logging"
)

const defaultConnectTimeout = 30 * time.Second

// Config is used to configure a SEAL client or server.
// After a Config is passed to a SEAL function it must not be modified.
type Config struct {
	// Certificates contains the certificate chain to present to the other
	// side of the connection, leaf first, with the matching private key.
	// A server MUST set this; a client needs it only when the server
	// requires client authentication.
	Certificates []tls.Certificate

	// CipherSuites is the ordered preference list of enabled suites, most
	// preferred first. A nil value uses the implementation's default list.
	CipherSuites []CipherSuiteID

	// ServerName is the name the client expects the server's leaf
	// certificate to be valid for. Required on the client unless
	// InsecureSkipVerify is set; ignored on the server.
	ServerName string

	// RootCAs is the set of trust anchors the client validates the server's
	// chain against. Loaded once when the Conn is opened and immutable for
	// that Conn's lifetime. A nil value fails every chain, so clients that
	// verify must supply anchors.
	RootCAs []*x509.Certificate

	// ClientCAs is the set of trust anchors the server validates client
	// chains against when ClientAuth is RequireAndVerifyClientCert.
	ClientCAs []*x509.Certificate

	// ClientAuth declares the policy the server will follow for client
	// authentication. The default is NoClientCert.
	ClientAuth ClientAuthType

	// InsecureSkipVerify disables chain and hostname validation of the
	// peer's certificate. For testing only.
	InsecureSkipVerify bool

	// VerifyPeerCertificate, if set, is called after normal verification
	// with the peer's raw chain. Returning an error aborts the handshake.
	VerifyPeerCertificate func(rawCerts [][]byte, chain []*x509.Certificate) error

	// MaxRecordSize caps the payload of a single record, in both
	// directions. Zero means DefaultMaxRecordSize. A peer declaring a
	// larger record is treated as hostile.
	MaxRecordSize int

	// ConnectContextMaker supplies the context that bounds the handshake.
	// The default allows 30 seconds.
	ConnectContextMaker func() (context.Context, func())

	// LoggerFactory any logging.LoggerFactory; the default writes to
	// standard error.
	LoggerFactory logging.LoggerFactory
}

// DefaultMaxRecordSize is the record payload cap used when the Config
// leaves MaxRecordSize zero.
const DefaultMaxRecordSize = 16 * 1024

// ClientAuthType declares the policy the server will follow for client
// authentication.
type ClientAuthType int

// ClientAuthType enums.
const (
	NoClientCert ClientAuthType = iota
	RequestClientCert
	RequireAnyClientCert
	RequireAndVerifyClientCert
)

func (c *Config) connectContextMaker() (context.Context, func()) {
	if c.ConnectContextMaker != nil {
		return c.ConnectContextMaker()
	}

	return context.WithTimeout(context.Background(), defaultConnectTimeout)
}

func (c *Config) maxRecordSize() int {
	if c.MaxRecordSize > 0 {
		return c.MaxRecordSize
	}

	return DefaultMaxRecordSize
}

func validateConfig(config *Config, isClient bool) error {
	switch {
	case config == nil:
		return errNoConfigProvided
	case !isClient && len(config.Certificates) == 0:
		return errServerMustHaveCertificate
	case isClient && config.ServerName == "" && !config.InsecureSkipVerify:
		return errServerNameRequired
	}

	for _, cert := range config.Certificates {
		if cert.PrivateKey == nil {
			continue
		}
		switch cert.PrivateKey.(type) {
		case ed25519.PrivateKey:
		case *ecdsa.PrivateKey:
		default:
			return errInvalidPrivateKey
		}
	}

	_, err := parseCipherSuites(config.CipherSuites)

	return err
}
