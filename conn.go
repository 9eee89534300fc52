package seal

import (
	"crypto/sha256"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/logging"
	"github.com/pion/transport/v3/deadline"

	"github.com/sealproto/seal/pkg/crypto/ciphersuite"
	"github.com/sealproto/seal/pkg/protocol"
	"github.com/sealproto/seal/pkg/protocol/alert"
	"github.com/sealproto/seal/pkg/protocol/handshake"
	"github.com/sealproto/seal/pkg/protocol/recordlayer"
)

const recvScratchSize = 8192

// Conn represents a SEAL connection over a reliable byte-stream transport.
// One reader and one writer may use a Conn concurrently; the handshake
// itself is serialized internally because both directions feed the same
// transcript.
type Conn struct {
	nextConn net.Conn
	log      logging.LeveledLogger

	state         State
	maxRecordSize int
	recvLimit     int

	// readBuf reassembles records from the stream. Owned by the handshake
	// until Established, by the inbound loop after.
	readBuf        []byte
	recvScratch    []byte
	handshakeQueue [][]byte

	decrypted chan any // []byte or error, pulled by Read

	readMu   sync.Mutex
	leftover []byte

	writeMu sync.Mutex

	readDeadline  *deadline.Deadline
	writeDeadline *deadline.Deadline

	closed    chan struct{}
	closeOnce sync.Once
	connErr   atomic.Value // struct{ error }
}

// Client establishes a SEAL connection over an existing stream conn,
// acting as the initiator. It blocks until the handshake completes or
// fails; the returned Conn is always Established.
func Client(nextConn net.Conn, config *Config) (*Conn, error) {
	return createConn(nextConn, config, true)
}

// Server establishes a SEAL connection over an existing stream conn,
// acting as the responder.
func Server(nextConn net.Conn, config *Config) (*Conn, error) {
	return createConn(nextConn, config, false)
}

func createConn(nextConn net.Conn, config *Config, isClient bool) (*Conn, error) {
	if nextConn == nil {
		return nil, errNilNextConn
	}
	if err := validateConfig(config, isClient); err != nil {
		return nil, err
	}

	cipherSuites, err := parseCipherSuites(config.CipherSuites)
	if err != nil {
		return nil, err
	}

	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	conn := &Conn{
		nextConn:      nextConn,
		log:           loggerFactory.NewLogger("seal"),
		maxRecordSize: config.maxRecordSize(),
		recvLimit:     config.maxRecordSize() + ciphersuite.MaxOverhead,
		recvScratch:   make([]byte, recvScratchSize),
		decrypted:     make(chan any),
		readDeadline:  deadline.New(),
		writeDeadline: deadline.New(),
		closed:        make(chan struct{}),
		state: State{
			isClient: isClient,
			// The transcript must open before a suite is negotiated, so its
			// hash is pinned rather than suite-derived. Every implemented
			// suite hashes with SHA-256.
			transcript: sha256.New(),
		},
	}

	handshakeCfg := &handshakeConfig{
		localCipherSuites:     cipherSuites,
		localCertificates:     config.Certificates,
		serverName:            config.ServerName,
		rootCAs:               config.RootCAs,
		clientCAs:             config.ClientCAs,
		clientAuth:            config.ClientAuth,
		insecureSkipVerify:    config.InsecureSkipVerify,
		verifyPeerCertificate: config.VerifyPeerCertificate,
		log:                   conn.log,
	}

	ctx, cancel := config.connectContextMaker()
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- conn.handshake(handshakeCfg)
	}()

	select {
	case err := <-done:
		if err != nil {
			conn.stopWithError(err)

			return nil, err
		}
	case <-ctx.Done():
		// Closing the transport unblocks the in-flight read.
		hsErr := &HandshakeError{Err: ctx.Err()}
		conn.stopWithError(hsErr)
		<-done

		return nil, hsErr
	}

	go conn.inboundLoop()

	return conn, nil
}

// handshake drives the state machine to Established, moving its flights
// over the transport.
func (c *Conn) handshake(cfg *handshakeConfig) error {
	fsm := newHandshakeFSM(&c.state, cfg)

	flight, a, err := fsm.begin()
	if err != nil {
		c.notifyPlaintext(a)

		return &HandshakeError{Err: err}
	}
	if err := c.writeHandshakeFlight(flight); err != nil {
		return &HandshakeError{Err: err}
	}

	for c.state.handshakeState != HandshakeEstablished {
		raw, err := c.readHandshakeMessage()
		if err != nil {
			return &HandshakeError{Err: err}
		}

		flight, a, err := fsm.advance(raw)
		if err != nil {
			c.notifyPlaintext(a)

			return &HandshakeError{Err: err}
		}
		if err := c.writeHandshakeFlight(flight); err != nil {
			return &HandshakeError{Err: err}
		}
	}

	// A peer must not pack anything after its final flight.
	if len(c.handshakeQueue) != 0 {
		return &HandshakeError{Err: errUnexpectedMessage}
	}

	c.log.Debugf("[%s] handshake established, suite %s", srvCliStr(c.state.isClient), c.state.cipherSuite)

	return nil
}

// readRecord returns the next complete raw record from the stream,
// buffering partial reads until one is available.
func (c *Conn) readRecord() ([]byte, error) {
	for {
		raw, rest, err := recordlayer.ReadRecord(c.readBuf, c.recvLimit)
		if err == nil {
			record := append([]byte{}, raw...)
			c.readBuf = append(c.readBuf[:0], rest...)

			return record, nil
		}
		if !errors.Is(err, recordlayer.ErrIncomplete) {
			return nil, err
		}

		n, err := c.nextConn.Read(c.recvScratch)
		if err != nil {
			return nil, netError(err)
		}
		c.readBuf = append(c.readBuf, c.recvScratch[:n]...)
	}
}

// readHandshakeMessage returns the next handshake message, header
// included. Records that arrive during the handshake must carry handshake
// content; an alert aborts, anything else is a sequencing violation.
func (c *Conn) readHandshakeMessage() ([]byte, error) {
	for len(c.handshakeQueue) == 0 {
		raw, err := c.readRecord()
		if err != nil {
			return nil, err
		}

		header := &recordlayer.Header{}
		if err := header.Unmarshal(raw); err != nil {
			return nil, err
		}

		switch header.ContentType {
		case protocol.ContentTypeHandshake:
			msgs, err := handshake.Split(raw[recordlayer.HeaderSize:])
			if err != nil {
				return nil, err
			}
			c.handshakeQueue = append(c.handshakeQueue, msgs...)
		case protocol.ContentTypeAlert:
			peerAlert := &alert.Alert{}
			if err := peerAlert.Unmarshal(raw[recordlayer.HeaderSize:]); err != nil {
				return nil, err
			}

			return nil, &alertError{peerAlert}
		default:
			return nil, errUnexpectedMessage
		}
	}

	msg := c.handshakeQueue[0]
	c.handshakeQueue = c.handshakeQueue[1:]

	return msg, nil
}

// writeHandshakeFlight frames each handshake message into its own
// plaintext record and sends the flight with a single transport write.
func (c *Conn) writeHandshakeFlight(flight [][]byte) error {
	if len(flight) == 0 {
		return nil
	}

	var out []byte
	for _, msg := range flight {
		header := &recordlayer.Header{
			ContentType: protocol.ContentTypeHandshake,
			Version:     protocol.Version1_0,
			ContentLen:  uint16(len(msg)), //nolint:gosec // G115
		}
		headerRaw, err := header.Marshal()
		if err != nil {
			return err
		}
		out = append(out, headerRaw...)
		out = append(out, msg...)
	}

	if _, err := c.nextConn.Write(out); err != nil {
		return netError(err)
	}

	return nil
}

// notifyPlaintext sends a handshake-phase alert, best effort.
func (c *Conn) notifyPlaintext(a *alert.Alert) {
	if a == nil {
		return
	}

	pkt := &recordlayer.RecordLayer{
		Header:  recordlayer.Header{Version: protocol.Version1_0},
		Content: a,
	}
	raw, err := pkt.Marshal()
	if err != nil {
		return
	}
	_, _ = c.nextConn.Write(raw)
}

// inboundLoop owns the transport's read side once the connection is
// established. Every record from here on is AEAD-protected.
func (c *Conn) inboundLoop() {
	defer close(c.decrypted)

	for {
		raw, err := c.readRecord()
		if err != nil {
			c.collapse(err)

			return
		}

		if err := c.handleInboundRecord(raw); err != nil {
			c.collapse(err)

			return
		}
	}
}

// collapse tears the Conn down and makes err visible to the reader. The
// teardown happens first so a concurrent deliver can never hang.
func (c *Conn) collapse(err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		// Orderly end of stream; no partial record is ever surfaced.
		err = io.EOF
	}

	c.stopWithError(err)

	select {
	case c.decrypted <- err:
	default:
	}
}

func (c *Conn) handleInboundRecord(raw []byte) error {
	plain, err := c.state.cipherSuite.Decrypt(raw)
	if err != nil {
		// Tampering or corruption; never surface altered plaintext.
		return err
	}

	pkt := &recordlayer.RecordLayer{}
	if err := pkt.Unmarshal(plain); err != nil {
		return err
	}

	switch content := pkt.Content.(type) {
	case *alert.Alert:
		if content.Description == alert.CloseNotify {
			return io.EOF
		}

		return &alertError{content}
	case *protocol.ApplicationData:
		select {
		case c.decrypted <- content.Data:
		case <-c.closed:
			return ErrConnClosed
		}

		return nil
	case *handshake.Handshake:
		// No renegotiation; handshake content after establishment is hostile.
		return errHandshakeRecordEncrypted
	default:
		return errUnhandledContentType
	}
}

// Read reads application data from the connection. It blocks until data,
// deadline, or connection end.
func (c *Conn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	if len(c.leftover) > 0 {
		n := copy(p, c.leftover)
		c.leftover = c.leftover[n:]

		return n, nil
	}

	select {
	case <-c.readDeadline.Done():
		return 0, errDeadlineExceeded
	default:
	}

	select {
	case out, ok := <-c.decrypted:
		if !ok {
			return 0, c.connectionError()
		}
		switch data := out.(type) {
		case []byte:
			n := copy(p, data)
			c.leftover = data[n:]

			return n, nil
		case error:
			return 0, data
		default:
			return 0, errUnhandledContentType
		}
	case <-c.readDeadline.Done():
		return 0, errDeadlineExceeded
	}
}

// Write writes application data to the connection. Writing before the
// handshake reached Established fails with ErrNotReady and puts nothing on
// the transport.
func (c *Conn) Write(p []byte) (int, error) {
	select {
	case <-c.closed:
		return 0, c.connectionError()
	case <-c.writeDeadline.Done():
		return 0, errDeadlineExceeded
	default:
	}

	if c.state.handshakeState != HandshakeEstablished {
		return 0, ErrNotReady
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var out []byte
	for _, chunk := range splitBytes(p, c.maxRecordSize) {
		pkt := &recordlayer.RecordLayer{
			Header:  recordlayer.Header{Version: protocol.Version1_0},
			Content: &protocol.ApplicationData{Data: chunk},
		}
		raw, err := pkt.Marshal()
		if err != nil {
			return 0, err
		}
		protected, err := c.state.cipherSuite.Encrypt(pkt, raw)
		if err != nil {
			return 0, err
		}
		out = append(out, protected...)
	}

	if _, err := c.nextConn.Write(out); err != nil {
		return 0, netError(err)
	}

	return len(p), nil
}

// Close closes the connection, signalling the peer and erasing the
// connection's key material.
func (c *Conn) Close() error {
	c.notify(alert.Warning, alert.CloseNotify)
	c.stopWithError(ErrConnClosed)

	return nil
}

// notify sends a protected alert, best effort.
func (c *Conn) notify(level alert.Level, desc alert.Description) {
	select {
	case <-c.closed:
		return
	default:
	}
	if c.state.handshakeState != HandshakeEstablished {
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	pkt := &recordlayer.RecordLayer{
		Header:  recordlayer.Header{Version: protocol.Version1_0},
		Content: &alert.Alert{Level: level, Description: desc},
	}
	raw, err := pkt.Marshal()
	if err != nil {
		return
	}
	protected, err := c.state.cipherSuite.Encrypt(pkt, raw)
	if err != nil {
		return
	}
	_, _ = c.nextConn.Write(protected)
}

func (c *Conn) stopWithError(err error) {
	c.closeOnce.Do(func() {
		c.connErr.Store(struct{ error }{err})
		close(c.closed)

		if closeErr := c.nextConn.Close(); closeErr != nil {
			c.log.Tracef("transport close: %v", closeErr)
		}

		// Key material never outlives the connection, on any exit path.
		if c.state.schedule != nil {
			c.state.schedule.Zero()
		}
	})
}

func (c *Conn) getConnErr() error {
	err, _ := c.connErr.Load().(struct{ error })

	return err.error
}

// connectionError reports why the connection ended: io.EOF for an orderly
// remote close, the stored error otherwise.
func (c *Conn) connectionError() error {
	if err := c.getConnErr(); err != nil {
		return err
	}

	return io.EOF
}

// ConnectionState returns a snapshot of the negotiated parameters.
func (c *Conn) ConnectionState() ConnectionState {
	return ConnectionState{
		CipherSuiteID:    c.state.cipherSuite.ID(),
		PeerCertificates: c.state.peerCertificates,
		VerifiedChain:    c.state.peerCertsVerified,
	}
}

// ExportKeyingMaterial derives caller-owned key material bound to this
// connection, per the RFC 5705 shape. Labels the handshake itself consumes
// are rejected.
func (c *Conn) ExportKeyingMaterial(label string, context []byte, length int) ([]byte, error) {
	if c.state.handshakeState != HandshakeEstablished {
		return nil, ErrNotReady
	}
	if len(context) != 0 {
		return nil, errContextUnsupported
	}
	if _, reserved := reservedExportLabels()[label]; reserved {
		return nil, errReservedExportKeyingMaterial
	}

	return c.state.schedule.Export(label, nil, length)
}

// LocalAddr returns the transport's local address.
func (c *Conn) LocalAddr() net.Addr {
	return c.nextConn.LocalAddr()
}

// RemoteAddr returns the transport's remote address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.nextConn.RemoteAddr()
}

// SetDeadline sets both the read and write deadlines.
func (c *Conn) SetDeadline(t time.Time) error {
	c.readDeadline.Set(t)
	c.writeDeadline.Set(t)

	return nil
}

// SetReadDeadline sets the deadline for future Read calls.
func (c *Conn) SetReadDeadline(t time.Time) error {
	c.readDeadline.Set(t)

	return nil
}

// SetWriteDeadline sets the deadline for future Write calls.
func (c *Conn) SetWriteDeadline(t time.Time) error {
	c.writeDeadline.Set(t)

	return nil
}
