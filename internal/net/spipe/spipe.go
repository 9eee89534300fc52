// Package spipe provides an in-memory duplex byte-stream pipe with
// deadline support, used to exercise connections in tests without sockets.
package spipe

import (
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/pion/transport/v3/deadline"
)

const chunkBacklog = 1000

// Pipe creates a pair of stream conns on memory. Unlike net.Pipe the two
// ends are buffered, so a write completes without a concurrent read on the
// other side.
func Pipe() (net.Conn, net.Conn) {
	ch0 := make(chan []byte, chunkBacklog)
	ch1 := make(chan []byte, chunkBacklog)
	closed0 := make(chan struct{})
	closed1 := make(chan struct{})

	return &conn{
			rCh: ch0, wCh: ch1,
			localClosed: closed0, remoteClosed: closed1,
			readDeadline:  deadline.New(),
			writeDeadline: deadline.New(),
		}, &conn{
			rCh: ch1, wCh: ch0,
			localClosed: closed1, remoteClosed: closed0,
			readDeadline:  deadline.New(),
			writeDeadline: deadline.New(),
		}
}

type pipeAddr struct{}

func (pipeAddr) Network() string { return "spipe" }
func (pipeAddr) String() string  { return "spipe" }

type conn struct {
	rCh chan []byte
	wCh chan []byte

	localClosed  chan struct{}
	remoteClosed chan struct{}
	closeOnce    sync.Once

	readMu   sync.Mutex
	leftover []byte

	readDeadline  *deadline.Deadline
	writeDeadline *deadline.Deadline
}

func (*conn) LocalAddr() net.Addr  { return pipeAddr{} }
func (*conn) RemoteAddr() net.Addr { return pipeAddr{} }

func (c *conn) SetDeadline(t time.Time) error {
	c.readDeadline.Set(t)
	c.writeDeadline.Set(t)

	return nil
}

func (c *conn) SetReadDeadline(t time.Time) error {
	c.readDeadline.Set(t)

	return nil
}

func (c *conn) SetWriteDeadline(t time.Time) error {
	c.writeDeadline.Set(t)

	return nil
}

func (c *conn) Read(data []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	if len(c.leftover) > 0 {
		n := copy(data, c.leftover)
		c.leftover = c.leftover[n:]

		return n, nil
	}

	select {
	case <-c.localClosed:
		return 0, io.ErrClosedPipe
	case <-c.readDeadline.Done():
		return 0, os.ErrDeadlineExceeded
	default:
	}

	select {
	case chunk := <-c.rCh:
		n := copy(data, chunk)
		c.leftover = chunk[n:]

		return n, nil
	case <-c.localClosed:
		return 0, io.ErrClosedPipe
	case <-c.remoteClosed:
		// The writer is gone; drain whatever it buffered first.
		select {
		case chunk := <-c.rCh:
			n := copy(data, chunk)
			c.leftover = chunk[n:]

			return n, nil
		default:
			return 0, io.EOF
		}
	case <-c.readDeadline.Done():
		return 0, os.ErrDeadlineExceeded
	}
}

func (c *conn) Write(data []byte) (int, error) {
	chunk := make([]byte, len(data))
	copy(chunk, data)

	select {
	case <-c.localClosed:
		return 0, io.ErrClosedPipe
	case <-c.remoteClosed:
		return 0, io.ErrClosedPipe
	case <-c.writeDeadline.Done():
		return 0, os.ErrDeadlineExceeded
	default:
	}

	select {
	case <-c.localClosed:
		return 0, io.ErrClosedPipe
	case <-c.remoteClosed:
		return 0, io.ErrClosedPipe
	case <-c.writeDeadline.Done():
		return 0, os.ErrDeadlineExceeded
	case c.wCh <- chunk:
		return len(data), nil
	}
}

func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.localClosed)
	})

	return nil
}
