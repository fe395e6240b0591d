// ABOUTME: TCP transport for the Snapcast control channel
// ABOUTME: Dials once per Open, pumps raw chunks to a handler from one read goroutine
package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harper/snapmeta/internal/domain"
)

const defaultReadBufferSize = 64 * 1024

var errAlreadyOpen = errors.New("transport already open")

type TCPConfig struct {
	Addr           string
	DialTimeout    time.Duration // zero means no dial timeout
	ReadBufferSize int
}

// TCP is a single-use socket: one Open, one Close. The client builds a fresh
// one for every connection attempt.
type TCP struct {
	cfg     TCPConfig
	handler domain.TransportHandler

	mu      sync.Mutex
	conn    net.Conn
	done    chan struct{}
	closing atomic.Bool
}

func NewTCP(cfg TCPConfig, h domain.TransportHandler) *TCP {
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = defaultReadBufferSize
	}
	return &TCP{cfg: cfg, handler: h}
}

// Factory returns a domain.TransportFactory producing TCP transports.
func Factory(dialTimeout time.Duration) domain.TransportFactory {
	return func(addr string, h domain.TransportHandler) domain.Transport {
		return NewTCP(TCPConfig{Addr: addr, DialTimeout: dialTimeout}, h)
	}
}

func (t *TCP) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return &domain.TransportError{Op: "dial", Addr: t.cfg.Addr, Err: errAlreadyOpen}
	}

	d := net.Dialer{Timeout: t.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.cfg.Addr)
	if err != nil {
		return &domain.TransportError{Op: "dial", Addr: t.cfg.Addr, Err: err}
	}

	t.conn = conn
	t.done = make(chan struct{})
	go t.readLoop(conn, t.done)

	return nil
}

// Close releases the socket and waits for the read goroutine to exit.
// Closing a transport that was never opened, or already closed, is a no-op.
// It must not be called from inside a handler callback.
func (t *TCP) Close() error {
	t.mu.Lock()
	conn, done := t.conn, t.done
	t.conn = nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}

	t.closing.Store(true)
	err := conn.Close()
	<-done

	if err != nil && !errors.Is(err, net.ErrClosed) {
		return &domain.TransportError{Op: "close", Addr: t.cfg.Addr, Err: err}
	}
	return nil
}

func (t *TCP) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)
	defer t.handler.HandleClose()

	buf := make([]byte, t.cfg.ReadBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			t.handler.HandleData(chunk)
		}

		if err != nil {
			if t.closing.Load() {
				return
			}
			conn.Close()
			if errors.Is(err, io.EOF) {
				err = domain.ErrConnectionClosed
			}
			t.handler.HandleError(&domain.TransportError{Op: "read", Addr: t.cfg.Addr, Err: err})
			return
		}
	}
}
