// ABOUTME: Snapcast control client facade with single-slot subscriptions
// ABOUTME: Owns the transport lifecycle and feeds chunks through decoder and router
package snapmeta

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/harper/snapmeta/internal/domain"
	"github.com/harper/snapmeta/internal/domain/notification"
	"github.com/harper/snapmeta/internal/infrastructure/frame"
	"github.com/harper/snapmeta/internal/infrastructure/transport"
)

// DefaultPort is the Snapcast JSON-RPC control port.
const DefaultPort = 1705

type Option func(*Client)

// WithPort overrides the control port. Zero keeps DefaultPort.
func WithPort(port int) Option {
	return func(c *Client) {
		if port != 0 {
			c.port = port
		}
	}
}

func WithFraming(mode frame.Mode) Option {
	return func(c *Client) { c.framing = mode }
}

func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) { c.newTransport = transport.Factory(d) }
}

// WithTransport replaces the TCP transport, mainly for tests.
func WithTransport(f domain.TransportFactory) Option {
	return func(c *Client) { c.newTransport = f }
}

// Client listens for stream notifications from one Snapcast server. It never
// issues RPC calls of its own and never reconnects on its own.
//
// Callbacks run on the transport's read goroutine, one at a time in arrival
// order. A slow callback delays the next notification.
type Client struct {
	host    string
	port    int
	framing frame.Mode

	subs         *notification.Subscriptions
	router       *notification.Router
	newTransport domain.TransportFactory

	mu        sync.Mutex
	state     State
	transport domain.Transport
	decoder   frame.Decoder
}

func New(host string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(host) == "" {
		return nil, domain.InvalidArgument("missing Snapserver host")
	}

	subs := &notification.Subscriptions{}
	c := &Client{
		host:         host,
		port:         DefaultPort,
		framing:      frame.ModeChunk,
		subs:         subs,
		router:       notification.NewRouter(subs),
		newTransport: transport.Factory(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Host() string { return c.host }

func (c *Client) Port() int { return c.port }

func (c *Client) Addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscriptions exposes the callback slots.
func (c *Client) Subscriptions() *notification.Subscriptions { return c.subs }

// On registers callback for one of "error", "data" or "status", replacing
// any previous callback for that event.
func (c *Client) On(event notification.Event, callback any) error {
	return c.subs.Set(event, callback)
}

func (c *Client) OnError(fn func(error)) {
	c.subs.SetError(fn)
}

func (c *Client) OnData(fn func(notification.Metadata)) {
	c.subs.SetData(fn)
}

func (c *Client) OnStatus(fn func(string)) {
	c.subs.SetStatus(fn)
}

// Open connects to the server and blocks until the socket is ready. A dial
// failure is returned as a *domain.TransportError and also delivered to the
// error callback. Calling Open while a connection is in flight or open fails
// with domain.ErrInvalidState.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.canOpen() {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: open while %s", domain.ErrInvalidState, state)
	}
	c.state = StateConnecting
	c.decoder = frame.New(c.framing)
	t := c.newTransport(c.Addr(), c)
	c.transport = t
	c.mu.Unlock()

	if err := t.Open(ctx); err != nil {
		c.mu.Lock()
		c.state = StateErrored
		c.transport = nil
		c.mu.Unlock()
		c.subs.EmitError(err)
		return err
	}

	c.mu.Lock()
	// The read loop may already have failed the connection.
	if c.state == StateConnecting {
		c.state = StateOpen
	}
	c.mu.Unlock()
	return nil
}

// Close shuts the socket down and blocks until it is released. Closing a
// client that is unopened, closed or errored succeeds without doing
// anything. Close must not be called from inside a callback.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state.settled() {
		c.mu.Unlock()
		return nil
	}
	if c.state != StateOpen {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: close while %s", domain.ErrInvalidState, state)
	}
	c.state = StateClosing
	t := c.transport
	c.mu.Unlock()

	err := t.Close()

	c.mu.Lock()
	c.transport = nil
	if err != nil {
		c.state = StateErrored
	} else {
		c.state = StateClosed
	}
	c.mu.Unlock()

	if err != nil {
		c.subs.EmitError(err)
	}
	return err
}

// HandleData implements domain.TransportHandler.
func (c *Client) HandleData(chunk []byte) {
	c.mu.Lock()
	dec := c.decoder
	c.mu.Unlock()

	docs, err := dec.Decode(chunk)
	for _, doc := range docs {
		c.router.Route(doc)
	}
	if err != nil {
		c.subs.EmitError(err)
	}
}

// HandleError implements domain.TransportHandler. Errors racing with a
// caller-initiated Close are dropped.
func (c *Client) HandleError(err error) {
	c.mu.Lock()
	if c.state == StateClosing || c.state.settled() {
		c.mu.Unlock()
		return
	}
	c.state = StateErrored
	c.mu.Unlock()

	c.subs.EmitError(err)
}

// HandleClose implements domain.TransportHandler. Lifecycle transitions are
// driven by Close and HandleError, so there is nothing left to record here.
func (c *Client) HandleClose() {}
