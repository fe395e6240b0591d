// ABOUTME: Domain interfaces for dependency inversion
// ABOUTME: Lets the control client depend on a transport abstraction, not a socket
package domain

import "context"

// TransportHandler receives socket events. Calls arrive from a single
// goroutine, in arrival order.
type TransportHandler interface {
	HandleData(chunk []byte)
	HandleError(err error)
	HandleClose()
}

// Transport owns one connection to the remote server.
type Transport interface {
	// Open dials and blocks until the socket is ready or the dial fails.
	Open(ctx context.Context) error
	// Close releases the socket and blocks until the read side has stopped.
	Close() error
}

// TransportFactory builds a transport for addr that reports to h.
type TransportFactory func(addr string, h TransportHandler) Transport
