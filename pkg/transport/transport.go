// Package transport provides buffered byte transports for RPC serialization
// layers. A transport exposes a plain byte-stream contract (write, read,
// flush, close) and hides the mechanics of the underlying exchange: the HTTP
// variant turns accumulated outbound bytes into a single POST per flush, the
// socket variant writes them to a TCP connection, and the memory variant
// loops them back in-process.
//
// Transports are not safe for concurrent use. All operations on one instance
// must be serialized through a single owner (one goroutine, or an actor-style
// loop that processes operations in arrival order). Each instance is
// independent; no package-level state is shared between them.
package transport

import (
	"context"
	"io"
)

// Transport is the byte-stream capability consumed by an RPC encoding layer.
// Write buffers outbound bytes without performing I/O. Flush converts the
// buffered bytes into one exchange and makes the response available to Read.
// Read drains received bytes from the front of the inbound buffer; it may
// return fewer bytes than requested and returns io.EOF when nothing is
// buffered. Close performs a best-effort final flush and releases the
// transport; all later operations fail with ErrClosed.
type Transport interface {
	io.ReadWriteCloser

	// Flush sends the buffered outbound bytes as a single exchange.
	// Flushing an empty buffer is a no-op and performs no I/O.
	Flush(ctx context.Context) error
}

// Header is a single name/value pair attached to outbound exchanges.
// Headers are applied in slice order.
type Header struct {
	Name  string
	Value string
}
