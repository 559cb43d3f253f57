package transport

import (
	"bytes"
	"context"
	"fmt"
)

// Exchange handles one in-process flush: it receives the outbound payload
// and returns the response bytes. The request slice is only valid for the
// duration of the call.
type Exchange func(ctx context.Context, request []byte) ([]byte, error)

// MemoryTransport is the in-process loopback variant of Transport. Each
// non-empty Flush hands the outbound buffer to an Exchange function and
// appends the result to the inbound buffer. The default exchange echoes the
// payload back, which makes MemoryTransport a drop-in test double for
// round-tripping an RPC layer without a network.
//
// MemoryTransport is not safe for concurrent use; see the package comment.
type MemoryTransport struct {
	exchange Exchange

	outbound bytes.Buffer
	inbound  bytes.Buffer
	closed   bool
}

// NewMemoryTransport creates a loopback transport. A nil exchange echoes
// each flushed payload back into the inbound buffer.
func NewMemoryTransport(exchange Exchange) *MemoryTransport {
	if exchange == nil {
		exchange = func(_ context.Context, request []byte) ([]byte, error) {
			out := make([]byte, len(request))
			copy(out, request)
			return out, nil
		}
	}
	return &MemoryTransport{exchange: exchange}
}

// Write appends p to the outbound buffer.
func (t *MemoryTransport) Write(p []byte) (int, error) {
	if t.closed {
		return 0, ErrClosed
	}
	return t.outbound.Write(p)
}

// Read drains up to len(p) bytes from the front of the inbound buffer.
// Returns io.EOF when the inbound buffer is empty.
func (t *MemoryTransport) Read(p []byte) (int, error) {
	if t.closed {
		return 0, ErrClosed
	}
	return t.inbound.Read(p)
}

// Flush hands the outbound buffer to the exchange function. An empty buffer
// is a no-op. On exchange failure the outbound buffer is retained and an
// *IOError is returned.
func (t *MemoryTransport) Flush(ctx context.Context) error {
	if t.closed {
		return ErrClosed
	}
	if t.outbound.Len() == 0 {
		return nil
	}

	response, err := t.exchange(ctx, t.outbound.Bytes())
	if err != nil {
		return &IOError{Err: fmt.Errorf("exchange: %w", err)}
	}

	t.inbound.Write(response)
	t.outbound.Reset()
	return nil
}

// Close flushes pending outbound data best-effort and marks the transport
// closed. Idempotent.
func (t *MemoryTransport) Close() error {
	if t.closed {
		return nil
	}
	_ = t.Flush(context.Background())
	t.closed = true
	return nil
}

// Compile-time check that MemoryTransport implements the Transport interface.
var _ Transport = (*MemoryTransport)(nil)
