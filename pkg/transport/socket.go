package transport

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// defaultDialTimeout bounds the TCP connect for DialSocket.
const defaultDialTimeout = 10 * time.Second

// SocketTransport is the TCP variant of Transport. Writes accumulate in a
// buffered writer; Flush pushes them onto the connection in one burst and
// Read consumes response bytes directly from the connection. Unlike the HTTP
// variant there is no request/response rotation: the peer decides when to
// write back, and Read blocks on the socket.
//
// SocketTransport is not safe for concurrent use; see the package comment.
type SocketTransport struct {
	conn   net.Conn
	writer *bufio.Writer
	logger *slog.Logger
	closed bool
}

// SocketOption is a functional option for configuring a SocketTransport.
type SocketOption func(*socketConfig)

type socketConfig struct {
	dialTimeout time.Duration
	logger      *slog.Logger
}

// WithDialTimeout sets the TCP connect timeout for DialSocket.
func WithDialTimeout(d time.Duration) SocketOption {
	return func(c *socketConfig) {
		if d > 0 {
			c.dialTimeout = d
		}
	}
}

// WithSocketLogger sets the logger for the socket transport.
func WithSocketLogger(logger *slog.Logger) SocketOption {
	return func(c *socketConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// DialSocket connects to addr (host:port) and returns a buffered transport
// over the connection. Nagle's algorithm is disabled so each flush reaches
// the peer without coalescing delay.
func DialSocket(addr string, opts ...SocketOption) (*SocketTransport, error) {
	cfg := socketConfig{
		dialTimeout: defaultDialTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	conn, err := net.DialTimeout("tcp", addr, cfg.dialTimeout)
	if err != nil {
		return nil, &IOError{Err: fmt.Errorf("dial %s: %w", addr, err)}
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			_ = conn.Close()
			return nil, &IOError{Err: fmt.Errorf("set nodelay: %w", err)}
		}
	}

	return NewSocketTransport(conn, cfg.logger), nil
}

// NewSocketTransport wraps an established connection. The transport takes
// ownership of conn and closes it on Close.
func NewSocketTransport(conn net.Conn, logger *slog.Logger) *SocketTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocketTransport{
		conn:   conn,
		writer: bufio.NewWriter(conn),
		logger: logger,
	}
}

// Write appends p to the outbound buffer. No network I/O is performed until
// the buffered writer overflows or Flush is called.
func (t *SocketTransport) Write(p []byte) (int, error) {
	if t.closed {
		return 0, ErrClosed
	}
	return t.writer.Write(p)
}

// Read reads up to len(p) bytes from the connection. It blocks until the
// peer writes data, the connection closes (io.EOF), or a deadline set via
// the connection expires.
func (t *SocketTransport) Read(p []byte) (int, error) {
	if t.closed {
		return 0, ErrClosed
	}
	return t.conn.Read(p)
}

// Flush writes the buffered outbound bytes to the connection. A deadline
// from ctx, if any, is applied as the write deadline for this flush.
func (t *SocketTransport) Flush(ctx context.Context) error {
	if t.closed {
		return ErrClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetWriteDeadline(deadline); err != nil {
			return &IOError{Err: fmt.Errorf("set write deadline: %w", err)}
		}
		defer func() { _ = t.conn.SetWriteDeadline(time.Time{}) }()
	}

	if err := t.writer.Flush(); err != nil {
		return &IOError{Err: fmt.Errorf("socket flush: %w", err)}
	}
	return nil
}

// Close flushes pending outbound data best-effort and closes the connection.
// Idempotent.
func (t *SocketTransport) Close() error {
	if t.closed {
		return nil
	}
	if err := t.writer.Flush(); err != nil {
		t.logger.Warn("final flush failed on close", "remote", t.conn.RemoteAddr().String(), "error", err)
	}
	t.closed = true
	return t.conn.Close()
}

// Compile-time check that SocketTransport implements the Transport interface.
var _ Transport = (*SocketTransport)(nil)
