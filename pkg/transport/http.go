package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	// contentType is the wire content type for every flush exchange.
	contentType = "application/x-thrift"

	// defaultUserAgent identifies this adapter on outbound requests.
	// An extra header named User-Agent replaces it.
	defaultUserAgent = "bufwire-http/1.0"

	// defaultMaxResponseBytes caps the response body read per flush.
	// Prevents OOM from a misbehaving peer sending unbounded responses.
	defaultMaxResponseBytes = 16 * 1024 * 1024 // 16MB

	// defaultTimeout bounds one flush exchange when no custom HTTP client
	// is supplied.
	defaultTimeout = 30 * time.Second

	// statusSnippetLen limits how much of a non-200 response body is
	// carried in the returned error.
	statusSnippetLen = 256
)

// HTTPTransport is the buffered HTTP variant of Transport. Writes accumulate
// in an outbound buffer; each non-empty Flush sends the buffer as the body of
// exactly one POST to http://{host}{path} and appends the 200 response body
// to the inbound buffer, which Read then drains from the front.
//
// On a flush failure (non-200 status or client error) the outbound buffer is
// retained, so the caller may retry the flush with the same payload.
//
// HTTPTransport is not safe for concurrent use; see the package comment.
type HTTPTransport struct {
	url              string
	client           *http.Client
	headers          []Header
	maxResponseBytes int64
	logger           *slog.Logger
	metrics          *Metrics

	outbound bytes.Buffer
	inbound  bytes.Buffer
	closed   bool
}

// NewHTTPTransport creates a buffered HTTP transport targeting
// http://{host}{path}. The host is used literally (no scheme, port handling
// beyond what the caller embeds in it); the path is concatenated as-is.
func NewHTTPTransport(host, path string, opts ...Option) (*HTTPTransport, error) {
	if host == "" {
		return nil, &ConfigError{Option: "host", Reason: "must not be empty"}
	}
	if strings.Contains(host, "://") {
		return nil, &ConfigError{Option: "host", Reason: "must not contain a scheme"}
	}

	t := &HTTPTransport{
		url:              "http://" + host + path,
		client:           &http.Client{Timeout: defaultTimeout},
		maxResponseBytes: defaultMaxResponseBytes,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Write appends p to the outbound buffer. No I/O is performed and no size
// limit is enforced; upstream framing owns message boundaries.
func (t *HTTPTransport) Write(p []byte) (int, error) {
	if t.closed {
		return 0, ErrClosed
	}
	return t.outbound.Write(p)
}

// Read drains up to len(p) bytes from the front of the inbound buffer.
// It never blocks to fetch more data: callers needing more bytes than are
// buffered must flush again or accept the short read. Returns io.EOF when
// the inbound buffer is empty.
func (t *HTTPTransport) Read(p []byte) (int, error) {
	if t.closed {
		return 0, ErrClosed
	}
	return t.inbound.Read(p)
}

// Flush sends the outbound buffer as one HTTP POST. An empty buffer is a
// no-op: no request is made and Flush returns nil. On a 200 response the
// body is appended to the inbound buffer and the outbound buffer is cleared;
// on any other status or client failure an *IOError is returned and the
// outbound buffer is left untouched.
func (t *HTTPTransport) Flush(ctx context.Context) error {
	if t.closed {
		return ErrClosed
	}
	if t.outbound.Len() == 0 {
		if t.metrics != nil {
			t.metrics.FlushesTotal.WithLabelValues(outcomeEmpty).Inc()
		}
		return nil
	}

	payload := t.outbound.Bytes()
	start := time.Now()
	body, err := t.exchange(ctx, payload)
	if t.metrics != nil {
		t.metrics.FlushDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if t.metrics != nil {
			t.metrics.FlushesTotal.WithLabelValues(outcomeError).Inc()
		}
		return err
	}

	t.logger.Debug("flush complete",
		"url", t.url,
		"request_bytes", len(payload),
		"response_bytes", len(body),
		"payload_digest", fmt.Sprintf("%016x", xxhash.Sum64(payload)),
	)
	if t.metrics != nil {
		t.metrics.FlushesTotal.WithLabelValues(outcomeOK).Inc()
		t.metrics.BytesWritten.Add(float64(len(payload)))
		t.metrics.BytesRead.Add(float64(len(body)))
	}

	t.inbound.Write(body)
	t.outbound.Reset()
	return nil
}

// exchange performs the single POST for a flush and returns the response
// body on a 200 status. The payload slice is only read, never retained.
func (t *HTTPTransport) exchange(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return nil, &IOError{Err: fmt.Errorf("create request: %w", err)}
	}

	for _, h := range t.headers {
		req.Header.Set(h.Name, h.Value)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", defaultUserAgent)
	}
	// The wire contract fixes the content type; extra headers cannot shadow it.
	req.Header.Set("Content-Type", contentType)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &IOError{Err: fmt.Errorf("http request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxResponseBytes))
	if err != nil {
		return nil, &IOError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		ioErr := &IOError{StatusCode: resp.StatusCode}
		if snippet := strings.TrimSpace(string(truncate(body, statusSnippetLen))); snippet != "" {
			ioErr.Err = errors.New(snippet)
		}
		return nil, ioErr
	}

	return body, nil
}

// Close flushes any pending outbound data best-effort, then marks the
// transport closed. A final-flush failure is logged at warn level and not
// returned. Close is idempotent; all other operations fail with ErrClosed
// afterwards.
func (t *HTTPTransport) Close() error {
	if t.closed {
		return nil
	}
	if err := t.Flush(context.Background()); err != nil {
		t.logger.Warn("final flush failed on close", "url", t.url, "error", err)
	}
	t.closed = true
	return nil
}

// truncate returns at most n leading bytes of b.
func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// Compile-time check that HTTPTransport implements the Transport interface.
var _ Transport = (*HTTPTransport)(nil)
