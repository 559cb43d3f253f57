package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Option is a functional option for configuring an HTTPTransport.
type Option func(*HTTPTransport)

// WithHTTPClient sets a custom HTTP client. The client owns connection
// pooling, proxying, and timeout policy for flush exchanges.
func WithHTTPClient(client *http.Client) Option {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// WithTimeout sets the request timeout on the transport's HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) {
		t.client.Timeout = d
	}
}

// WithExtraHeaders appends headers to every flush exchange, in order.
// A header named User-Agent replaces the default adapter identifier;
// Content-Type cannot be overridden.
func WithExtraHeaders(headers ...Header) Option {
	return func(t *HTTPTransport) {
		t.headers = append(t.headers, headers...)
	}
}

// WithMaxResponseBytes caps the response body read per flush.
// Values <= 0 are ignored.
func WithMaxResponseBytes(n int64) Option {
	return func(t *HTTPTransport) {
		if n > 0 {
			t.maxResponseBytes = n
		}
	}
}

// WithLogger sets the logger for the transport.
func WithLogger(logger *slog.Logger) Option {
	return func(t *HTTPTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus metrics to the transport.
func WithMetrics(m *Metrics) Option {
	return func(t *HTTPTransport) {
		t.metrics = m
	}
}

// Recognized keys for NewHTTPTransportFromOptions.
const (
	// OptionHTTPOptions carries an HTTPOptions value forwarded to the
	// underlying HTTP client.
	OptionHTTPOptions = "http_options"

	// OptionExtraHeaders carries a []Header merged into request headers.
	OptionExtraHeaders = "extra_headers"
)

// HTTPOptions is the opaque HTTP client configuration accepted under
// OptionHTTPOptions. Zero fields keep their defaults.
type HTTPOptions struct {
	// Timeout bounds one flush exchange end to end.
	Timeout time.Duration
	// Proxy is an optional proxy URL applied to the HTTP client.
	Proxy string
	// MaxResponseBytes caps the response body read per flush.
	MaxResponseBytes int64
}

// NewHTTPTransportFromOptions constructs an HTTPTransport from a keyed
// option set. The recognized keys are exactly OptionHTTPOptions and
// OptionExtraHeaders; any other key fails construction with a *ConfigError,
// as does a value of the wrong type. Additional functional options (logger,
// metrics) are applied after the keyed set.
func NewHTTPTransportFromOptions(host, path string, options map[string]any, extra ...Option) (*HTTPTransport, error) {
	var opts []Option

	for key, value := range options {
		switch key {
		case OptionHTTPOptions:
			ho, ok := value.(HTTPOptions)
			if !ok {
				return nil, &ConfigError{Option: key, Reason: fmt.Sprintf("expected transport.HTTPOptions, got %T", value)}
			}
			client, err := buildHTTPClient(ho)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithHTTPClient(client), WithMaxResponseBytes(ho.MaxResponseBytes))
		case OptionExtraHeaders:
			headers, ok := value.([]Header)
			if !ok {
				return nil, &ConfigError{Option: key, Reason: fmt.Sprintf("expected []transport.Header, got %T", value)}
			}
			opts = append(opts, WithExtraHeaders(headers...))
		default:
			return nil, &ConfigError{Option: key}
		}
	}

	return NewHTTPTransport(host, path, append(opts, extra...)...)
}

// buildHTTPClient translates HTTPOptions into an *http.Client.
func buildHTTPClient(ho HTTPOptions) (*http.Client, error) {
	client := &http.Client{Timeout: defaultTimeout}
	if ho.Timeout > 0 {
		client.Timeout = ho.Timeout
	}
	if ho.Proxy != "" {
		proxyURL, err := url.Parse(ho.Proxy)
		if err != nil {
			return nil, &ConfigError{Option: OptionHTTPOptions, Reason: fmt.Sprintf("invalid proxy url: %v", err)}
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}
	return client, nil
}
