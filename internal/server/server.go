// Package server provides the bufwire echo server, an HTTP endpoint for
// exercising buffered transports locally. Every POST body is echoed back
// with status 200 unless the request asks for an injected failure status,
// which makes the server usable as a peer for both the happy path and the
// flush-failure path of a transport.
package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// statusOverrideHeader lets a client request a specific response status,
// used to exercise transport failure handling. Values outside 100..599
// are ignored.
const statusOverrideHeader = "X-Echo-Status"

// maxEchoBytes caps the request body read per echo.
const maxEchoBytes = 64 * 1024 * 1024 // 64MB

// EchoServer echoes POST bodies back to the caller. It exposes /metrics
// (Prometheus) and /health alongside the echo endpoint at /.
type EchoServer struct {
	addr    string
	logger  *slog.Logger
	server  *http.Server
	metrics *Metrics

	listener net.Listener
	ready    chan struct{}
}

// Option is a functional option for configuring EchoServer.
type Option func(*EchoServer)

// WithAddr sets the listen address. Default is "127.0.0.1:8471".
func WithAddr(addr string) Option {
	return func(s *EchoServer) {
		s.addr = addr
	}
}

// WithLogger sets the logger for the echo server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *EchoServer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewEchoServer creates an echo server.
func NewEchoServer(opts ...Option) *EchoServer {
	s := &EchoServer{
		addr:   "127.0.0.1:8471",
		logger: slog.Default(),
		ready:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler builds the full handler: echo at "/", /health, and /metrics
// backed by the given registry.
func (s *EchoServer) Handler(reg *prometheus.Registry) http.Handler {
	s.metrics = NewMetrics(reg)

	echo := http.Handler(http.HandlerFunc(s.handleEcho))
	echo = MetricsMiddleware(s.metrics)(echo)
	echo = RequestIDMiddleware(s.logger)(echo)

	mux := http.NewServeMux()
	mux.Handle("/health", healthHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle("/", echo)
	return mux
}

// Start begins accepting connections. It blocks until the context is
// cancelled or the server fails. The bound address is available from Addr
// once Start has begun serving.
func (s *EchoServer) Start(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	close(s.ready)

	s.server = &http.Server{
		Handler:           s.Handler(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting echo server", "addr", listener.Addr().String())
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down echo server")
		return s.shutdown()
	case err := <-errCh:
		return err
	}
}

// Ready is closed once the listener is bound; Addr is then safe to call
// from other goroutines.
func (s *EchoServer) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listen address, or the configured address if the
// server has not started yet.
func (s *EchoServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *EchoServer) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("error during server shutdown", "error", err)
		return err
	}

	s.logger.Info("echo server shutdown complete")
	return nil
}

// Close gracefully shuts down the server.
func (s *EchoServer) Close() error {
	if s.server == nil {
		return nil
	}
	return s.shutdown()
}

// handleEcho echoes the request body. Only POST is accepted; the optional
// X-Echo-Status header overrides the response status for failure-path tests.
func (s *EchoServer) handleEcho(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEchoBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	logger := LoggerFromContext(r.Context())

	status := http.StatusOK
	if override := r.Header.Get(statusOverrideHeader); override != "" {
		if code, err := strconv.Atoi(override); err == nil && code >= 100 && code <= 599 {
			status = code
		}
	}

	logger.Debug("echo",
		"bytes", len(body),
		"status", status,
		"content_type", r.Header.Get("Content-Type"),
		"user_agent", r.Header.Get("User-Agent"),
	)

	if status != http.StatusOK {
		http.Error(w, "injected failure", status)
		return
	}

	w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// healthHandler reports liveness as JSON.
func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
}
