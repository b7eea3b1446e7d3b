package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teemow/clickup-mcp/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is where /metrics is served unless configured otherwise.
	DefaultMetricsAddr = ":9090"

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP listeners.
	DefaultShutdownTimeout = 30 * time.Second

	metricsReadHeaderTimeout = 10 * time.Second
	metricsWriteTimeout      = 10 * time.Second
	metricsIdleTimeout       = 60 * time.Second
)

// MetricsServerConfig configures a MetricsServer.
type MetricsServerConfig struct {
	// Addr is the listen address, DefaultMetricsAddr when empty.
	Addr string

	// InstrumentationProvider must be enabled and export to Prometheus.
	InstrumentationProvider *instrumentation.Provider

	Logger *slog.Logger
}

// MetricsServer exposes the Prometheus scrape endpoint on its own port, away
// from the MCP endpoint.
type MetricsServer struct {
	httpServer *http.Server
	addr       string
	listener   net.Listener
	logger     *slog.Logger
}

// NewMetricsServer validates config and prepares the server. Nothing is
// bound until Listen.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	provider := config.InstrumentationProvider
	switch {
	case provider == nil:
		return nil, errors.New("instrumentation provider is required for metrics server")
	case !provider.Enabled():
		return nil, errors.New("instrumentation provider is not enabled")
	case !provider.ServesPrometheus():
		return nil, errors.New("instrumentation provider does not export to prometheus")
	}

	s := &MetricsServer{
		addr:   config.Addr,
		logger: config.Logger,
	}
	if s.addr == "" {
		s.addr = DefaultMetricsAddr
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: metricsReadHeaderTimeout,
		WriteTimeout:      metricsWriteTimeout,
		IdleTimeout:       metricsIdleTimeout,
	}
	return s, nil
}

// Handler returns the mux serving /metrics and a plain /healthz.
func (s *MetricsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	// the OTel prometheus exporter registers with the default registry
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Listen binds the listen address so bind errors surface before Serve.
func (s *MetricsServer) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	return nil
}

// Serve blocks serving scrapes on the bound listener, calling Listen first
// when needed. It returns http.ErrServerClosed after Shutdown.
func (s *MetricsServer) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.logger.Info("starting metrics server", "addr", s.Addr())
	return s.httpServer.Serve(s.listener)
}

// Shutdown stops the server. It is a no-op when Listen was never called.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	s.logger.Info("shutting down metrics server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the bound address once listening, else the configured one.
func (s *MetricsServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
