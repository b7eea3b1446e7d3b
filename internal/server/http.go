package server

import (
	"context"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// MCPEndpointPath is where the streamable HTTP transport is served.
const MCPEndpointPath = "/mcp"

// DefaultHTTPAddr only listens on the loopback interface.
const DefaultHTTPAddr = "127.0.0.1:8080"

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	Addr string
	// Auth authenticates every MCP request. Without it the MCP endpoint
	// rejects all requests.
	Auth *BearerAuth
	// DisableStreaming answers every request with a single JSON response.
	DisableStreaming bool
	// Sessions tracks the account chosen per MCP session. A new manager is
	// created when nil.
	Sessions *SessionIDManager
	// RateLimit is the number of MCP requests per second allowed per client
	// IP, with bursts of RateBurst. Zero disables rate limiting.
	RateLimit float64
	RateBurst int
	// TrustProxy takes the client IP from X-Forwarded-For or X-Real-IP.
	TrustProxy bool
}

// HTTPServer serves the MCP endpoint together with health checks. Requests
// authenticate with a bearer token and choose their ClickUp account with the
// X-ClickUp-Account header, unless the token is bound to an account.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	sc         *ServerContext
	health     *HealthChecker
	sessions   *SessionIDManager
	limiter    *RateLimiter
	httpServer *http.Server
	config     HTTPServerConfig
}

// NewHTTPServer creates an HTTP server for mcpServer.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) *HTTPServer {
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}
	sessions := config.Sessions
	if sessions == nil {
		sessions = NewSessionIDManager()
	}
	var limiter *RateLimiter
	if config.RateLimit > 0 {
		limiter = NewRateLimiter(config.RateLimit, config.RateBurst, config.TrustProxy)
	}
	return &HTTPServer{
		mcpServer: mcpServer,
		sc:        sc,
		health:    NewHealthChecker(sc),
		sessions:  sessions,
		limiter:   limiter,
		config:    config,
	}
}

// HealthChecker returns the health checker backing the health endpoints.
func (s *HTTPServer) HealthChecker() *HealthChecker {
	return s.health
}

// Handler returns the complete HTTP handler: the rate limited, authenticated
// MCP endpoint and the health endpoints, wrapped with request metrics.
func (s *HTTPServer) Handler() http.Handler {
	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(MCPEndpointPath),
		mcpserver.WithHTTPContextFunc(s.httpContext),
	}
	if s.config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)

	mux := http.NewServeMux()
	var mcpHandler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONRPCError(w, http.StatusUnauthorized, "authentication is not configured")
	})
	if s.config.Auth != nil {
		mcpHandler = s.config.Auth.Middleware(streamable)
	}
	mux.Handle(MCPEndpointPath, s.limiter.Middleware(mcpHandler))
	s.health.RegisterHealthEndpoints(mux)

	return MetricsMiddleware(s.sc, mux)
}

// httpContext attaches the request's account to the context tool handlers
// receive. A token bound to an account always selects that account.
func (s *HTTPServer) httpContext(ctx context.Context, r *http.Request) context.Context {
	if bound, ok := BoundAccountFromContext(r.Context()); ok {
		return ContextWithAccount(ContextWithBoundAccount(ctx, bound), bound)
	}
	if account := accountFromRequest(r, s.sessions); account != "" {
		return ContextWithAccount(ctx, account)
	}
	return ctx
}

// Start starts the HTTP server in a blocking manner.
func (s *HTTPServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server not ready, stops accepting requests and waits for
// in-flight requests to finish.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	s.sessions.Stop()
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.config.Addr
}
