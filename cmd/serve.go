package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/clickup-mcp/internal/instrumentation"
	"github.com/teemow/clickup-mcp/internal/logging"
	"github.com/teemow/clickup-mcp/internal/resources"
	"github.com/teemow/clickup-mcp/internal/server"
	"github.com/teemow/clickup-mcp/internal/tokenstore"
	"github.com/teemow/clickup-mcp/internal/tools/clickup_tools"
)

// Environment variables read by serve when the matching flag is not set.
const (
	envMetricsEnabled = "METRICS_ENABLED"
	envMetricsAddr    = "METRICS_ADDR"
	envHTTPAddr       = "MCP_HTTP_ADDR"
	envHTTPAuthToken  = "MCP_HTTP_AUTH_TOKEN"
	envTokenStoreType = "TOKEN_STORE_TYPE"
	envTokenStorePath = "TOKEN_STORE_PATH"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// TokenStoreConfig selects where per-account ClickUp tokens are read from.
type TokenStoreConfig struct {
	// Type is the storage backend: "file" or "sqlite" (default: "file")
	Type string

	// Path is the token directory (file) or database file (sqlite). Empty
	// selects the default below the user cache directory.
	Path string
}

// RateLimitConfig limits MCP requests per client IP on the HTTP transport.
type RateLimitConfig struct {
	// PerSecond is the sustained request rate; 0 disables rate limiting.
	PerSecond float64
	Burst     int
	// TrustProxy reads the client IP from X-Forwarded-For / X-Real-IP.
	TrustProxy bool
}

// ServeConfig holds the resolved configuration of the serve command.
type ServeConfig struct {
	Transport        string
	HTTPAddr         string
	Debug            bool
	Yolo             bool
	DisableStreaming bool
	// AuthTokens are "secret" or "account:secret" bearer entries for /mcp.
	AuthTokens []string
	RateLimit        RateLimitConfig
	Metrics          MetricsConfig
	TokenStore       TokenStoreConfig
}

func newServeCmd() *cobra.Command {
	var config ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server to expose the ClickUp toolkit to AI assistants.

Supports multiple transports:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP on /mcp with health endpoints

Tokens are looked up per account in the token store; the "default" account
falls back to CLICKUP_ACCESS_TOKEN. Over HTTP the account is chosen with the
X-ClickUp-Account header or the tools' account argument.

The HTTP transport listens on 127.0.0.1 by default and requires a bearer
token on /mcp, set with --http-auth-token. A token given as account:secret
can only use that account.

By default only read operations are registered. Use --yolo to enable
operations that create or update ClickUp objects.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadServeEnvVars(cmd, &config)
			return runServe(config)
		},
	}

	cmd.Flags().BoolVar(&config.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&config.Transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport). Can also use MCP_HTTP_ADDR env var.")
	cmd.Flags().BoolVar(&config.Yolo, "yolo", false, "Enable write operations (create and update tasks, lists and folders). Default is read-only mode.")
	cmd.Flags().BoolVar(&config.DisableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")

	cmd.Flags().StringArrayVar(&config.AuthTokens, "http-auth-token", nil, "Bearer token required on /mcp, as secret or account:secret (repeatable, streamable-http only). Can also use MCP_HTTP_AUTH_TOKEN env var, comma separated.")

	// Rate limiting
	cmd.Flags().Float64Var(&config.RateLimit.PerSecond, "http-rate-limit", 10, "MCP requests per second allowed per client IP (streamable-http only, 0 disables)")
	cmd.Flags().IntVar(&config.RateLimit.Burst, "http-rate-burst", 20, "Burst size for --http-rate-limit")
	cmd.Flags().BoolVar(&config.RateLimit.TrustProxy, "trust-proxy", false, "Use X-Forwarded-For / X-Real-IP as client IP. Only enable behind a trusted proxy.")

	// Metrics
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	// Token store
	cmd.Flags().StringVar(&config.TokenStore.Type, "token-store", tokenstore.KindFile, "Token store type: file or sqlite. Can also use TOKEN_STORE_TYPE env var.")
	cmd.Flags().StringVar(&config.TokenStore.Path, "token-store-path", "", "Token directory (file) or database path (sqlite). Can also use TOKEN_STORE_PATH env var.")

	return cmd
}

// loadServeEnvVars fills unset flags from environment variables.
// Environment variables only override flag values when the flag was not explicitly set.
func loadServeEnvVars(cmd *cobra.Command, config *ServeConfig) {
	if !cmd.Flags().Changed("http-addr") {
		if addr := os.Getenv(envHTTPAddr); addr != "" {
			config.HTTPAddr = addr
		}
	}
	if !cmd.Flags().Changed("http-auth-token") {
		if tokens := os.Getenv(envHTTPAuthToken); tokens != "" {
			config.AuthTokens = strings.Split(tokens, ",")
		}
	}
	if !cmd.Flags().Changed("metrics-enabled") {
		if v := os.Getenv(envMetricsEnabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				config.Metrics.Enabled = enabled
			}
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv(envMetricsAddr); addr != "" {
			config.Metrics.Addr = addr
		}
	}
	if !cmd.Flags().Changed("token-store") {
		if kind := os.Getenv(envTokenStoreType); kind != "" {
			config.TokenStore.Type = kind
		}
	}
	if !cmd.Flags().Changed("token-store-path") {
		if path := os.Getenv(envTokenStorePath); path != "" {
			config.TokenStore.Path = path
		}
	}
}

// openServerContext opens the token store and builds the server context.
func openServerContext(ctx context.Context, storeConfig TokenStoreConfig, logger *slog.Logger) (*server.ServerContext, error) {
	store, err := tokenstore.Open(ctx, storeConfig.Type, storeConfig.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	sc, err := server.NewServerContext(ctx,
		server.WithTokenStore(store),
		server.WithLogger(logger),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	return sc, nil
}

func runServe(config ServeConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout belongs to the stdio transport; logs always go to stderr
	logger := logging.NewLogger(os.Stderr, config.Debug)
	slog.SetDefault(logger)

	switch config.Transport {
	case "stdio", "streamable-http":
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", config.Transport)
	}

	var auth *server.BearerAuth
	if config.Transport == "streamable-http" {
		var err error
		if auth, err = server.ParseBearerTokens(config.AuthTokens); err != nil {
			return fmt.Errorf("streamable-http requires --http-auth-token: %w", err)
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	if config.Transport != "stdio" && config.Metrics.Enabled && provider.Enabled() && provider.ServesPrometheus() {
		metricsServer, err := startMetricsServer(provider, config.Metrics.Addr, logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	serverContext, err := openServerContext(shutdownCtx, config.TokenStore, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	sessions := server.NewSessionIDManagerWithLogger(server.DefaultSessionTimeout, logger)
	defer sessions.Stop()

	mcpSrv := mcpserver.NewMCPServer("clickup-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
		mcpserver.WithHooks(server.NewSessionHooks(serverContext, sessions)),
	)

	// readOnly is the inverse of yolo
	readOnly := !config.Yolo
	if readOnly {
		logger.Info("starting server in read-only mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting server with write operations enabled")
	}

	if err := clickup_tools.RegisterClickUpTools(mcpSrv, serverContext, readOnly); err != nil {
		return fmt.Errorf("failed to register ClickUp tools: %w", err)
	}
	if err := resources.RegisterWorkspaceResources(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register workspace resources: %w", err)
	}

	if config.Transport == "stdio" {
		return runStdioServer(mcpSrv)
	}

	httpServer := server.NewHTTPServer(mcpSrv, serverContext, server.HTTPServerConfig{
		Addr:             config.HTTPAddr,
		DisableStreaming: config.DisableStreaming,
		Sessions:         sessions,
		RateLimit:        config.RateLimit.PerSecond,
		RateBurst:        config.RateLimit.Burst,
		TrustProxy:       config.RateLimit.TrustProxy,
		Auth:             auth,
	})
	return runStreamableHTTPServer(shutdownCtx, httpServer, logger)
}

// startMetricsServer binds the Prometheus endpoint and serves it in the
// background.
func startMetricsServer(provider *instrumentation.Provider, addr string, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}
	if err := metricsServer.Listen(); err != nil {
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	}

	go func() {
		if err := metricsServer.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", logging.Err(err))
		}
	}()
	return metricsServer, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, httpServer *server.HTTPServer, logger *slog.Logger) error {
	logger.Info("starting streamable HTTP server",
		"addr", httpServer.Addr(),
		"endpoint", server.MCPEndpointPath,
		"account_header", server.AccountHeader,
	)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
