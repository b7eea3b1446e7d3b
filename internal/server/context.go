package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/clickup-mcp/internal/clickup"
	"github.com/teemow/clickup-mcp/internal/instrumentation"
	"github.com/teemow/clickup-mcp/internal/logging"
	"github.com/teemow/clickup-mcp/internal/tokenstore"
	"github.com/teemow/clickup-mcp/internal/toolkit"
)

// DefaultAccount is used when a request names no account.
const DefaultAccount = "default"

// ServerContext holds the state shared by all MCP tool handlers: one ClickUp
// client and toolkit per account, created on first use.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	store      tokenstore.Store
	baseConfig clickup.Config
	clientOpts []clickup.Option
	logger     *slog.Logger

	clients  map[string]*clickup.Client
	toolkits map[string]*toolkit.Toolkit

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithTokenStore sets the store tokens are read from. The ServerContext
// closes it on Shutdown.
func WithTokenStore(store tokenstore.Store) Option {
	return func(sc *ServerContext) {
		sc.store = store
	}
}

// WithClickUpConfig sets the configuration every client starts from. Its
// AccessToken is only used for the default account when the store has none.
func WithClickUpConfig(cfg clickup.Config) Option {
	return func(sc *ServerContext) {
		sc.baseConfig = cfg
	}
}

// WithClientOptions adds options passed to every clickup.NewClient call.
func WithClientOptions(opts ...clickup.Option) Option {
	return func(sc *ServerContext) {
		sc.clientOpts = append(sc.clientOpts, opts...)
	}
}

// WithLogger sets the logger handed to clients.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:        shutdownCtx,
		cancel:     cancel,
		baseConfig: clickup.DefaultConfig(),
		logger:     slog.Default(),
		clients:    make(map[string]*clickup.Client),
		toolkits:   make(map[string]*toolkit.Toolkit),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// TokenStore returns the configured token store, which may be nil.
func (sc *ServerContext) TokenStore() tokenstore.Store {
	return sc.store
}

// token resolves the access token of an account.
func (sc *ServerContext) token(ctx context.Context, account string) (string, error) {
	if sc.store != nil {
		token, err := sc.store.Get(ctx, account)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, tokenstore.ErrNotFound) {
			return "", err
		}
	}
	if account == DefaultAccount && sc.baseConfig.AccessToken != "" {
		return sc.baseConfig.AccessToken, nil
	}
	return "", fmt.Errorf("no ClickUp token for account %q: run 'clickup-mcp auth exchange --account %s' or set %s",
		account, account, clickup.EnvAccessToken)
}

// ClientForAccount returns the ClickUp client of an account, creating and
// caching it on first use. Creation resolves the account's workspace location
// and is bound to ctx. It fails when the request credential in ctx is bound
// to another account.
func (sc *ServerContext) ClientForAccount(ctx context.Context, account string) (*clickup.Client, error) {
	if account == "" {
		account = DefaultAccount
	}
	if err := tokenstore.ValidateAccountName(account); err != nil {
		return nil, err
	}
	if err := checkAccountPermitted(ctx, account); err != nil {
		return nil, err
	}
	if sc.IsShutdown() {
		return nil, errors.New("server is shutting down")
	}

	sc.mu.RLock()
	client, ok := sc.clients[account]
	sc.mu.RUnlock()
	if ok {
		return client, nil
	}

	token, err := sc.token(ctx, account)
	if err != nil {
		return nil, err
	}

	cfg := sc.baseConfig
	cfg.AccessToken = token

	opts := append([]clickup.Option{
		clickup.WithAccount(account),
		clickup.WithMetrics(sc.Metrics()),
		clickup.WithLogger(logging.NewSlogAdapter(sc.logger.With(logging.AccountHash(account)))),
	}, sc.clientOpts...)

	client, err = clickup.NewClient(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ClickUp client for account %s: %w", account, err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	// another request may have created the client meanwhile
	if existing, ok := sc.clients[account]; ok {
		return existing, nil
	}
	sc.clients[account] = client
	return client, nil
}

// ToolkitForAccount returns the toolkit built on the account's client.
func (sc *ServerContext) ToolkitForAccount(ctx context.Context, account string) (*toolkit.Toolkit, error) {
	if account == "" {
		account = DefaultAccount
	}
	if err := checkAccountPermitted(ctx, account); err != nil {
		return nil, err
	}

	sc.mu.RLock()
	tk, ok := sc.toolkits[account]
	sc.mu.RUnlock()
	if ok {
		return tk, nil
	}

	client, err := sc.ClientForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if tk, ok := sc.toolkits[account]; ok {
		return tk, nil
	}
	tk = toolkit.FromAPIWrapper(client)
	sc.toolkits[account] = tk
	return tk, nil
}

// CachedAccounts returns the number of accounts with a live client.
func (sc *ServerContext) CachedAccounts() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.clients)
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder used by tool handlers and new clients.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger used by tool handlers.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context, drops cached clients and closes the
// token store.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	sc.clients = make(map[string]*clickup.Client)
	sc.toolkits = make(map[string]*toolkit.Toolkit)
	if sc.store != nil {
		if err := sc.store.Close(); err != nil {
			return fmt.Errorf("failed to close token store: %w", err)
		}
	}
	return nil
}
