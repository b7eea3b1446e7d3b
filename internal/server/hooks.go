package server

import (
	"context"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewSessionHooks returns MCP server hooks that keep the active session gauge
// current and forget a session's account when it ends. sessions may be nil.
func NewSessionHooks(sc *ServerContext, sessions *SessionIDManager) *mcpserver.Hooks {
	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, _ mcpserver.ClientSession) {
		sc.Metrics().IncrementActiveSessions(ctx)
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		sc.Metrics().DecrementActiveSessions(ctx)
		if sessions != nil {
			sessions.RemoveSession(session.SessionID())
		}
	})
	return hooks
}
