package server

import (
	"context"
	"net/http"
	"strings"
)

// AccountHeader selects the token store account for HTTP requests.
const AccountHeader = "X-ClickUp-Account"

// sessionHeader is the streamable HTTP session id header.
const sessionHeader = "Mcp-Session-Id"

type accountContextKey struct{}

// ContextWithAccount returns a context that carries the account name.
func ContextWithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountContextKey{}, account)
}

// AccountFromContext returns the account set by ContextWithAccount.
func AccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(accountContextKey{}).(string)
	return account, ok && account != ""
}

// accountFromRequest reads the account header, falling back to the account
// previously seen on the same MCP session.
func accountFromRequest(r *http.Request, sessions *SessionIDManager) string {
	account := strings.TrimSpace(r.Header.Get(AccountHeader))
	sessionID := r.Header.Get(sessionHeader)
	if sessions == nil || sessionID == "" {
		return account
	}
	if account != "" {
		sessions.SetAccountForSession(sessionID, account)
		return account
	}
	return sessions.AccountForSession(sessionID)
}
