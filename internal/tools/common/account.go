package common

import (
	"context"
	"strings"

	"github.com/teemow/clickup-mcp/internal/server"
)

// GetAccountFromArgs extracts the account name from request arguments and context.
//
// Priority order:
//  1. Explicit "account" argument in request
//  2. Account selected by the HTTP transport (X-ClickUp-Account header or session)
//  3. "default"
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && strings.TrimSpace(accountVal) != "" {
		return strings.TrimSpace(accountVal)
	}
	if account, ok := server.AccountFromContext(ctx); ok && account != "" {
		return account
	}
	return server.DefaultAccount
}
