package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/teemow/clickup-mcp/internal/tokenstore"
)

// MinBearerTokenLength is the shortest accepted HTTP bearer secret.
const MinBearerTokenLength = 16

// ErrAccountNotPermitted is returned when a request bound to one account asks
// for another.
var ErrAccountNotPermitted = errors.New("account not permitted for this credential")

type bearerKey struct {
	secret []byte
	// account is empty for keys that may select any account.
	account string
}

// BearerAuth authenticates MCP requests with static bearer secrets. A secret
// is either unbound, letting the caller pick any account, or bound to one
// account, which then is the only account its requests can use.
type BearerAuth struct {
	keys []bearerKey
}

// ParseBearerTokens builds a BearerAuth from entries of the form "secret"
// (any account) or "account:secret" (bound to account).
func ParseBearerTokens(entries []string) (*BearerAuth, error) {
	auth := &BearerAuth{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key := bearerKey{secret: []byte(entry)}
		if account, secret, ok := strings.Cut(entry, ":"); ok {
			if err := tokenstore.ValidateAccountName(account); err != nil {
				return nil, fmt.Errorf("invalid bearer token entry: %w", err)
			}
			key = bearerKey{secret: []byte(secret), account: account}
		}
		if len(key.secret) < MinBearerTokenLength {
			return nil, fmt.Errorf("bearer token must be at least %d characters", MinBearerTokenLength)
		}
		auth.keys = append(auth.keys, key)
	}
	if len(auth.keys) == 0 {
		return nil, errors.New("no bearer token configured")
	}
	return auth, nil
}

// authenticate returns the key matching the request's bearer token.
func (a *BearerAuth) authenticate(r *http.Request) (bearerKey, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return bearerKey{}, false
	}
	presented := []byte(strings.TrimSpace(token))

	var match bearerKey
	found := false
	// compare against every key so timing does not reveal which one matched
	for _, key := range a.keys {
		if subtle.ConstantTimeCompare(presented, key.secret) == 1 && !found {
			match, found = key, true
		}
	}
	return match, found
}

// Middleware rejects requests without a valid bearer token with 401. Requests
// made with a bound token that name another account in the account header get
// 403. The bound account is stored in the request context.
func (a *BearerAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := a.authenticate(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="clickup-mcp"`)
			writeJSONRPCError(w, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}
		if key.account == "" {
			next.ServeHTTP(w, r)
			return
		}
		if requested := strings.TrimSpace(r.Header.Get(AccountHeader)); requested != "" && requested != key.account {
			writeJSONRPCError(w, http.StatusForbidden, fmt.Sprintf("%s: %s", ErrAccountNotPermitted, requested))
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithBoundAccount(r.Context(), key.account)))
	})
}

func writeJSONRPCError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      nil,
		"error": map[string]interface{}{
			"code":    -32000,
			"message": message,
		},
	})
}

type boundAccountContextKey struct{}

// ContextWithBoundAccount restricts ctx to a single account.
func ContextWithBoundAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, boundAccountContextKey{}, account)
}

// BoundAccountFromContext returns the account the request's credential is
// restricted to, if any.
func BoundAccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(boundAccountContextKey{}).(string)
	return account, ok && account != ""
}

// checkAccountPermitted fails when ctx is restricted to another account.
func checkAccountPermitted(ctx context.Context, account string) error {
	if bound, ok := BoundAccountFromContext(ctx); ok && bound != account {
		return fmt.Errorf("%w: %s", ErrAccountNotPermitted, account)
	}
	return nil
}
