package clickup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/teemow/clickup-mcp/internal/instrumentation"
)

// OAuthApp is a ClickUp OAuth application. ClickUp issues long-lived access
// tokens without refresh tokens, so the flow ends after one code exchange.
type OAuthApp struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// AuthURL defaults to DefaultAuthURL.
	AuthURL string
	// BaseURL defaults to DefaultBaseURL; the token endpoint is BaseURL/oauth/token.
	BaseURL string

	// HTTPClient is used for the token exchange when set.
	HTTPClient *http.Client
	Metrics    *instrumentation.Metrics
}

func (a *OAuthApp) config() *oauth2.Config {
	authURL := a.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	baseURL := strings.TrimRight(a.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &oauth2.Config{
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		RedirectURL:  a.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  baseURL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthCodeURL returns the URL a user opens to authorize the app.
func (a *OAuthApp) AuthCodeURL(state string) string {
	return a.config().AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for an access token.
func (a *OAuthApp) ExchangeCode(ctx context.Context, code string) (string, error) {
	if a.ClientID == "" || a.ClientSecret == "" {
		return "", errors.New("clickup: client id and client secret are required")
	}
	if strings.TrimSpace(code) == "" {
		return "", errors.New("clickup: authorization code is required")
	}

	if a.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.HTTPClient)
	}

	token, err := a.config().Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		a.Metrics.RecordOAuthTokenExchange(ctx, instrumentation.OAuthResultFailure)
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	a.Metrics.RecordOAuthTokenExchange(ctx, instrumentation.OAuthResultSuccess)
	return token.AccessToken, nil
}
