package clickup

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the ClickUp REST API v2 root.
	DefaultBaseURL = "https://api.clickup.com/api/v2"

	// DefaultAuthURL is where users are sent to authorize an OAuth app.
	DefaultAuthURL = "https://app.clickup.com/api"

	DefaultTimeout    = 30 * time.Second
	DefaultRateBurst  = 10
	DefaultMaxRetries = 3

	// DefaultUserAgent identifies the client to ClickUp.
	DefaultUserAgent = "clickup-mcp"
)

// DefaultRateLimit is ClickUp's per-token limit of 100 requests per minute,
// expressed in requests per second.
const DefaultRateLimit = 100.0 / 60.0

// Environment variables read by DefaultConfig.
const (
	EnvAccessToken = "CLICKUP_ACCESS_TOKEN"
	EnvTeamID      = "CLICKUP_TEAM_ID"
	EnvSpaceID     = "CLICKUP_SPACE_ID"
	EnvFolderID    = "CLICKUP_FOLDER_ID"
	EnvListID      = "CLICKUP_LIST_ID"
	EnvAPIURL      = "CLICKUP_API_URL"
	EnvRateLimit   = "CLICKUP_RATE_LIMIT"
	EnvMaxRetries  = "CLICKUP_MAX_RETRIES"
)

// ErrMissingToken is returned by Validate when no access token is configured.
var ErrMissingToken = errors.New("clickup: access token is required")

// Config configures a Client.
type Config struct {
	// AccessToken is a personal token (pk_...) or an OAuth access token.
	AccessToken string

	// Workspace location. Empty ids are discovered by NewClient.
	TeamID   string
	SpaceID  string
	FolderID string
	ListID   string

	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	RateBurst int
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	UserAgent  string
}

// DefaultConfig returns a Config populated from CLICKUP_* environment
// variables, falling back to the package defaults.
func DefaultConfig() Config {
	cfg := Config{
		AccessToken: os.Getenv(EnvAccessToken),
		TeamID:      os.Getenv(EnvTeamID),
		SpaceID:     os.Getenv(EnvSpaceID),
		FolderID:    os.Getenv(EnvFolderID),
		ListID:      os.Getenv(EnvListID),
		BaseURL:     DefaultBaseURL,
		Timeout:     DefaultTimeout,
		RateLimit:   DefaultRateLimit,
		RateBurst:   DefaultRateBurst,
		MaxRetries:  DefaultMaxRetries,
		UserAgent:   DefaultUserAgent,
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.BaseURL = v
	}
	if v, err := strconv.ParseFloat(os.Getenv(EnvRateLimit), 64); err == nil && v > 0 {
		cfg.RateLimit = v
	}
	if v, err := strconv.Atoi(os.Getenv(EnvMaxRetries)); err == nil && v >= 0 {
		cfg.MaxRetries = v
	}
	return cfg
}

// Validate checks the configuration and fills zero values with defaults.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AccessToken) == "" {
		return ErrMissingToken
	}

	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("clickup: base URL must be an absolute URL")
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.RateBurst <= 0 {
		c.RateBurst = DefaultRateBurst
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return nil
}
