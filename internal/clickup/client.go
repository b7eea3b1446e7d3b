package clickup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/teemow/clickup-mcp/internal/instrumentation"
	"github.com/teemow/clickup-mcp/internal/logging"
	"github.com/teemow/clickup-mcp/internal/toolkit"
)

// modeDiscover labels the requests NewClient makes to resolve missing ids.
const modeDiscover = "discover"

var _ toolkit.APIWrapper = (*Client)(nil)

// Client is a ClickUp API v2 client bound to one access token. It also holds
// the current team, space, folder and list, which operations default to and
// which create_list and create_folder update.
//
// A Client is safe for concurrent use.
type Client struct {
	cfg     Config
	account string
	http    *http.Client
	limiter *rate.Limiter
	metrics *instrumentation.Metrics
	logger  logging.Logger

	newBackOff func() backoff.BackOff
	discover   bool

	mu       sync.RWMutex
	teamID   string
	spaceID  string
	folderID string
	listID   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPTransport sets the base round tripper wrapped by the traced transport.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http = newHTTPClient(c.cfg.Timeout, rt)
	}
}

// WithLogger sets the logger used for warnings about unparsable payloads and
// retries.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records API request metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithAccount names the account the client belongs to.
func WithAccount(account string) Option {
	return func(c *Client) {
		c.account = account
	}
}

// WithBackOff replaces the retry policy. Each request gets a fresh BackOff.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) {
		if fn != nil {
			c.newBackOff = fn
		}
	}
}

// WithoutDiscovery stops NewClient from resolving missing ids.
func WithoutDiscovery() Option {
	return func(c *Client) {
		c.discover = false
	}
}

// NewClient validates cfg and creates a client. Unless WithoutDiscovery is
// given, missing team, space, folder and list ids are resolved by taking the
// first entry of each level, the same way the ClickUp UI opens a workspace.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:     cfg,
		account: "default",
		http:    newHTTPClient(cfg.Timeout, nil),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  logging.DefaultLogger(),
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		discover: true,
		teamID:   cfg.TeamID,
		spaceID:  cfg.SpaceID,
		folderID: cfg.FolderID,
		listID:   cfg.ListID,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.discover {
		if err := c.resolveIDs(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// TeamID returns the current team (workspace) id.
func (c *Client) TeamID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.teamID
}

// SpaceID returns the current space id.
func (c *Client) SpaceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spaceID
}

// FolderID returns the current folder id, which may be empty.
func (c *Client) FolderID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.folderID
}

// ListID returns the current list id.
func (c *Client) ListID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listID
}

func (c *Client) setFolderID(id string) {
	c.mu.Lock()
	c.folderID = id
	c.mu.Unlock()
}

func (c *Client) setListID(id string) {
	c.mu.Lock()
	c.listID = id
	c.mu.Unlock()
}

func defaultParams() url.Values {
	return url.Values{"archived": {"false"}}
}

// resolveIDs fills in missing ids level by level. It runs inside NewClient
// before the client is shared, so the fields are written without locking.
func (c *Client) resolveIDs(ctx context.Context) error {
	if c.teamID == "" {
		r, err := c.do(ctx, request{mode: modeDiscover, method: http.MethodGet, path: "/team"})
		if err != nil {
			return fmt.Errorf("failed to discover team: %w", err)
		}
		c.teamID = r.Get("teams.0.id").String()
		if c.teamID == "" {
			return fmt.Errorf("failed to discover team: token has no authorized teams")
		}
	}

	if c.spaceID == "" {
		r, err := c.do(ctx, request{mode: modeDiscover, method: http.MethodGet,
			path: "/team/" + url.PathEscape(c.teamID) + "/space", params: defaultParams()})
		if err != nil {
			return fmt.Errorf("failed to discover space: %w", err)
		}
		c.spaceID = r.Get("spaces.0.id").String()
		if c.spaceID == "" {
			return fmt.Errorf("failed to discover space: team %s has no spaces", c.teamID)
		}
	}

	// A space may have no folders; lists then live directly in the space.
	if c.folderID == "" && c.listID == "" {
		r, err := c.do(ctx, request{mode: modeDiscover, method: http.MethodGet,
			path: "/space/" + url.PathEscape(c.spaceID) + "/folder", params: defaultParams()})
		if err != nil {
			return fmt.Errorf("failed to discover folder: %w", err)
		}
		c.folderID = r.Get("folders.0.id").String()
	}

	if c.listID == "" {
		path := "/space/" + url.PathEscape(c.spaceID) + "/list"
		if c.folderID != "" {
			path = "/folder/" + url.PathEscape(c.folderID) + "/list"
		}
		r, err := c.do(ctx, request{mode: modeDiscover, method: http.MethodGet, path: path, params: defaultParams()})
		if err != nil {
			return fmt.Errorf("failed to discover list: %w", err)
		}
		c.listID = r.Get("lists.0.id").String()
	}

	c.logger.Debug("resolved ClickUp location",
		logging.KeyTeam, c.teamID, "space_id", c.spaceID, "folder_id", c.folderID, "list_id", c.listID)
	return nil
}

// Run executes the operation named by mode with JSON instructions and returns
// the JSON-encoded result.
//
// Instructions that are not a JSON object yield an {"Error": ...} result and
// a nil error, as does get_task_attribute with an unknown attribute. Other
// instruction problems return *QueryError, API failures *APIError, and an
// unrecognised mode ErrUnknownMode.
func (c *Client) Run(ctx context.Context, mode, instructions string) (string, error) {
	out, err := c.dispatch(ctx, mode, instructions)
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprint(out), nil
	}
	return string(encoded), nil
}

func (c *Client) dispatch(ctx context.Context, mode, instructions string) (interface{}, error) {
	switch mode {
	case toolkit.ModeGetTeams:
		// get_teams takes no instructions
		return c.getTeams(ctx)
	}

	q, invalid := parseQuery(mode, instructions)
	if invalid != nil {
		if !isKnownMode(mode) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
		}
		return errorResult(invalid.message), nil
	}

	switch mode {
	case toolkit.ModeGetTask:
		return c.getTask(ctx, q)
	case toolkit.ModeGetTaskAttribute:
		return c.getTaskAttribute(ctx, q)
	case toolkit.ModeCreateTask:
		return c.createTask(ctx, q)
	case toolkit.ModeCreateList:
		return c.createList(ctx, q)
	case toolkit.ModeCreateFolder:
		return c.createFolder(ctx, q)
	case toolkit.ModeGetList:
		return c.getLists(ctx, q)
	case toolkit.ModeGetFolders:
		return c.getFolders(ctx, q)
	case toolkit.ModeGetSpaces:
		return c.getSpaces(ctx, q)
	case toolkit.ModeUpdateTask:
		return c.updateTask(ctx, q)
	case toolkit.ModeUpdateTaskAssignees:
		return c.updateTaskAssignees(ctx, q)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func isKnownMode(mode string) bool {
	for _, name := range toolkit.Names() {
		if name == mode {
			return true
		}
	}
	return false
}

func errorResult(msg string) map[string]string {
	return map[string]string{"Error": msg}
}
