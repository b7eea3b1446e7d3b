package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/clickup-mcp/internal/server"
	"github.com/teemow/clickup-mcp/internal/tools/common"
)

// Resource URIs.
const (
	WorkspaceURI = "clickup://workspace"
	AccountsURI  = "clickup://accounts"
)

// WorkspaceInfo is the location operations fall back to when a query names
// no team, space, folder or list.
type WorkspaceInfo struct {
	Account  string `json:"account"`
	TeamID   string `json:"team_id,omitempty"`
	SpaceID  string `json:"space_id,omitempty"`
	FolderID string `json:"folder_id,omitempty"`
	ListID   string `json:"list_id,omitempty"`
}

// AccountsInfo lists the accounts with a stored token.
type AccountsInfo struct {
	Accounts       []string `json:"accounts"`
	CachedAccounts int      `json:"cached_accounts"`
}

// Definitions returns the resources RegisterWorkspaceResources adds, in
// registration order.
func Definitions() []mcp.Resource {
	return []mcp.Resource{
		mcp.NewResource(
			WorkspaceURI,
			"Current ClickUp Workspace",
			mcp.WithResourceDescription("Team, space, folder and list selected for the current account"),
			mcp.WithMIMEType("application/json"),
		),
		mcp.NewResource(
			AccountsURI,
			"ClickUp Accounts",
			mcp.WithResourceDescription("Accounts with a stored ClickUp token"),
			mcp.WithMIMEType("application/json"),
		),
	}
}

// RegisterWorkspaceResources registers read-only resources describing the
// caller's ClickUp workspace and the configured accounts.
func RegisterWorkspaceResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	handlers := map[string]func(context.Context, mcp.ReadResourceRequest, *server.ServerContext) ([]mcp.ResourceContents, error){
		WorkspaceURI: handleWorkspace,
		AccountsURI:  handleAccounts,
	}

	for _, resource := range Definitions() {
		handle, ok := handlers[resource.URI]
		if !ok {
			return fmt.Errorf("no handler for resource %s", resource.URI)
		}
		s.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return handle(ctx, request, sc)
		})
	}
	return nil
}

func handleWorkspace(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := common.GetAccountFromArgs(ctx, nil)

	client, err := sc.ClientForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	return jsonContents(request.Params.URI, WorkspaceInfo{
		Account:  account,
		TeamID:   client.TeamID(),
		SpaceID:  client.SpaceID(),
		FolderID: client.FolderID(),
		ListID:   client.ListID(),
	})
}

func handleAccounts(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	info := AccountsInfo{
		Accounts:       []string{},
		CachedAccounts: sc.CachedAccounts(),
	}
	if store := sc.TokenStore(); store != nil {
		accounts, err := store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list accounts: %w", err)
		}
		info.Accounts = append(info.Accounts, accounts...)
	}
	if bound, ok := server.BoundAccountFromContext(ctx); ok {
		info.Accounts = slices.DeleteFunc(info.Accounts, func(a string) bool { return a != bound })
		info.CachedAccounts = 0
	}
	return jsonContents(request.Params.URI, info)
}

func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
