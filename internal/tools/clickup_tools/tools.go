package clickup_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/clickup-mcp/internal/server"
	"github.com/teemow/clickup-mcp/internal/toolkit"
	"github.com/teemow/clickup-mcp/internal/tools/batch"
	"github.com/teemow/clickup-mcp/internal/tools/common"
)

// ToolPrefix is prepended to every operation name to form the MCP tool name.
const ToolPrefix = "clickup_"

// BatchGetTasksTool fetches several tasks in one call.
const BatchGetTasksTool = ToolPrefix + "get_tasks"

// ToolName returns the MCP tool name of an operation.
func ToolName(operation string) string {
	return ToolPrefix + operation
}

// RegisterClickUpTools registers one MCP tool per toolkit operation. In
// read-only mode only the get_* operations are registered.
func RegisterClickUpTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Tool schemas only need names and descriptions; handlers bind each call
	// to the toolkit of the caller's account.
	for _, action := range toolkit.FromAPIWrapper(nil).Tools() {
		if readOnly && !action.ReadOnly() {
			continue
		}

		if _, ok := operationParams[action.Name]; !ok {
			return fmt.Errorf("no parameters defined for operation %s", action.Name)
		}

		name := ToolName(action.Name)
		tool := mcp.NewTool(name, toolOptions(action.Mode, action.Description)...)
		s.AddTool(tool, common.InstrumentedToolHandlerWithMode(name, action.Mode, action.ReadOnly(), sc,
			operationHandler(sc, action.Name)))
	}

	registerBatchTools(s, sc)
	return nil
}

// actionForAccount resolves the toolkit action of an operation for the
// request's account.
func actionForAccount(ctx context.Context, sc *server.ServerContext, args map[string]interface{}, operation string) (*toolkit.Action, error) {
	account := common.GetAccountFromArgs(ctx, args)

	tk, err := sc.ToolkitForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	action, ok := tk.Lookup(operation)
	if !ok {
		return nil, fmt.Errorf("unknown ClickUp operation %q", operation)
	}
	return action, nil
}

func operationHandler(sc *server.ServerContext, operation string) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		action, err := actionForAccount(ctx, sc, args, operation)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		query, err := buildQuery(operation, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		out, err := action.Run(ctx, query)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", operation, err)), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// registerBatchTools registers tools that run one read operation over many ids.
func registerBatchTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	getTasksTool := mcp.NewTool(BatchGetTasksTool,
		mcp.WithDescription("Get several ClickUp tasks at once. Returns one result per task id; a task that fails does not hide the others."),
		mcp.WithString("task_ids",
			mcp.Required(),
			mcp.Description("Task ids as comma-separated string or JSON array, e.g. '86abc,86abd'."),
		),
		mcp.WithString(argAccount,
			mcp.Description("Account name (default: 'default'). Used to manage multiple ClickUp accounts."),
		),
	)

	s.AddTool(getTasksTool, common.InstrumentedToolHandlerWithMode(BatchGetTasksTool, toolkit.ModeGetTask, true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			ids, err := batch.ParseStringOrArray(args["task_ids"], "task_ids")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			action, err := actionForAccount(ctx, sc, args, toolkit.ModeGetTask)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			results := batch.ProcessBatch(ctx, ids, func(ctx context.Context, id string) (string, error) {
				query, err := json.Marshal(map[string]string{"task_id": id})
				if err != nil {
					return "", err
				}
				return action.Run(ctx, string(query))
			})
			return mcp.NewToolResultText(batch.FormatResults(results)), nil
		}))
}
