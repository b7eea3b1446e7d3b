package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/clickup-mcp/internal/clickup"
	"github.com/teemow/clickup-mcp/internal/resources"
	"github.com/teemow/clickup-mcp/internal/server"
	"github.com/teemow/clickup-mcp/internal/toolkit"
	"github.com/teemow/clickup-mcp/internal/tools/clickup_tools"
)

const (
	categoryRead  = "Read Tools"
	categoryWrite = "Write Tools"
	categoryOther = "Other"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate a markdown reference of every MCP tool and resource.

The reference is built from the registered tool definitions, write
operations included, so it always matches what serve --yolo exposes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, err := registeredTools()
			if err != nil {
				return err
			}
			if outputFile == "" {
				return writeDocs(cmd.OutOrStdout(), tools, resources.Definitions())
			}

			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			if err := writeDocs(f, tools, resources.Definitions()); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// registeredTools registers every tool, write operations included, on a
// throwaway server and returns their definitions sorted by name.
func registeredTools() ([]mcp.Tool, error) {
	// tools resolve clients only when called, so no token is needed
	serverContext, err := server.NewServerContext(context.Background(),
		server.WithClickUpConfig(clickup.Config{}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("clickup-mcp", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := clickup_tools.RegisterClickUpTools(mcpSrv, serverContext, false); err != nil {
		return nil, fmt.Errorf("failed to register ClickUp tools: %w", err)
	}

	tools := make([]mcp.Tool, 0, len(mcpSrv.ListTools()))
	for _, serverTool := range mcpSrv.ListTools() {
		tools = append(tools, serverTool.Tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools, nil
}

// toolCategory groups a tool by whether it changes ClickUp state.
func toolCategory(name string) string {
	if name == clickup_tools.BatchGetTasksTool {
		return categoryRead
	}
	operation, ok := strings.CutPrefix(name, clickup_tools.ToolPrefix)
	if !ok {
		return categoryOther
	}
	action, ok := toolkit.FromAPIWrapper(nil).Lookup(operation)
	switch {
	case !ok:
		return categoryOther
	case action.ReadOnly():
		return categoryRead
	default:
		return categoryWrite
	}
}

func writeDocs(w io.Writer, tools []mcp.Tool, res []mcp.Resource) error {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("Tools and resources exposed by `clickup-mcp serve`. ")
	sb.WriteString("Generated from the tool definitions with `clickup-mcp generate-docs`.\n\n")

	byCategory := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		category := toolCategory(tool.Name)
		byCategory[category] = append(byCategory[category], tool)
	}
	var categories []string
	for _, category := range []string{categoryRead, categoryWrite, categoryOther} {
		if len(byCategory[category]) > 0 {
			categories = append(categories, category)
		}
	}

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, strings.ToLower(strings.ReplaceAll(category, " ", "-")))
	}
	if len(res) > 0 {
		sb.WriteString("- [Resources](#resources)\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Accounts and Arguments\n\n")
	sb.WriteString("- Every tool takes an optional `account`. Without it the `X-ClickUp-Account` header of the HTTP transport is used, then `default`.\n")
	sb.WriteString("- Tokens are stored per account with `clickup-mcp auth`. The `default` account also falls back to `CLICKUP_ACCESS_TOKEN`.\n")
	sb.WriteString("- Operations also accept `instructions`, the raw JSON query, which takes precedence over the typed arguments.\n")
	sb.WriteString("- Over HTTP, `/mcp` requires a bearer token from `--http-auth-token`. A token given as `account:secret` can only use that account.\n")
	sb.WriteString("- Write tools are only registered with `serve --yolo`.\n\n")

	for _, category := range categories {
		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, tool := range byCategory[category] {
			writeToolMarkdown(&sb, tool)
		}
	}

	if len(res) > 0 {
		sb.WriteString("## Resources\n\n")
		for _, r := range res {
			fmt.Fprintf(&sb, "### %s\n\n%s (`%s`)\n\n", r.URI, r.Description, r.MIMEType)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeToolMarkdown(sb *strings.Builder, tool mcp.Tool) {
	fmt.Fprintf(sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(sb, "%s\n\n", strings.TrimSpace(tool.Description))
	}
	if len(tool.InputSchema.Properties) == 0 {
		return
	}

	names := make([]string, 0, len(tool.InputSchema.Properties))
	for name := range tool.InputSchema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("**Arguments:**\n")
	for _, name := range names {
		prop, ok := tool.InputSchema.Properties[name].(map[string]interface{})
		if !ok {
			continue
		}
		propType, _ := prop["type"].(string)
		if propType == "" {
			propType = "any"
		}
		required := "optional"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "required"
		}

		fmt.Fprintf(sb, "- `%s` (%s, %s)", name, propType, required)
		if desc, ok := prop["description"].(string); ok && desc != "" {
			fmt.Fprintf(sb, ": %s", desc)
		}
		if enum := enumValues(prop["enum"]); len(enum) > 0 {
			fmt.Fprintf(sb, " One of: `%s`.", strings.Join(enum, "`, `"))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func enumValues(v interface{}) []string {
	var out []string
	switch values := v.(type) {
	case []string:
		out = append(out, values...)
	case []interface{}:
		for _, value := range values {
			out = append(out, fmt.Sprint(value))
		}
	}
	return out
}
