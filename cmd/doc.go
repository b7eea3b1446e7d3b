// Package cmd implements the command-line interface for clickup-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - run: Run a single ClickUp operation and print its JSON output
//   - auth: Obtain, list and remove per-account ClickUp tokens
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
package cmd
