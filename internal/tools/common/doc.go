// Package common holds the pieces every MCP tool handler shares: resolving
// which ClickUp account a call runs as, and wrapping handlers with tracing,
// metrics and audit logging.
package common
