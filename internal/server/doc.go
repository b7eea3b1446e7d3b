// Package server provides the shared MCP server state and the HTTP transport.
//
// ServerContext creates one ClickUp client per account on first use. Tokens
// come from a tokenstore.Store; the default account may also use
// CLICKUP_ACCESS_TOKEN. Clients and their toolkits are cached until Shutdown.
//
// HTTPServer serves the streamable HTTP transport at /mcp next to the
// Kubernetes health checks on /healthz, /readyz and /healthz/detailed. /mcp
// requires a bearer token (BearerAuth). A request picks its account with the
// X-ClickUp-Account header unless its token is bound to one account;
// SessionIDManager remembers that choice for the rest of the MCP session.
//
// MetricsServer exposes Prometheus metrics on a dedicated port.
package server
