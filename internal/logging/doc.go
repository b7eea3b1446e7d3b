// Package logging provides structured logging utilities for clickup-mcp.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Account anonymization (account names are often email addresses)
//   - Token masking for ClickUp personal and OAuth tokens
//   - Logger adapter interface accepted by library packages
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithMode(slog.Default(), "get_task")
//	logger.Info("dispatching",
//	    logging.AccountHash(account))
//
// # Security Considerations
//
//   - Account names are hashed to prevent PII leakage while allowing correlation
//   - Tokens are never logged directly
package logging
