package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation   = "operation"
	KeyMode        = "mode"
	KeyAccount     = "account"
	KeyAccountHash = "account_hash"
	KeyDuration    = "duration"
	KeyStatus      = "status"
	KeyError       = "error"
	KeyTool        = "tool"
	KeyTeam        = "team_id"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// NewLogger builds a text slog.Logger writing to w at the given level.
// A nil writer falls back to io.Discard.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithMode returns a logger with the dispatch mode attribute set.
func WithMode(logger *slog.Logger, mode string) *slog.Logger {
	return logger.With(slog.String(KeyMode, mode))
}

// WithAccount returns a logger with the account attribute set.
func WithAccount(logger *slog.Logger, account string) *slog.Logger {
	return logger.With(slog.String(KeyAccount, account))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Mode returns a slog attribute for the dispatch mode.
func Mode(mode string) slog.Attr {
	return slog.String(KeyMode, mode)
}

// Account returns a slog attribute for the account name.
func Account(account string) slog.Attr {
	return slog.String(KeyAccount, account)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Team returns a slog attribute for the ClickUp team (workspace) id.
func Team(teamID string) slog.Attr {
	return slog.String(KeyTeam, teamID)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeAccount returns a hashed representation of an account name for logging.
// Account names are frequently email addresses, so they are never logged verbatim.
func AnonymizeAccount(account string) string {
	if account == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(account))
	return "account:" + hex.EncodeToString(hash[:8])
}

// AccountHash returns a slog attribute with the anonymized account name.
func AccountHash(account string) slog.Attr {
	return slog.String(KeyAccountHash, AnonymizeAccount(account))
}

// SanitizeToken returns a masked version of a ClickUp token for logging.
// Personal tokens carry a recognisable "pk_" prefix; only that prefix and the
// length are kept.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	if strings.HasPrefix(token, "pk_") {
		return fmt.Sprintf("[pk_token:%d chars]", len(token))
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
