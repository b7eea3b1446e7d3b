package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
)

// ErrNotFound is returned when no token is stored for an account.
var ErrNotFound = errors.New("tokenstore: token not found")

// Store backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// Store persists one ClickUp access token per account.
type Store interface {
	Get(ctx context.Context, account string) (string, error)
	Save(ctx context.Context, account, token string) error
	Delete(ctx context.Context, account string) error
	// List returns the stored account names in sorted order.
	List(ctx context.Context) ([]string, error)
	Close() error
}

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateAccountName checks that an account name is safe to use as a file
// name component.
func ValidateAccountName(account string) error {
	if account == "" {
		return errors.New("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// Open returns the store of the given kind. An empty location selects the
// default under DefaultDir.
func Open(ctx context.Context, kind, location string) (Store, error) {
	switch kind {
	case KindFile, "":
		if location == "" {
			location = DefaultDir()
		}
		return NewFileStore(location), nil
	case KindSQLite:
		if location == "" {
			location = filepath.Join(DefaultDir(), "tokens.db")
		}
		return OpenSQLiteStore(ctx, location)
	default:
		return nil, fmt.Errorf("unknown token store %q (supported: %s, %s)", kind, KindFile, KindSQLite)
	}
}

// DefaultDir is the per-user cache directory tokens are kept in.
func DefaultDir() string {
	return filepath.Join(userCacheDir(), "clickup-mcp")
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return os.TempDir()
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
