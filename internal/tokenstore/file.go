package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	tokenFilePrefix = "clickup-"
	tokenFileSuffix = ".token"
)

// FileStore keeps each token in its own file, readable only by the owner.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created on the
// first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory tokens are written to.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(account string) string {
	return filepath.Join(s.dir, tokenFilePrefix+account+tokenFileSuffix)
}

func (s *FileStore) Get(_ context.Context, account string) (string, error) {
	if err := ValidateAccountName(account); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.path(account))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

func (s *FileStore) Save(_ context.Context, account, token string) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token cannot be empty")
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	// written to a temp file and renamed into place
	tmp, err := os.CreateTemp(s.dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strings.TrimSpace(token)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to restrict token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(account)); err != nil {
		return fmt.Errorf("failed to store token file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, account string) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	err := os.Remove(s.path(account))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list token directory: %w", err)
	}

	accounts := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, tokenFilePrefix) || !strings.HasSuffix(name, tokenFileSuffix) {
			continue
		}
		account := strings.TrimSuffix(strings.TrimPrefix(name, tokenFilePrefix), tokenFileSuffix)
		if ValidateAccountName(account) == nil {
			accounts = append(accounts, account)
		}
	}
	sort.Strings(accounts)
	return accounts, nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}
