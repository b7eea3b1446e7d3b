package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{"valid default", "default", false},
		{"valid with hyphen", "work-space", false},
		{"valid with underscore", "personal_space", false},
		{"empty", "", true},
		{"with spaces", "my account", true},
		{"with slash", "work/personal", true},
		{"with dot", "work.space", true},
		{"parent dir", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccountName(tt.account)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAccountName(%q) error = %v, wantErr %v", tt.account, err, tt.wantErr)
			}
		})
	}
}

// backends returns a fresh store of each kind rooted in a temp dir.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	file, err := Open(ctx, KindFile, t.TempDir())
	require.NoError(t, err)

	sqlite, err := Open(ctx, KindSQLite, filepath.Join(t.TempDir(), "nested", "tokens.db"))
	require.NoError(t, err)

	stores := map[string]Store{KindFile: file, KindSQLite: sqlite}
	for _, s := range stores {
		s := s
		t.Cleanup(func() { _ = s.Close() })
	}
	return stores
}

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()

	for kind, store := range backends(t) {
		t.Run(kind, func(t *testing.T) {
			accounts, err := store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, accounts)

			_, err = store.Get(ctx, "default")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Save(ctx, "work", "pk_work\n"))
			require.NoError(t, store.Save(ctx, "default", "pk_one"))
			require.NoError(t, store.Save(ctx, "default", "pk_two"))

			token, err := store.Get(ctx, "default")
			require.NoError(t, err)
			assert.Equal(t, "pk_two", token)

			token, err = store.Get(ctx, "work")
			require.NoError(t, err)
			assert.Equal(t, "pk_work", token)

			accounts, err = store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"default", "work"}, accounts)

			require.NoError(t, store.Delete(ctx, "work"))
			assert.ErrorIs(t, store.Delete(ctx, "work"), ErrNotFound)

			accounts, err = store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"default"}, accounts)
		})
	}
}

func TestStore_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()

	for kind, store := range backends(t) {
		t.Run(kind, func(t *testing.T) {
			assert.Error(t, store.Save(ctx, "../escape", "pk"))
			assert.Error(t, store.Save(ctx, "default", "   "))
			_, err := store.Get(ctx, "bad name")
			assert.Error(t, err)
			assert.NotErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	dir := filepath.Join(t.TempDir(), "tokens")
	store := NewFileStore(dir)
	require.NoError(t, store.Save(context.Background(), "default", "pk_secret"))

	info, err := os.Stat(filepath.Join(dir, "clickup-default.token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestFileStore_ListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clickup-bad name.token"), []byte("x"), 0600))

	store := NewFileStore(dir)
	require.NoError(t, store.Save(context.Background(), "default", "pk"))

	accounts, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, accounts)
}

func TestOpen(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	s, err := Open(context.Background(), "", "")
	require.NoError(t, err)
	fs, ok := s.(*FileStore)
	require.True(t, ok)
	if runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		assert.Equal(t, filepath.Join(os.Getenv("XDG_CACHE_HOME"), "clickup-mcp"), fs.Dir())
	}

	_, err = Open(context.Background(), "etcd", "")
	assert.Error(t, err)
}
