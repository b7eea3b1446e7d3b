package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServeEnvVars(t *testing.T) {
	t.Setenv(envHTTPAddr, ":9999")
	t.Setenv(envMetricsEnabled, "false")
	t.Setenv(envMetricsAddr, ":9191")
	t.Setenv(envTokenStoreType, "sqlite")
	t.Setenv(envTokenStorePath, "/tmp/tokens.db")

	t.Run("env fills unset flags", func(t *testing.T) {
		cmd := newServeCmd()
		require.NoError(t, cmd.ParseFlags(nil))

		var config ServeConfig
		config.Metrics.Enabled = true
		loadServeEnvVars(cmd, &config)

		assert.Equal(t, ":9999", config.HTTPAddr)
		assert.False(t, config.Metrics.Enabled)
		assert.Equal(t, ":9191", config.Metrics.Addr)
		assert.Equal(t, "sqlite", config.TokenStore.Type)
		assert.Equal(t, "/tmp/tokens.db", config.TokenStore.Path)
	})

	t.Run("explicit flags win", func(t *testing.T) {
		cmd := newServeCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--http-addr", ":7000", "--token-store", "file"}))

		config := ServeConfig{HTTPAddr: ":7000", TokenStore: TokenStoreConfig{Type: "file"}}
		loadServeEnvVars(cmd, &config)

		assert.Equal(t, ":7000", config.HTTPAddr)
		assert.Equal(t, "file", config.TokenStore.Type)
		assert.Equal(t, "/tmp/tokens.db", config.TokenStore.Path)
	})
}

func TestLoadServeEnvVars_InvalidBool(t *testing.T) {
	t.Setenv(envMetricsEnabled, "maybe")

	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	config := ServeConfig{Metrics: MetricsConfig{Enabled: true}}
	loadServeEnvVars(cmd, &config)
	assert.True(t, config.Metrics.Enabled)
}

func TestRunServe_UnsupportedTransport(t *testing.T) {
	err := runServe(ServeConfig{Transport: "sse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport type")
}

func TestNewServeCmd_RateLimitFlags(t *testing.T) {
	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--http-rate-limit", "2.5", "--trust-proxy"}))

	limit, err := cmd.Flags().GetFloat64("http-rate-limit")
	require.NoError(t, err)
	assert.Equal(t, 2.5, limit)

	burst, err := cmd.Flags().GetInt("http-rate-burst")
	require.NoError(t, err)
	assert.Equal(t, 20, burst)

	trust, err := cmd.Flags().GetBool("trust-proxy")
	require.NoError(t, err)
	assert.True(t, trust)
}

func TestRunServe_HTTPRequiresAuthToken(t *testing.T) {
	err := runServe(ServeConfig{Transport: "streamable-http"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires --http-auth-token")

	err = runServe(ServeConfig{Transport: "streamable-http", AuthTokens: []string{"short"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least")
}

func TestNewServeCmd_HTTPDefaults(t *testing.T) {
	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	addr, err := cmd.Flags().GetString("http-addr")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", addr)
}

func TestLoadServeEnvVars_AuthTokens(t *testing.T) {
	t.Setenv(envHTTPAuthToken, "0123456789abcdef,work:fedcba9876543210")

	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags(nil))
	var config ServeConfig
	loadServeEnvVars(cmd, &config)
	assert.Equal(t, []string{"0123456789abcdef", "work:fedcba9876543210"}, config.AuthTokens)

	cmd = newServeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--http-auth-token", "flag-secret-0123456"}))
	config = ServeConfig{AuthTokens: []string{"flag-secret-0123456"}}
	loadServeEnvVars(cmd, &config)
	assert.Equal(t, []string{"flag-secret-0123456"}, config.AuthTokens)
}
