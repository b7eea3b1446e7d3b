package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teemow/clickup-mcp/internal/clickup"
	"github.com/teemow/clickup-mcp/internal/logging"
	"github.com/teemow/clickup-mcp/internal/server"
	"github.com/teemow/clickup-mcp/internal/tokenstore"
)

// Environment variables used as defaults for the auth flags.
const (
	envClientID     = "CLICKUP_CLIENT_ID"
	envClientSecret = "CLICKUP_CLIENT_SECRET"
	envRedirectURI  = "CLICKUP_REDIRECT_URI"
)

func newAuthCmd() *cobra.Command {
	var tokenStore TokenStoreConfig

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage ClickUp tokens per account",
		Long: `Manage the ClickUp access tokens used by serve and run.

Tokens are stored per account name. Obtain one through the OAuth app flow
(auth url, then auth exchange) or store a personal API token (auth save).`,
	}

	cmd.PersistentFlags().StringVar(&tokenStore.Type, "token-store", tokenstore.KindFile, "Token store type: file or sqlite")
	cmd.PersistentFlags().StringVar(&tokenStore.Path, "token-store-path", "", "Token directory (file) or database path (sqlite)")

	cmd.AddCommand(newAuthURLCmd())
	cmd.AddCommand(newAuthExchangeCmd(&tokenStore))
	cmd.AddCommand(newAuthSaveCmd(&tokenStore))
	cmd.AddCommand(newAuthListCmd(&tokenStore))
	cmd.AddCommand(newAuthRemoveCmd(&tokenStore))

	return cmd
}

func envDefault(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

func newAuthURLCmd() *cobra.Command {
	var clientID, redirectURI string

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the ClickUp authorization URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := &clickup.OAuthApp{
				ClientID:    envDefault(clientID, envClientID),
				RedirectURL: envDefault(redirectURI, envRedirectURI),
			}
			if app.ClientID == "" {
				return fmt.Errorf("--client-id or %s is required", envClientID)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Open this URL in your browser and authorize the app:")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %s\n\n", app.AuthCodeURL(uuid.NewString()))
			fmt.Fprintln(out, "Then run 'clickup-mcp auth exchange --code <code>' with the code from the redirect.")
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth app client id. Can also use CLICKUP_CLIENT_ID env var.")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "OAuth app redirect URI. Can also use CLICKUP_REDIRECT_URI env var.")

	return cmd
}

func newAuthExchangeCmd(storeConfig *TokenStoreConfig) *cobra.Command {
	var clientID, clientSecret, code, account string

	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Exchange an authorization code and store the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := &clickup.OAuthApp{
				ClientID:     envDefault(clientID, envClientID),
				ClientSecret: envDefault(clientSecret, envClientSecret),
				BaseURL:      os.Getenv(clickup.EnvAPIURL),
			}
			return withTokenStore(cmd.Context(), *storeConfig, func(ctx context.Context, store tokenstore.Store) error {
				return exchangeAndSave(ctx, app, store, account, code, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth app client id. Can also use CLICKUP_CLIENT_ID env var.")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth app client secret. Can also use CLICKUP_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the redirect")
	cmd.Flags().StringVar(&account, "account", server.DefaultAccount, "Account name to store the token under")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

func newAuthSaveCmd(storeConfig *TokenStoreConfig) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Store a personal API token read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readToken(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withTokenStore(cmd.Context(), *storeConfig, func(ctx context.Context, store tokenstore.Store) error {
				if err := store.Save(ctx, account, token); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Token %s saved for account %q\n", logging.SanitizeToken(token), account)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", server.DefaultAccount, "Account name to store the token under")

	return cmd
}

func newAuthListCmd(storeConfig *TokenStoreConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with a stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTokenStore(cmd.Context(), *storeConfig, func(ctx context.Context, store tokenstore.Store) error {
				return listAccounts(ctx, store, cmd.OutOrStdout())
			})
		},
	}
}

func newAuthRemoveCmd(storeConfig *TokenStoreConfig) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the stored token of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTokenStore(cmd.Context(), *storeConfig, func(ctx context.Context, store tokenstore.Store) error {
				if err := store.Delete(ctx, account); err != nil {
					if errors.Is(err, tokenstore.ErrNotFound) {
						return fmt.Errorf("no token stored for account %q", account)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed token for account %q\n", account)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account name")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

// withTokenStore opens the configured store, runs fn and closes the store.
func withTokenStore(ctx context.Context, storeConfig TokenStoreConfig, fn func(ctx context.Context, store tokenstore.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := tokenstore.Open(ctx, storeConfig.Type, storeConfig.Path)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()
	return fn(ctx, store)
}

func exchangeAndSave(ctx context.Context, app *clickup.OAuthApp, store tokenstore.Store, account, code string, out io.Writer) error {
	if err := tokenstore.ValidateAccountName(account); err != nil {
		return err
	}

	token, err := app.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, account, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Fprintf(out, "Token %s saved for account %q\n", logging.SanitizeToken(token), account)
	return nil
}

func listAccounts(ctx context.Context, store tokenstore.Store, out io.Writer) error {
	accounts, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		fmt.Fprintln(out, "No accounts with a stored token.")
		return nil
	}
	for _, account := range accounts {
		fmt.Fprintln(out, account)
	}
	return nil
}

// readToken reads the first non-empty line of r.
func readToken(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if token := strings.TrimSpace(scanner.Text()); token != "" {
			return token, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return "", errors.New("no token provided on stdin")
}
