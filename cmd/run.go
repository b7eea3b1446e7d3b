package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/clickup-mcp/internal/logging"
	"github.com/teemow/clickup-mcp/internal/server"
	"github.com/teemow/clickup-mcp/internal/toolkit"
)

func newRunCmd() *cobra.Command {
	var (
		account    string
		debugMode  bool
		tokenStore TokenStoreConfig
	)

	cmd := &cobra.Command{
		Use:   "run <operation> [instructions]",
		Short: "Run a single ClickUp operation",
		Long: `Run one toolkit operation and print its JSON output.

The instructions are the operation's JSON query. Pass "-" to read them from
stdin. Operations:
  ` + strings.Join(toolkit.Names(), "\n  "),
		Example: `  clickup-mcp run get_teams
  clickup-mcp run get_task '{"task_id": "86abc"}'
  echo '{"name": "Write docs"}' | clickup-mcp run create_task -`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			instructions := ""
			if len(args) == 2 {
				instructions = args[1]
			}
			if instructions == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read instructions from stdin: %w", err)
				}
				instructions = string(b)
			}

			out, err := runOperation(cmd.Context(), args[0], instructions, account, tokenStore, debugMode)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", server.DefaultAccount, "Account whose token is used")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&tokenStore.Type, "token-store", "file", "Token store type: file or sqlite")
	cmd.Flags().StringVar(&tokenStore.Path, "token-store-path", "", "Token directory (file) or database path (sqlite)")

	return cmd
}

// runOperation builds the toolkit of account and runs one operation.
func runOperation(ctx context.Context, operation, instructions, account string, storeConfig TokenStoreConfig, debug bool) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// reject unknown operations before resolving a token
	if _, ok := toolkit.FromAPIWrapper(nil).Lookup(operation); !ok {
		return "", fmt.Errorf("unknown operation %q (available: %s)", operation, strings.Join(toolkit.Names(), ", "))
	}

	logger := logging.NewLogger(os.Stderr, debug)
	sc, err := openServerContext(ctx, storeConfig, logger)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = sc.Shutdown()
	}()

	tk, err := sc.ToolkitForAccount(ctx, account)
	if err != nil {
		return "", err
	}
	action, _ := tk.Lookup(operation)

	return action.Run(ctx, instructions)
}
