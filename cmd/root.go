package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the clickup-mcp application
var rootCmd = &cobra.Command{
	Use:   "clickup-mcp",
	Short: "ClickUp toolkit for AI assistants",
	Long: `clickup-mcp exposes a fixed set of ClickUp operations (tasks, lists,
folders, spaces and workspaces) as tools for AI assistants.

It can run as:
  - An MCP (Model Context Protocol) server over stdio or streamable HTTP
  - A CLI that runs a single operation (run)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "clickup-mcp version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
