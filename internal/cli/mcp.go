package cli

import (
	"github.com/spf13/cobra"

	"github.com/cursorvault/cursorvault/internal/config"
	"github.com/cursorvault/cursorvault/internal/mcp"
	"github.com/cursorvault/cursorvault/internal/persist"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve archived conversations to MCP clients over stdio",
		Long: `Start an MCP server exposing this project's archived conversations as
read-only tools (list, get, search, and messages since the last commit).
Intended to be launched by an MCP client, not interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findRoot()
			if err != nil {
				return err
			}

			store := persist.NewStore(config.ConversationsDir(root))
			return mcp.NewServer(root, store, version).ServeStdio()
		},
	}
}
