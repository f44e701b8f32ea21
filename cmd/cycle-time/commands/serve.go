package commands

import (
	"jira-cycle-time/internal/jira"
	"jira-cycle-time/internal/mcp"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis as an MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := mcp.NewServer(cfg, jira.NewClient(cfg.Jira), Version)
			return server.Start(cmd.Context())
		},
	}
}
