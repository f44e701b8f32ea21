package mcp

import (
	"context"

	"jira-cycle-time/internal/analysis"
	"jira-cycle-time/internal/config"
	"jira-cycle-time/internal/jira"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Server exposes the transition analysis over the Model Context Protocol.
type Server struct {
	cfg     *config.AppConfig
	service *analysis.Service
	server  *sdk.Server
}

// NewServer creates a new MCP server with its tools registered.
func NewServer(cfg *config.AppConfig, client jira.Client, version string) *Server {
	s := &Server{
		cfg:     cfg,
		service: analysis.NewService(client, cfg),
		server: sdk.NewServer(&sdk.Implementation{
			Name:    "cycle-time",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Start serves MCP over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	log.Info().Msg("MCP Server starting Stdio loop")
	return s.server.Run(ctx, &sdk.StdioTransport{})
}
