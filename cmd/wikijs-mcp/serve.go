package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/N3tn1la/wiki-js-mcp/internal/config"
	"github.com/N3tn1la/wiki-js-mcp/internal/logging"
	"github.com/N3tn1la/wiki-js-mcp/internal/mappings"
	"github.com/N3tn1la/wiki-js-mcp/internal/ops"
	"github.com/N3tn1la/wiki-js-mcp/internal/wikijs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Start the documentation gateway as an MCP server speaking over
stdin/stdout.

Configuration is read from the environment (and an optional .env file):
  WIKIJS_API_URL    Wiki.js base URL (default http://localhost:3000)
  WIKIJS_TOKEN      API token (preferred)
  WIKIJS_USERNAME   username for JWT login (fallback)
  WIKIJS_PASSWORD   password for JWT login (fallback)
  WIKIJS_MCP_DB     mapping database path (default ./wikijs_mappings.db)`,
	Run: func(cmd *cobra.Command, args []string) {
		svc, log, closeAll, err := buildService()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer closeAll()

		log.Info("starting MCP server on stdio")
		if err := runStdioServer(svc); err != nil {
			log.Error("server terminated", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// buildService assembles the full stack: config, logger, remote
// client, mapping store, and the operation service.
func buildService() (*ops.Service, *zap.Logger, func(), error) {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFile)

	store, err := mappings.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open mapping database: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize mapping schema: %w", err)
	}

	client := wikijs.NewClient(cfg.APIURL, wikijs.Credentials{
		Token:    cfg.Token(),
		Username: cfg.Username,
		Password: cfg.Password,
	}, log)

	svc := ops.NewService(client, store, cfg, log)

	closeAll := func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close mapping database", zap.Error(err))
		}
		_ = log.Sync()
	}
	return svc, log, closeAll, nil
}
