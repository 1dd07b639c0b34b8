package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "wikijs-mcp",
	Short: "Wiki.js documentation gateway",
	Long: `wikijs-mcp bridges code repositories and a Wiki.js documentation store.

It exposes page management, hierarchical organization, safe deletion,
and file-to-page mapping tools over the Model Context Protocol, backed
by the Wiki.js GraphQL API and a local SQLite mapping database.`,
	Version: version,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cleanupCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
