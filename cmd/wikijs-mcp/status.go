package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to the Wiki.js instance",
	Long: `Verify the configured Wiki.js endpoint and credentials.

Authenticates, issues a listing query, and prints the connection
status along with local mapping statistics.`,
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, closeAll, err := buildService()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer closeAll()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		fmt.Println(svc.ConnectionStatus(ctx))
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove orphaned file mappings",
	Long: `Verify every stored file mapping against the Wiki.js instance and
remove rows whose page no longer exists.

Only the local mapping database is modified; no remote pages are
touched.`,
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, closeAll, err := buildService()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer closeAll()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		fmt.Println(svc.CleanupOrphanedMappings(ctx))
	},
}
