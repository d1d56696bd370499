// Package commands implements the operator CLI: user creation and data
// health checks against the application database.
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"networth/internal/config"
	"networth/internal/storage"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	var dbPath string

	rootCmd := &cobra.Command{
		Use:   "networth-admin",
		Short: "Operator tasks for the net worth tracker",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: SQLITE_DB_PATH)")

	rootCmd.AddCommand(newCreateUserCommand(&dbPath))
	rootCmd.AddCommand(newCheckDataCommand(&dbPath))
	rootCmd.AddCommand(newCleanupDuplicatesCommand(&dbPath))

	return rootCmd
}

// openRepository resolves the database path (flag, then env/config
// default) and opens it, running migrations.
func openRepository(dbPath string) (*storage.Repository, error) {
	_ = godotenv.Load()
	if dbPath == "" {
		dbPath = config.Load().SQLiteDBPath
	}
	repo, err := storage.NewRepository(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	return repo, nil
}
