package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/cmd/lms/output"
	"github.com/AntonStoeckl/library-loans-go/ledger/postgresengine"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell/config"
)

// migrateCmd applies the schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Create the books, users and loans tables with their constraints and indexes.

The schema uses IF NOT EXISTS throughout, running it twice is harmless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *postgresengine.Store) error {
			if err := store.Migrate(ctx); err != nil {
				return err
			}

			output.Success("schema applied")

			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

// withStore opens the configured store for the duration of fn.
func withStore(ctx context.Context, fn func(ctx context.Context, store *postgresengine.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := config.NewLogger(os.Stderr, cfg.LogLevel)

	store, closeStore, err := config.OpenStore(ctx, cfg, postgresengine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(ctx, store)
}
