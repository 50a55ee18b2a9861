package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/gradsync/portal/internal/storage"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the local cache schema migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	command := "up"
	if migrateRollback {
		command = "down"
	}

	if err := storage.Migrate(ctx, cfg.Storage.Path, command); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}

	return nil
}
