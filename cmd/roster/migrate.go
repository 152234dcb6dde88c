package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"roster/internal/config"
	"roster/internal/store"
)

func newMigrateCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			if !dryRun {
				st, err := store.Open(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				if err := st.Close(); err != nil {
					return err
				}
			}

			status, err := migrationStatus(cfg.DBPath)
			if err != nil {
				return err
			}
			if *structured {
				return writeJSON(status)
			}
			return writeMigrationStatus(status, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying them")
	return cmd
}

func migrationStatus(dbPath string) (*store.MigrationStatus, error) {
	db, err := store.OpenRaw(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	status, err := store.MigrationPlan(db)
	if err != nil {
		return nil, fmt.Errorf("inspect migrations: %w", err)
	}
	return status, nil
}

func writeMigrationStatus(status *store.MigrationStatus, dryRun bool) error {
	_ = writePlain("current version: %d\n", status.CurrentVersion)
	_ = writePlain("available version: %d\n", status.AvailableVersion)
	if len(status.Pending) == 0 {
		if dryRun {
			return writePlain("no pending migrations\n")
		}
		return writePlain("schema is up to date\n")
	}
	_ = writePlain("pending migrations: %d\n", len(status.Pending))
	for _, m := range status.Pending {
		_ = writePlain("  %d: %s\n", m.Version, m.Description)
	}
	return nil
}
