// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/authcore/authcore/internal/config"
	"github.com/authcore/authcore/internal/store"
)

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database schema status",
		Long:  `Show the current migration version and dirty state of the database schema.`,
		RunE:  runStatus,
	}

	cmd.Flags().String("postgres.url", "", "PostgreSQL connection URL")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("error closing migrator", "error", closeErr.Error())
		}
	}()

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}

	if version == 0 {
		cmd.Println("Schema version: none (no migrations applied)")
		return nil
	}

	name, err := store.MigrationName(version)
	if err != nil {
		return err
	}

	if name != "" {
		cmd.Printf("Schema version: %d (%s)\n", version, name)
	} else {
		cmd.Printf("Schema version: %d\n", version)
	}
	if dirty {
		cmd.Println("WARNING: schema is dirty, a migration failed partway through")
	}
	return nil
}
