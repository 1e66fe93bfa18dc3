package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/config"
	"github.com/medemi-triage-server/internal/database"
)

// runMigrate handles "server migrate [up|down|version]".
func runMigrate(ctx context.Context, cm *config.Manager, logger *logrus.Logger, args []string) error {
	cfg := cm.GetConfig()
	if !cfg.Database.Enabled() {
		return fmt.Errorf("database.host is not configured")
	}

	path := cfg.Database.MigrationsPath
	if path == "" {
		path = database.DefaultMigrationsPath
	}
	runner, err := database.NewMigrationRunner(cm.GetDatabaseURL(), path, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "up":
		return runner.Up(ctx)
	case "down":
		return runner.Down(ctx)
	case "version":
		version, dirty, err := runner.Version()
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q (want up, down or version)", command)
	}
}
