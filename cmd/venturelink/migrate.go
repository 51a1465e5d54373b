package main

import (
	"fmt"

	"venturelink/internal/db"

	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:      "migrate",
	Usage:     "Run database migrations",
	ArgsUsage: "[up|down|status|redo]",
	Action: func(c *cli.Context) error {
		command := c.Args().First()
		if command == "" {
			command = "up"
		}

		switch command {
		case "up", "down", "status", "redo":
		default:
			return fmt.Errorf("unsupported migrate command %q", command)
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := newLogger(cfg)

		pool, err := db.Connect(c.Context, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(c.Context, pool, command); err != nil {
			return err
		}

		logger.WithField("command", command).Info("migrations complete")
		return nil
	},
}
