package main

import (
	"fmt"
	"os"

	"venturelink/internal/db"
	"venturelink/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var inspectCommand = &cli.Command{
	Name:      "inspect",
	Usage:     "Print a pitch with its files and moderation reports",
	ArgsUsage: "<pitch-id>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	},
	Action: func(c *cli.Context) error {
		pitchID := c.Args().First()
		if pitchID == "" {
			return fmt.Errorf("pitch id is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := c.Context

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		pitch, err := store.NewPitchRepository(pool).Pitch(ctx, pitchID)
		if err != nil {
			return fmt.Errorf("failed to load pitch: %w", err)
		}

		files, err := store.NewPitchFileRepository(pool).PitchFilesByPitch(ctx, pitchID)
		if err != nil {
			return fmt.Errorf("failed to load pitch files: %w", err)
		}

		reports, err := store.NewReportRepository(pool).ReportsByPitch(ctx, pitchID)
		if err != nil {
			return fmt.Errorf("failed to load reports: %w", err)
		}

		printer := pp.New()
		printer.SetOutput(os.Stdout)
		printer.SetColoringEnabled(!c.Bool("no-color"))
		printer.SetExportedOnly(true)

		printer.Println(pitch)
		printer.Println(files)
		printer.Println(reports)

		return nil
	},
}
