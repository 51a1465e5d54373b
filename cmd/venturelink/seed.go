package main

import (
	"fmt"
	"math/rand"
	"time"

	"venturelink/internal/db"
	"venturelink/internal/seed"
	"venturelink/internal/store"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo users, pitches and preferences",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "pitches",
			Aliases: []string{"n"},
			Usage:   "Number of demo pitches to create",
			Value:   12,
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Delete previously seeded pitches first",
		},
		&cli.Int64Flag{
			Name:  "rand-seed",
			Usage: "Random seed for reproducible data (0 uses the clock)",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := newLogger(cfg)

		ctx := c.Context

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger.Info("Connected to database")

		userRepo := store.NewUserRepository(pool)
		pitchRepo := store.NewPitchRepository(pool)
		preferenceRepo := store.NewInvestorPreferenceRepository(pool)

		users, err := seed.SeedFakeUsers(ctx, userRepo)
		if err != nil {
			return err
		}
		logger.WithField("count", users).Info("users seeded")

		if c.Bool("reset") {
			deleted, err := seed.ResetFakePitches(ctx, pitchRepo)
			if err != nil {
				return err
			}
			logger.WithField("count", deleted).Info("seeded pitches removed")
		}

		randSeed := c.Int64("rand-seed")
		if randSeed == 0 {
			randSeed = time.Now().UnixNano()
		}

		pitches, err := seed.SeedFakePitches(ctx, pitchRepo, rand.New(rand.NewSource(randSeed)), c.Int("pitches"))
		if err != nil {
			return err
		}
		logger.WithField("count", pitches).Info("pitches seeded")

		prefs, err := seed.SeedFakePreferences(ctx, preferenceRepo)
		if err != nil {
			return err
		}
		logger.WithField("count", prefs).Info("investor preferences seeded")

		return nil
	},
}
