package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"venturelink/pkg/types"
)

// SeedPrefix marks rows created by the seeder so they can be reset.
const SeedPrefix = "[seed] "

type fakePitchSeed struct {
	Title   string
	Summary string
	Sector  string
	Ask     string
	Returns string
}

var fakePitches = []fakePitchSeed{
	{"Compostable Mailers", "Home-compostable shipping envelopes for direct to consumer brands.", "climate", "$250k", "3x in 5 years"},
	{"Clinic Queue", "Walk-in scheduling for rural clinics over SMS.", "health", "$400k", "4x in 6 years"},
	{"Fleet Battery Swap", "Battery swapping depots for urban delivery scooters.", "mobility", "$1.2M", "5x in 7 years"},
	{"Ledgerly", "Bookkeeping autopilot for independent contractors.", "fintech", "$600k", "6x in 5 years"},
	{"Grain Sense", "Low-cost moisture sensors for smallholder grain storage.", "agtech", "$300k", "3x in 4 years"},
	{"Tutor Loop", "Peer tutoring marketplace for community colleges.", "education", "$350k", "4x in 5 years"},
	{"Cold Chain Lite", "Solar refrigerated lockers for last-mile pharmacy delivery.", "logistics", "$900k", "5x in 6 years"},
	{"ReThread", "Textile recycling kiosks placed in apparel stores.", "climate", "$500k", "3x in 5 years"},
}

type PitchWriter interface {
	PitchesByUser(ctx context.Context, userID string) ([]*types.Pitch, error)
	CreatePitch(ctx context.Context, pitch *types.Pitch) error
	DeletePitch(ctx context.Context, pitchID string) error
}

// ResetFakePitches deletes seeded pitches owned by the demo entrepreneurs.
func ResetFakePitches(ctx context.Context, pitches PitchWriter) (int, error) {
	deleted := 0
	for _, userID := range fakeUserIDs(types.UserTypeEntrepreneur) {
		owned, err := pitches.PitchesByUser(ctx, userID)
		if err != nil {
			return deleted, fmt.Errorf("failed to list pitches of %s: %w", userID, err)
		}
		for _, p := range owned {
			if !strings.HasPrefix(p.Summary, SeedPrefix) {
				continue
			}
			if err := pitches.DeletePitch(ctx, p.ID); err != nil {
				return deleted, err
			}
			deleted++
		}
	}
	return deleted, nil
}

// SeedFakePitches creates count pitches spread over the demo entrepreneurs.
func SeedFakePitches(ctx context.Context, pitches PitchWriter, rng *rand.Rand, count int) (int, error) {
	owners := fakeUserIDs(types.UserTypeEntrepreneur)
	if len(owners) == 0 {
		return 0, fmt.Errorf("no fake entrepreneurs available")
	}

	created := 0
	for i := 0; i < count; i++ {
		tmpl := fakePitches[rng.Intn(len(fakePitches))]
		pitch := &types.Pitch{
			UserID:             owners[rng.Intn(len(owners))],
			Title:              tmpl.Title,
			Summary:            SeedPrefix + tmpl.Summary,
			FullText:           tmpl.Summary + " Full business plan available after NDA.",
			Sector:             tmpl.Sector,
			InvestmentRequired: tmpl.Ask,
			EstimatedReturns:   tmpl.Returns,
		}

		if err := pitches.CreatePitch(ctx, pitch); err != nil {
			return created, fmt.Errorf("failed to create fake pitch: %w", err)
		}
		created++
	}

	return created, nil
}
