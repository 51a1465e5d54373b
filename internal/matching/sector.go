package matching

import (
	"context"
	"fmt"
	"strings"

	"venturelink/pkg/types"
)

// SectorScorer scores a pitch by whether its sector is one the investor
// follows. It is used when no model API key is configured.
type SectorScorer struct{}

func (SectorScorer) Score(_ context.Context, prefs *types.InvestorPreference, pitch *types.Pitch) (Score, error) {
	sector := strings.TrimSpace(pitch.Sector)
	for _, s := range prefs.Sectors {
		if strings.EqualFold(strings.TrimSpace(s), sector) {
			return Score{MatchScore: 0.8, MatchReason: fmt.Sprintf("Pitch is in the %s sector you follow.", sector)}, nil
		}
	}
	return Score{MatchScore: 0.2, MatchReason: "Pitch sector is outside your stated interests."}, nil
}
