package seed

import (
	"context"
	"fmt"

	"venturelink/pkg/types"
)

type PreferenceWriter interface {
	UpsertPreference(ctx context.Context, pref *types.InvestorPreference) error
}

var fakePreferences = [][]string{
	{"climate", "agtech"},
	{"fintech", "health", "logistics"},
}

func SeedFakePreferences(ctx context.Context, prefs PreferenceWriter) (int, error) {
	seeded := 0
	for i, userID := range fakeUserIDs(types.UserTypeInvestor) {
		pref := &types.InvestorPreference{
			UserID:          userID,
			Sectors:         fakePreferences[i%len(fakePreferences)],
			InvestmentRange: "$100k-$1M",
			RiskAppetite:    "medium",
		}
		if err := prefs.UpsertPreference(ctx, pref); err != nil {
			return seeded, fmt.Errorf("failed to seed preferences for %s: %w", userID, err)
		}
		seeded++
	}
	return seeded, nil
}
