// Package matching ranks pitches against an investor's preferences using an
// external scoring model.
package matching

import (
	"context"
	"sort"

	"venturelink/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Score is the model's verdict on one preference and pitch pair.
type Score struct {
	MatchScore  float64 `json:"matchScore"`
	MatchReason string  `json:"matchReason"`
}

// Scorer rates how well a pitch fits an investor's preferences.
type Scorer interface {
	Score(ctx context.Context, prefs *types.InvestorPreference, pitch *types.Pitch) (Score, error)
}

type Matcher struct {
	logger      *logrus.Logger
	scorer      Scorer
	concurrency int
}

func NewMatcher(logger *logrus.Logger, scorer Scorer, concurrency int) *Matcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Matcher{
		logger:      logger,
		scorer:      scorer,
		concurrency: concurrency,
	}
}

// GetAIMatches scores every pitch once and returns them best first. Pitches
// whose scoring failed are left out.
func (m *Matcher) GetAIMatches(ctx context.Context, prefs *types.InvestorPreference, pitches []*types.Pitch) ([]types.MatchResult, error) {
	scored := make([]*types.MatchResult, len(pitches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, pitch := range pitches {
		g.Go(func() error {
			score, err := m.scorer.Score(gctx, prefs, pitch)
			if err != nil {
				m.logger.WithError(err).WithField("pitch_id", pitch.ID).Warn("failed to score pitch")
				return nil
			}
			scored[i] = &types.MatchResult{
				Pitch:       pitch,
				MatchScore:  clamp(score.MatchScore),
				MatchReason: score.MatchReason,
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]types.MatchResult, 0, len(scored))
	for _, r := range scored {
		if r != nil {
			results = append(results, *r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	return results, nil
}

func clamp(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
