package store

import (
	"context"
	"fmt"
	"time"

	"venturelink/internal/db"
	"venturelink/internal/utils"
	"venturelink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const investorPreferenceTableName = "venturelink.investor_preferences"

var investorPreferenceColumns = utils.StructTagValues(types.InvestorPreference{})

type InvestorPreferenceRepository struct {
	pool db.Querier
}

func NewInvestorPreferenceRepository(pool db.Querier) *InvestorPreferenceRepository {
	return &InvestorPreferenceRepository{pool: pool}
}

func (r *InvestorPreferenceRepository) Preference(ctx context.Context, userID string) (*types.InvestorPreference, error) {
	query, args, err := psql().
		Select(investorPreferenceColumns...).
		From(investorPreferenceTableName).
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate investor preference query: %w", err)
	}

	var pref types.InvestorPreference
	err = pgxscan.Get(ctx, r.pool, &pref, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrPreferencesNotFound
		}
		return nil, fmt.Errorf("failed to fetch investor preference: %w", err)
	}

	return &pref, nil
}

func (r *InvestorPreferenceRepository) UpsertPreference(ctx context.Context, pref *types.InvestorPreference) error {
	pref.UpdatedAt = time.Now()
	if pref.Sectors == nil {
		pref.Sectors = []string{}
	}

	query, args, err := psql().
		Insert(investorPreferenceTableName).
		Columns("user_id", "sectors", "investment_range", "risk_appetite", "notes", "updated_at").
		Values(pref.UserID, pref.Sectors, pref.InvestmentRange, pref.RiskAppetite, pref.Notes, pref.UpdatedAt).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET sectors = EXCLUDED.sectors, investment_range = EXCLUDED.investment_range, risk_appetite = EXCLUDED.risk_appetite, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert investor preference query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert investor preference")
}
