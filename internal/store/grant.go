package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"venturelink/internal/db"
	"venturelink/internal/utils"
	"venturelink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const grantTableName = "venturelink.unlock_grants"

var grantColumns = utils.StructTagValues(types.UnlockGrant{})

type GrantRepository struct {
	pool db.Querier
}

func NewGrantRepository(pool db.Querier) *GrantRepository {
	return &GrantRepository{pool: pool}
}

func (r *GrantRepository) Grant(ctx context.Context, viewerID, pitchID string) (*types.UnlockGrant, error) {
	query, args, err := psql().
		Select(grantColumns...).
		From(grantTableName).
		Where(sq.Eq{"viewer_id": viewerID, "pitch_id": pitchID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate grant query: %w", err)
	}

	var grant = new(types.UnlockGrant)
	err = pgxscan.Get(ctx, r.pool, grant, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrGrantNotFound
		}
		return nil, fmt.Errorf("failed to fetch grant: %w", err)
	}

	return grant, nil
}

// CreateGrant inserts the grant. Grants are never replaced: when the viewer
// already holds one for the pitch, the stored grant is returned unchanged.
func (r *GrantRepository) CreateGrant(ctx context.Context, grant *types.UnlockGrant) (*types.UnlockGrant, error) {
	grant.ID = utils.NanoID()
	grant.GrantedAt = time.Now()

	query, args, err := psql().
		Insert(grantTableName).
		SetMap(utils.StructToMap(grant)).
		Suffix("ON CONFLICT (viewer_id, pitch_id) DO NOTHING RETURNING " + strings.Join(grantColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate insert grant query: %w", err)
	}

	var created = new(types.UnlockGrant)
	err = pgxscan.Get(ctx, r.pool, created, query, args...)
	if err == nil {
		return created, nil
	}

	if !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("failed to create grant: %w", err)
	}

	return r.Grant(ctx, grant.ViewerID, grant.PitchID)
}
