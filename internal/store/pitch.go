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

const pitchTableName = "venturelink.pitches"

var pitchColumns = utils.StructTagValues(types.Pitch{})

type PitchRepository struct {
	pool db.Querier
}

func NewPitchRepository(pool db.Querier) *PitchRepository {
	return &PitchRepository{pool: pool}
}

func (r *PitchRepository) Pitch(ctx context.Context, pitchID string) (*types.Pitch, error) {

	query, args, err := psql().Select(pitchColumns...).From(pitchTableName).
		Where(sq.Eq{"id": pitchID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pitch query: %w", err)
	}

	var pitch = new(types.Pitch)
	err = pgxscan.Get(ctx, r.pool, pitch, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrPitchNotFound
		}
		return nil, fmt.Errorf("failed to fetch pitch %s: %w", pitchID, err)
	}

	return pitch, nil
}

func (r *PitchRepository) PitchesByUser(ctx context.Context, userID string) ([]*types.Pitch, error) {

	query, args, err := psql().Select(pitchColumns...).From(pitchTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pitches by user query: %w", err)
	}

	var pitches = make([]*types.Pitch, 0)
	err = pgxscan.Select(ctx, r.pool, &pitches, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pitches for user %s: %w", userID, err)
	}

	return pitches, nil
}

// RecentPitches is the candidate pool for match generation.
func (r *PitchRepository) RecentPitches(ctx context.Context, limit uint64) ([]*types.Pitch, error) {

	query, args, err := psql().Select(pitchColumns...).From(pitchTableName).
		OrderBy("created_at desc").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recent pitches query: %w", err)
	}

	var pitches = make([]*types.Pitch, 0)
	err = pgxscan.Select(ctx, r.pool, &pitches, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent pitches: %w", err)
	}

	return pitches, nil
}

func (r *PitchRepository) CreatePitch(ctx context.Context, pitch *types.Pitch) error {

	now := time.Now()
	if pitch.ID == "" {
		pitch.ID = utils.NanoID()
	}
	pitch.UpdatedAt = now
	pitch.CreatedAt = now

	query, args, err := psql().Insert(pitchTableName).SetMap(utils.StructToMap(pitch)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert pitch query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create pitch: %w", err)
	}

	return nil
}

// DeletePitch removes the pitch; its file records and grants cascade.
func (r *PitchRepository) DeletePitch(ctx context.Context, pitchID string) error {

	query, args, err := psql().Delete(pitchTableName).Where(sq.Eq{"id": pitchID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete pitch query for pitch %s: %w", pitchID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete pitch %s: %w", pitchID, err)
	}

	return nil
}
