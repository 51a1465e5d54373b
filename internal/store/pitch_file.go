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

const pitchFileTableName = "venturelink.pitch_files"

var pitchFileColumns = utils.StructTagValues(types.PitchFile{})

// stillInitial restricts an update to records that have not reached a
// terminal state, so two racing deliveries cannot both win.
var stillInitial = sq.Eq{"watermarked": false, "quarantined": false}

type PitchFileRepository struct {
	pool db.Querier
}

func NewPitchFileRepository(pool db.Querier) *PitchFileRepository {
	return &PitchFileRepository{pool: pool}
}

// PitchFile retrieves a single file record by ID
func (r *PitchFileRepository) PitchFile(ctx context.Context, id string) (*types.PitchFile, error) {
	query, args, err := psql().
		Select(pitchFileColumns...).
		From(pitchFileTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pitch file query: %w", err)
	}

	var file = new(types.PitchFile)
	err = pgxscan.Get(ctx, r.pool, file, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrPitchFileNotFound
		}
		return nil, fmt.Errorf("failed to fetch pitch file %s: %w", id, err)
	}

	return file, nil
}

// PitchFilesByPitch returns every file record of a pitch, newest first
func (r *PitchFileRepository) PitchFilesByPitch(ctx context.Context, pitchID string) ([]*types.PitchFile, error) {
	query, args, err := psql().
		Select(pitchFileColumns...).
		From(pitchFileTableName).
		Where(sq.Eq{"pitch_id": pitchID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pitch files query: %w", err)
	}

	var files = make([]*types.PitchFile, 0)
	err = pgxscan.Select(ctx, r.pool, &files, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch files for pitch %s: %w", pitchID, err)
	}

	return files, nil
}

// CreatePitchFile inserts a new record in its initial state
func (r *PitchFileRepository) CreatePitchFile(ctx context.Context, file *types.PitchFile) error {
	now := time.Now()
	if file.ID == "" {
		file.ID = utils.NanoID()
	}
	file.Watermarked = false
	file.WatermarkedPath = nil
	file.Quarantined = false
	file.HasContactInfo = false
	file.CreatedAt = now
	file.UpdatedAt = now

	query, args, err := psql().
		Insert(pitchFileTableName).
		SetMap(utils.StructToMap(file)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert pitch file query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create pitch file: %w", err)
	}

	return nil
}

// MarkQuarantined moves the record into the quarantined terminal state. It
// returns types.ErrFileAlreadyTerminal when the record had already left its
// initial state.
func (r *PitchFileRepository) MarkQuarantined(ctx context.Context, id string) error {
	return r.transition(ctx, id, map[string]any{
		"quarantined":      true,
		"has_contact_info": true,
		"updated_at":       time.Now(),
	})
}

// MarkWatermarked moves the record into the watermarked terminal state,
// recording where the published copy lives.
func (r *PitchFileRepository) MarkWatermarked(ctx context.Context, id, watermarkedPath string) error {
	return r.transition(ctx, id, map[string]any{
		"watermarked":      true,
		"watermarked_path": watermarkedPath,
		"updated_at":       time.Now(),
	})
}

func (r *PitchFileRepository) transition(ctx context.Context, id string, set map[string]any) error {
	query, args, err := psql().
		Update(pitchFileTableName).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Where(stillInitial).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate pitch file transition query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update pitch file %s: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrFileAlreadyTerminal
	}

	return nil
}
