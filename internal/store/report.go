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

const reportTableName = "venturelink.reports"

var reportColumns = utils.StructTagValues(types.Report{})

type ReportRepository struct {
	pool db.Querier
}

func NewReportRepository(pool db.Querier) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// CreateReport files at most one report per pitch file; a second report for
// the same file is silently ignored.
func (r *ReportRepository) CreateReport(ctx context.Context, report *types.Report) error {
	report.ID = utils.NanoID()
	report.CreatedAt = time.Now()
	if report.Status == "" {
		report.Status = types.ReportStatusOpen
	}

	query, args, err := psql().
		Insert(reportTableName).
		SetMap(utils.StructToMap(report)).
		Suffix("ON CONFLICT (file_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert report query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create report")
}

func (r *ReportRepository) ReportsByPitch(ctx context.Context, pitchID string) ([]*types.Report, error) {
	query, args, err := psql().
		Select(reportColumns...).
		From(reportTableName).
		Where(sq.Eq{"pitch_id": pitchID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reports query: %w", err)
	}

	var reports []*types.Report
	err = pgxscan.Select(ctx, r.pool, &reports, query, args...)
	if err != nil {
		return nil, utils.ErrorWrapOrNil(err, "failed to fetch reports")
	}

	return reports, nil
}
