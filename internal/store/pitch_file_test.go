package store

import (
	"context"
	"testing"
	"time"

	"venturelink/pkg/types"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock
}

func TestPitchFileRepository_MarkQuarantined(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		wantErr      error
	}{
		{name: "record still initial", rowsAffected: 1},
		{name: "record already terminal", rowsAffected: 0, wantErr: types.ErrFileAlreadyTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			repo := NewPitchFileRepository(mock)

			mock.ExpectExec(`UPDATE venturelink.pitch_files SET .*has_contact_info = .*quarantined = .* WHERE id = \$4 AND \(?quarantined = \$5 AND watermarked = \$6`).
				WithArgs(true, true, pgxmock.AnyArg(), "file-1", false, false).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.rowsAffected))

			err := repo.MarkQuarantined(context.Background(), "file-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPitchFileRepository_MarkWatermarkedIsConditional(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPitchFileRepository(mock)

	mock.ExpectExec(`UPDATE venturelink.pitch_files SET .*watermarked = .*watermarked_path = .* WHERE id = .* AND .*quarantined = .* AND watermarked = `).
		WithArgs(pgxmock.AnyArg(), true, "processed/pitches/p1/deck.pdf", "file-1", false, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.MarkWatermarked(context.Background(), "file-1", "processed/pitches/p1/deck.pdf")
	assert.ErrorIs(t, err, types.ErrFileAlreadyTerminal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPitchFileRepository_PitchFile(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPitchFileRepository(mock)

	now := time.Now()
	path := "processed/pitches/p1/deck.pdf"
	mock.ExpectQuery(`SELECT .* FROM venturelink.pitch_files WHERE id = \$1`).
		WithArgs("file-1").
		WillReturnRows(pgxmock.NewRows(pitchFileColumns).AddRow(
			"file-1", "p1", "pitches/p1/deck.pdf", "deck.pdf", "application/pdf", int64(1024),
			true, &path, false, false, now, now,
		))

	file, err := repo.PitchFile(context.Background(), "file-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", file.PitchID)
	assert.Equal(t, types.PitchFileStateWatermarked, file.State())
	assert.Equal(t, path, *file.WatermarkedPath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPitchFileRepository_PitchFileNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPitchFileRepository(mock)

	mock.ExpectQuery(`SELECT .* FROM venturelink.pitch_files`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(pitchFileColumns))

	_, err := repo.PitchFile(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrPitchFileNotFound)
}
