package store

import (
	"context"
	"testing"

	"venturelink/pkg/types"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func TestUserRepository_UpsertIdentityKeepsUserType(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`INSERT INTO venturelink.users \(id,user_type,email,given_name,family_name,created_at,updated_at\) VALUES .* ON CONFLICT \(id\) DO UPDATE SET email = EXCLUDED.email`).
		WithArgs("user-1", "investor", "ada@example.com", "Ada", nil, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.UpsertIdentity(context.Background(), "user-1", types.UserTypeInvestor, " ada@example.com ", "Ada", "  ")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UserNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT .* FROM venturelink.users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(userColumns))

	_, err := repo.User(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
