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

const userTableName = "venturelink.users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool db.Querier
}

func NewUserRepository(pool db.Querier) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// UpsertIdentity records the identity provider's view of a user. The account
// type is only written on first insert; it never changes afterwards.
func (r *UserRepository) UpsertIdentity(ctx context.Context, userID string, userType types.UserType, email, givenName, familyName string) error {
	now := time.Now()

	query, args, err := psql().
		Insert(userTableName).
		Columns("id", "user_type", "email", "given_name", "family_name", "created_at", "updated_at").
		Values(userID, string(userType), nullable(strings.TrimSpace(email)), nullable(strings.TrimSpace(givenName)), nullable(strings.TrimSpace(familyName)), now, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, given_name = EXCLUDED.given_name, family_name = EXCLUDED.family_name, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert identity user query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert user identity fields: %w", err)
	}

	return nil
}
