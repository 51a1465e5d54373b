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

const (
	subscriptionTableName = "venturelink.subscriptions"
	transactionTableName  = "venturelink.transactions"
)

var subscriptionColumns = utils.StructTagValues(types.Subscription{})

type SubscriptionRepository struct {
	pool db.Querier
}

func NewSubscriptionRepository(pool db.Querier) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) Subscription(ctx context.Context, userID string) (*types.Subscription, error) {
	query, args, err := psql().
		Select(subscriptionColumns...).
		From(subscriptionTableName).
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription query: %w", err)
	}

	var sub types.Subscription
	err = pgxscan.Get(ctx, r.pool, &sub, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}

	return &sub, nil
}

// UpsertSubscription is keyed by user; a repeat checkout replaces the
// customer and subscription references.
func (r *SubscriptionRepository) UpsertSubscription(ctx context.Context, sub *types.Subscription) error {
	sub.UpdatedAt = time.Now()

	query, args, err := psql().
		Insert(subscriptionTableName).
		Columns("user_id", "stripe_customer_id", "stripe_subscription_id", "status", "price_id", "current_period_end", "updated_at").
		Values(sub.UserID, sub.StripeCustomerID, sub.StripeSubscriptionID, sub.Status, sub.PriceID, sub.CurrentPeriodEnd, sub.UpdatedAt).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET stripe_customer_id = EXCLUDED.stripe_customer_id, stripe_subscription_id = EXCLUDED.stripe_subscription_id, status = EXCLUDED.status, price_id = COALESCE(EXCLUDED.price_id, subscriptions.price_id), current_period_end = COALESCE(EXCLUDED.current_period_end, subscriptions.current_period_end), updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert subscription query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert subscription")
}

// UpdateStatus applies a status change reported by the payment processor.
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, stripeSubscriptionID, status string, periodEnd *time.Time) error {
	query, args, err := psql().
		Update(subscriptionTableName).
		Set("status", status).
		Set("current_period_end", periodEnd).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"stripe_subscription_id": stripeSubscriptionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update subscription status query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update subscription %s: %w", stripeSubscriptionID, err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrSubscriptionNotFound
	}

	return nil
}

// CreateTransaction is idempotent on the checkout session id so redelivered
// webhooks do not double count.
func (r *SubscriptionRepository) CreateTransaction(ctx context.Context, txn *types.Transaction) error {
	txn.ID = utils.NanoID()
	txn.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(transactionTableName).
		SetMap(utils.StructToMap(txn)).
		Suffix("ON CONFLICT (stripe_session_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert transaction query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create transaction")
}
