package types

import "time"

type Subscription struct {
	UserID               string     `db:"user_id"`
	StripeCustomerID     *string    `db:"stripe_customer_id"`
	StripeSubscriptionID *string    `db:"stripe_subscription_id"`
	Status               string     `db:"status"`
	PriceID              *string    `db:"price_id"`
	CurrentPeriodEnd     *time.Time `db:"current_period_end"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

type Transaction struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	StripeSessionID string    `db:"stripe_session_id"`
	AmountCents     int64     `db:"amount_cents"`
	Currency        string    `db:"currency"`
	CreatedAt       time.Time `db:"created_at"`
}

// Active reports whether the subscription currently entitles the user to
// paid features.
func (s *Subscription) Active() bool {
	if s.Status != "active" && s.Status != "trialing" {
		return false
	}
	return s.CurrentPeriodEnd == nil || s.CurrentPeriodEnd.After(time.Now())
}
