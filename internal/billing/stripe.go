// Package billing handles investor subscriptions paid through Stripe.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"venturelink/internal/utils"
	"venturelink/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

// ErrInvalidSignature covers every webhook payload that cannot be trusted,
// unsigned, tampered or unparseable alike.
var ErrInvalidSignature = errors.New("invalid webhook signature")

const statusActive = "active"

type SubscriptionStore interface {
	UpsertSubscription(ctx context.Context, sub *types.Subscription) error
	UpdateStatus(ctx context.Context, stripeSubscriptionID, status string, periodEnd *time.Time) error
	CreateTransaction(ctx context.Context, txn *types.Transaction) error
}

type checkoutSessions interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
}

type Service struct {
	logger        *logrus.Logger
	subscriptions SubscriptionStore
	sessions      checkoutSessions

	webhookSecret string
	priceID       string
	baseURL       string
}

func NewService(logger *logrus.Logger, subscriptions SubscriptionStore, secretKey, webhookSecret, priceID, baseURL string) *Service {
	return &Service{
		logger:        logger,
		subscriptions: subscriptions,
		sessions:      stripe.NewClient(secretKey).V1CheckoutSessions,
		webhookSecret: webhookSecret,
		priceID:       priceID,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
	}
}

// HandleWebhook verifies and applies one Stripe event.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	entry := s.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("%w: malformed checkout session: %v", ErrInvalidSignature, err)
		}
		return s.checkoutCompleted(ctx, entry, &session)

	case stripe.EventTypeCustomerSubscriptionUpdated, stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%w: malformed subscription: %v", ErrInvalidSignature, err)
		}
		return s.subscriptionChanged(ctx, entry, &sub)
	}

	entry.Debug("ignoring stripe event")
	return nil
}

func (s *Service) checkoutCompleted(ctx context.Context, entry *logrus.Entry, session *stripe.CheckoutSession) error {
	userID := session.Metadata["user_id"]
	if userID == "" {
		userID = session.ClientReferenceID
	}
	if userID == "" {
		entry.WithField("session_id", session.ID).Warn("checkout session carries no user id")
		return nil
	}

	sub := &types.Subscription{
		UserID:  userID,
		Status:  statusActive,
		PriceID: utils.TrimmedStringPtr(s.priceID),
	}
	if session.Customer != nil {
		sub.StripeCustomerID = utils.TrimmedStringPtr(session.Customer.ID)
	}
	if session.Subscription != nil {
		sub.StripeSubscriptionID = utils.TrimmedStringPtr(session.Subscription.ID)
		sub.CurrentPeriodEnd = periodEnd(session.Subscription)
	}

	err := s.subscriptions.UpsertSubscription(ctx, sub)
	if err != nil {
		return err
	}

	err = s.subscriptions.CreateTransaction(ctx, &types.Transaction{
		UserID:          userID,
		StripeSessionID: session.ID,
		AmountCents:     session.AmountTotal,
		Currency:        string(session.Currency),
	})
	if err != nil {
		return err
	}

	entry.WithField("user_id", userID).Info("subscription activated")
	return nil
}

func (s *Service) subscriptionChanged(ctx context.Context, entry *logrus.Entry, sub *stripe.Subscription) error {
	entry = entry.WithFields(logrus.Fields{
		"subscription_id": sub.ID,
		"status":          sub.Status,
	})

	err := s.subscriptions.UpdateStatus(ctx, sub.ID, string(sub.Status), periodEnd(sub))
	if errors.Is(err, types.ErrSubscriptionNotFound) {
		entry.Warn("status change for unknown subscription")
		return nil
	}
	if err != nil {
		return err
	}

	entry.Info("subscription status updated")
	return nil
}

func periodEnd(sub *stripe.Subscription) *time.Time {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].CurrentPeriodEnd == 0 {
		return nil
	}
	return utils.TimePtr(time.Unix(sub.Items.Data[0].CurrentPeriodEnd, 0).UTC())
}

// CreateCheckoutSession starts a subscription checkout and returns the hosted
// payment page URL.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID, email string) (string, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{Price: stripe.String(s.priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(s.baseURL + "/matches?checkout=success"),
		CancelURL:         stripe.String(s.baseURL + "/matches?checkout=cancelled"),
		ClientReferenceID: stripe.String(userID),
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.AddMetadata("user_id", userID)

	session, err := s.sessions.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session.URL, nil
}
