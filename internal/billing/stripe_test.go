package billing

import (
	"context"
	"io"
	"testing"
	"time"

	"venturelink/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

const testWebhookSecret = "whsec_test_secret"

type recordingStore struct {
	subs         []*types.Subscription
	transactions []*types.Transaction
	statuses     map[string]string
	periodEnds   map[string]*time.Time
	known        map[string]bool
}

func newRecordingStore(known ...string) *recordingStore {
	s := &recordingStore{
		statuses:   make(map[string]string),
		periodEnds: make(map[string]*time.Time),
		known:      make(map[string]bool),
	}
	for _, id := range known {
		s.known[id] = true
	}
	return s
}

func (r *recordingStore) UpsertSubscription(_ context.Context, sub *types.Subscription) error {
	r.subs = append(r.subs, sub)
	return nil
}

func (r *recordingStore) UpdateStatus(_ context.Context, id, status string, periodEnd *time.Time) error {
	if !r.known[id] {
		return types.ErrSubscriptionNotFound
	}
	r.statuses[id] = status
	r.periodEnds[id] = periodEnd
	return nil
}

func (r *recordingStore) CreateTransaction(_ context.Context, txn *types.Transaction) error {
	r.transactions = append(r.transactions, txn)
	return nil
}

type fakeSessions struct {
	params *stripe.CheckoutSessionCreateParams
}

func (f *fakeSessions) Create(_ context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	f.params = params
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}

func newTestService(store *recordingStore) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(logger, store, "sk_test_x", testWebhookSecret, "price_123", "https://venturelink.test/")
}

func sign(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Header, signed.Payload
}

const checkoutCompleted = `{
	"id": "evt_1",
	"object": "event",
	"api_version": "2019-02-19",
	"type": "checkout.session.completed",
	"data": {"object": {
		"id": "cs_test_1",
		"object": "checkout.session",
		"client_reference_id": "fallback-user",
		"metadata": {"user_id": "investor-1"},
		"customer": "cus_123",
		"subscription": "sub_123",
		"amount_total": 4900,
		"currency": "usd"
	}}
}`

func TestHandleWebhook_CheckoutCompleted(t *testing.T) {
	store := newRecordingStore()
	svc := newTestService(store)

	header, payload := sign(t, checkoutCompleted)
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, header))

	require.Len(t, store.subs, 1)
	sub := store.subs[0]
	assert.Equal(t, "investor-1", sub.UserID)
	assert.Equal(t, "active", sub.Status)
	require.NotNil(t, sub.StripeCustomerID)
	assert.Equal(t, "cus_123", *sub.StripeCustomerID)
	require.NotNil(t, sub.StripeSubscriptionID)
	assert.Equal(t, "sub_123", *sub.StripeSubscriptionID)

	require.Len(t, store.transactions, 1)
	txn := store.transactions[0]
	assert.Equal(t, "investor-1", txn.UserID)
	assert.Equal(t, "cs_test_1", txn.StripeSessionID)
	assert.Equal(t, int64(4900), txn.AmountCents)
	assert.Equal(t, "usd", txn.Currency)
}

func TestHandleWebhook_FallsBackToClientReference(t *testing.T) {
	store := newRecordingStore()
	svc := newTestService(store)

	header, payload := sign(t, `{
		"id": "evt_2", "object": "event", "type": "checkout.session.completed",
		"data": {"object": {"id": "cs_2", "object": "checkout.session", "client_reference_id": "investor-2", "amount_total": 100, "currency": "usd"}}
	}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, header))

	require.Len(t, store.subs, 1)
	assert.Equal(t, "investor-2", store.subs[0].UserID)
	assert.Nil(t, store.subs[0].StripeCustomerID)
}

func TestHandleWebhook_SubscriptionDeleted(t *testing.T) {
	store := newRecordingStore("sub_123")
	svc := newTestService(store)

	header, payload := sign(t, `{
		"id": "evt_3", "object": "event", "type": "customer.subscription.deleted",
		"data": {"object": {
			"id": "sub_123", "object": "subscription", "status": "canceled",
			"items": {"object": "list", "data": [{"id": "si_1", "object": "subscription_item", "current_period_end": 1767225600}]}
		}}
	}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, header))

	assert.Equal(t, "canceled", store.statuses["sub_123"])
	require.NotNil(t, store.periodEnds["sub_123"])
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *store.periodEnds["sub_123"])
}

func TestHandleWebhook_UnknownSubscriptionIsIgnored(t *testing.T) {
	svc := newTestService(newRecordingStore())

	header, payload := sign(t, `{
		"id": "evt_4", "object": "event", "type": "customer.subscription.updated",
		"data": {"object": {"id": "sub_unknown", "object": "subscription", "status": "past_due"}}
	}`)
	assert.NoError(t, svc.HandleWebhook(context.Background(), payload, header))
}

func TestHandleWebhook_OtherEventsAcknowledged(t *testing.T) {
	store := newRecordingStore()
	svc := newTestService(store)

	header, payload := sign(t, `{"id": "evt_5", "object": "event", "type": "invoice.paid", "data": {"object": {}}}`)
	assert.NoError(t, svc.HandleWebhook(context.Background(), payload, header))
	assert.Empty(t, store.subs)
}

func TestHandleWebhook_RejectsBadSignature(t *testing.T) {
	store := newRecordingStore()
	svc := newTestService(store)

	_, payload := sign(t, checkoutCompleted)

	err := svc.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	err = svc.HandleWebhook(context.Background(), payload, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	assert.Empty(t, store.subs)
	assert.Empty(t, store.transactions)
}

func TestCreateCheckoutSession(t *testing.T) {
	svc := newTestService(newRecordingStore())
	sessions := &fakeSessions{}
	svc.sessions = sessions

	url, err := svc.CreateCheckoutSession(context.Background(), "investor-1", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", url)

	p := sessions.params
	require.NotNil(t, p)
	assert.Equal(t, "subscription", *p.Mode)
	assert.Equal(t, "investor-1", *p.ClientReferenceID)
	assert.Equal(t, "ada@example.com", *p.CustomerEmail)
	assert.Equal(t, "investor-1", p.Metadata["user_id"])
	assert.Equal(t, "https://venturelink.test/matches?checkout=success", *p.SuccessURL)
	require.Len(t, p.LineItems, 1)
	assert.Equal(t, "price_123", *p.LineItems[0].Price)
}
