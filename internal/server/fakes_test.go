package server

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"venturelink/internal"
	"venturelink/internal/access"
	"venturelink/internal/billing"
	"venturelink/internal/intake"
	"venturelink/internal/matching"
	"venturelink/internal/storage"
	"venturelink/internal/utils"
	"venturelink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator map[string]Identity

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (Identity, error) {
	id, ok := f[token]
	if !ok {
		return Identity{}, errors.New("unknown token")
	}
	return id, nil
}

type fakeCognito struct {
	signUpSub string
}

func (f *fakeCognito) SignUp(context.Context, *cognitoidentityprovider.SignUpInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error) {
	sub := f.signUpSub
	return &cognitoidentityprovider.SignUpOutput{UserSub: &sub}, nil
}

func (f *fakeCognito) ConfirmSignUp(context.Context, *cognitoidentityprovider.ConfirmSignUpInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error) {
	return &cognitoidentityprovider.ConfirmSignUpOutput{}, nil
}

func (f *fakeCognito) InitiateAuth(context.Context, *cognitoidentityprovider.InitiateAuthInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error) {
	return nil, errors.New("NotAuthorizedException")
}

func (f *fakeCognito) GlobalSignOut(context.Context, *cognitoidentityprovider.GlobalSignOutInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error) {
	return &cognitoidentityprovider.GlobalSignOutOutput{}, nil
}

type memStore struct {
	mu       sync.Mutex
	users    map[string]*types.User
	pitches  map[string]*types.Pitch
	files    map[string]*types.PitchFile
	grants   map[string]*types.UnlockGrant
	reports  []*types.Report
	prefs    map[string]*types.InvestorPreference
	subs     map[string]*types.Subscription
	newFiles []*types.PitchFile
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[string]*types.User),
		pitches: make(map[string]*types.Pitch),
		files:   make(map[string]*types.PitchFile),
		grants:  make(map[string]*types.UnlockGrant),
		prefs:   make(map[string]*types.InvestorPreference),
		subs:    make(map[string]*types.Subscription),
	}
}

func (m *memStore) User(_ context.Context, id string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) UpsertIdentity(_ context.Context, id string, userType types.UserType, email, given, family string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ut := string(userType)
	m.users[id] = &types.User{ID: id, UserType: &ut, Email: &email, GivenName: &given, FamilyName: &family}
	return nil
}

func (m *memStore) Pitch(_ context.Context, id string) (*types.Pitch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pitches[id]
	if !ok {
		return nil, types.ErrPitchNotFound
	}
	return p, nil
}

func (m *memStore) RecentPitches(context.Context, uint64) ([]*types.Pitch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Pitch
	for _, p := range m.pitches {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) CreatePitch(_ context.Context, p *types.Pitch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = utils.NanoID()
	m.pitches[p.ID] = p
	return nil
}

func (m *memStore) CreatePitchFile(_ context.Context, f *types.PitchFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = utils.NanoID()
	cp := *f
	m.files[f.ID] = &cp
	m.newFiles = append(m.newFiles, f)
	return nil
}

func (m *memStore) PitchFile(_ context.Context, id string) (*types.PitchFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return nil, types.ErrPitchFileNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memStore) PitchFilesByPitch(_ context.Context, pitchID string) ([]*types.PitchFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.PitchFile
	for _, f := range m.files {
		if f.PitchID == pitchID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) MarkQuarantined(_ context.Context, id string) error {
	return m.transition(id, func(f *types.PitchFile) { f.Quarantined, f.HasContactInfo = true, true })
}

func (m *memStore) MarkWatermarked(_ context.Context, id, path string) error {
	return m.transition(id, func(f *types.PitchFile) { f.Watermarked, f.WatermarkedPath = true, &path })
}

func (m *memStore) transition(id string, apply func(*types.PitchFile)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok || f.Terminal() {
		return types.ErrFileAlreadyTerminal
	}
	apply(f)
	return nil
}

func (m *memStore) CreateReport(_ context.Context, r *types.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

func (m *memStore) Grant(_ context.Context, viewerID, pitchID string) (*types.UnlockGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grants[viewerID+"/"+pitchID]
	if !ok {
		return nil, types.ErrGrantNotFound
	}
	return g, nil
}

func (m *memStore) CreateGrant(_ context.Context, g *types.UnlockGrant) (*types.UnlockGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := g.ViewerID + "/" + g.PitchID
	if existing, ok := m.grants[key]; ok {
		return existing, nil
	}
	g.ID = utils.NanoID()
	g.GrantedAt = time.Now()
	m.grants[key] = g
	return g, nil
}

func (m *memStore) Preference(_ context.Context, userID string) (*types.InvestorPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prefs[userID]
	if !ok {
		return nil, types.ErrPreferencesNotFound
	}
	return p, nil
}

func (m *memStore) UpsertPreference(_ context.Context, p *types.InvestorPreference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[p.UserID] = p
	return nil
}

func (m *memStore) Subscription(_ context.Context, userID string) (*types.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[userID]
	if !ok {
		return nil, types.ErrSubscriptionNotFound
	}
	return s, nil
}

func (m *memStore) UpsertSubscription(_ context.Context, s *types.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[s.UserID] = s
	return nil
}

func (m *memStore) UpdateStatus(context.Context, string, string, *time.Time) error {
	return types.ErrSubscriptionNotFound
}

func (m *memStore) CreateTransaction(context.Context, *types.Transaction) error {
	return nil
}

type recordingDispatcher struct {
	dispatched []*types.PitchFile
}

func (d *recordingDispatcher) Dispatch(_ context.Context, f *types.PitchFile) {
	d.dispatched = append(d.dispatched, f)
}

func (d *recordingDispatcher) Wait() {}

type fixedScorer struct{}

func (fixedScorer) Score(_ context.Context, _ *types.InvestorPreference, p *types.Pitch) (matching.Score, error) {
	return matching.Score{MatchScore: 0.5, MatchReason: "fits " + p.Title}, nil
}

const (
	testIntakeSecret  = "intake-secret"
	testStripeSecret  = "whsec_server_test"
	entrepreneurToken = "token-entrepreneur"
	investorToken     = "token-investor"
)

type testEnv struct {
	svc        *Service
	store      *memStore
	intake     *storage.MemoryBucket
	published  *storage.MemoryBucket
	dispatcher *recordingDispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := &types.Config{
		ServerPort:          8080,
		SessionMaxAgeSec:    3600,
		SignedURLTTLSec:     900,
		IntakeWebhookSecret: testIntakeSecret,
		CookieHashKey:       base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")),
		CookieBlockKey:      base64.StdEncoding.EncodeToString([]byte("abcdef0123456789abcdef0123456789")),
	}

	env := &testEnv{
		store:      newMemStore(),
		intake:     storage.NewMemoryBucket("pitch-uploads"),
		published:  storage.NewMemoryBucket("pitch-published"),
		dispatcher: &recordingDispatcher{},
	}

	entrepreneur, investor := string(types.UserTypeEntrepreneur), string(types.UserTypeInvestor)
	given := "Grace"
	env.store.users["ent-1"] = &types.User{ID: "ent-1", UserType: &entrepreneur, GivenName: &given}
	env.store.users["inv-1"] = &types.User{ID: "inv-1", UserType: &investor}
	env.store.pitches["pitch-1"] = &types.Pitch{ID: "pitch-1", UserID: "ent-1", Title: "Compostable Packaging", Summary: "Replace plastic mailers"}

	processor := intake.NewProcessor(logger, env.intake, env.published, env.store, env.store, env.store)
	gate := access.NewGate(logger, env.store, env.store, env.published, 15*time.Minute)
	matcher := matching.NewMatcher(logger, fixedScorer{}, 2)
	billingService := billing.NewService(logger, env.store, "sk_test_x", testStripeSecret, "price_123", "http://localhost:8080")

	auth := fakeAuthenticator{
		entrepreneurToken: {UserID: "ent-1"},
		investorToken:     {UserID: "inv-1", Email: "inv@example.com"},
	}

	svc, err := New(config, logger, &fakeCognito{signUpSub: "new-user"}, auth, Repositories{
		Users:         env.store,
		Pitches:       env.store,
		PitchFiles:    env.store,
		Preferences:   env.store,
		Subscriptions: env.store,
	}, env.intake, processor, env.dispatcher, gate, matcher, billingService)
	require.NoError(t, err)

	env.svc = svc
	return env
}

// session attaches an encrypted session cookie for the given access token.
func (e *testEnv) session(t *testing.T, r *http.Request, token string) *http.Request {
	t.Helper()
	value, err := e.svc.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, token)
	require.NoError(t, err)
	r.AddCookie(&http.Cookie{Name: internal.COOKIE_ACCESS_TOKEN_NAME, Value: value})
	return r
}
