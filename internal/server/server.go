package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"venturelink/internal/access"
	"venturelink/internal/billing"
	"venturelink/internal/intake"
	"venturelink/internal/matching"
	"venturelink/internal/storage"
	"venturelink/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type UserStore interface {
	User(ctx context.Context, userID string) (*types.User, error)
	UpsertIdentity(ctx context.Context, userID string, userType types.UserType, email, givenName, familyName string) error
}

type PitchStore interface {
	Pitch(ctx context.Context, pitchID string) (*types.Pitch, error)
	RecentPitches(ctx context.Context, limit uint64) ([]*types.Pitch, error)
	CreatePitch(ctx context.Context, pitch *types.Pitch) error
}

type PitchFileStore interface {
	CreatePitchFile(ctx context.Context, file *types.PitchFile) error
}

type PreferenceStore interface {
	Preference(ctx context.Context, userID string) (*types.InvestorPreference, error)
	UpsertPreference(ctx context.Context, pref *types.InvestorPreference) error
}

type SubscriptionReader interface {
	Subscription(ctx context.Context, userID string) (*types.Subscription, error)
}

type CognitoAPI interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
}

type Repositories struct {
	Users         UserStore
	Pitches       PitchStore
	PitchFiles    PitchFileStore
	Preferences   PreferenceStore
	Subscriptions SubscriptionReader
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	users         UserStore
	pitches       PitchStore
	pitchFiles    PitchFileStore
	preferences   PreferenceStore
	subscriptions SubscriptionReader

	cognitoClient CognitoAPI
	authenticator Authenticator
	cookie        *securecookie.SecureCookie

	uploads    storage.Signer
	processor  *intake.Processor
	dispatcher intake.Dispatcher
	gate       *access.Gate
	matcher    *matching.Matcher
	billing    *billing.Service

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognitoClient CognitoAPI,
	authenticator Authenticator,
	repos Repositories,
	uploads storage.Signer,
	processor *intake.Processor,
	dispatcher intake.Dispatcher,
	gate *access.Gate,
	matcher *matching.Matcher,
	billingService *billing.Service,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie block key: %w", err)
	}

	s := &Service{
		logger: logger,
		config: config,

		users:         repos.Users,
		pitches:       repos.Pitches,
		pitchFiles:    repos.PitchFiles,
		preferences:   repos.Preferences,
		subscriptions: repos.Subscriptions,

		cognitoClient: cognitoClient,
		authenticator: authenticator,
		cookie:        securecookie.New(hashKey, blockKey),

		uploads:    uploads,
		processor:  processor,
		dispatcher: dispatcher,
		gate:       gate,
		matcher:    matcher,
		billing:    billingService,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/register/confirm", s.handlePostRegisterConfirm, http.MethodPost)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)

	// Machine to machine endpoints authenticate themselves.
	r.HandleFunc("/hooks/pitch-files", s.handlePitchFileHook, http.MethodPost, http.MethodOptions)
	r.HandleFunc("/hooks/stripe", s.handleStripeHook, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/pitches/:pitchID", s.handleGetPitch, http.MethodGet)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.UserTypeEntrepreneur))

			r.HandleFunc("/pitches", s.handlePostPitch, http.MethodPost)
			r.HandleFunc("/pitches/:pitchID/files/upload-url", s.handlePostUploadURL, http.MethodPost)
			r.HandleFunc("/pitches/:pitchID/files", s.handlePostPitchFile, http.MethodPost)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.UserTypeInvestor))

			r.HandleFunc("/pitches/:pitchID/nda", s.handleGetNDA, http.MethodGet)
			r.HandleFunc("/pitches/:pitchID/nda", s.handlePostNDA, http.MethodPost)
			r.HandleFunc("/pitches/:pitchID/asset", s.handleGetAsset, http.MethodGet)

			r.HandleFunc("/matches", s.handleGetMatches, http.MethodGet)
			r.HandleFunc("/preferences", s.handlePutPreferences, http.MethodPut)
			r.HandleFunc("/billing/checkout", s.handlePostCheckout, http.MethodPost)
		})
	})
}

func (s *Service) userFromContext(ctx context.Context) (*types.User, error) {
	user, ok := ctx.Value(contextKeyUser).(*types.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}
