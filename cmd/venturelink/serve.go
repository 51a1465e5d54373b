package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venturelink/internal/access"
	"venturelink/internal/billing"
	"venturelink/internal/db"
	"venturelink/internal/intake"
	"venturelink/internal/matching"
	"venturelink/internal/server"
	"venturelink/internal/storage"
	"venturelink/internal/store"
	"venturelink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(config)

	awsConfig, err := loadAWSConfig(ctx, config)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)

	intakeBucket, publishedBucket := buildBuckets(config, awsConfig)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := store.NewUserRepository(pool)
	pitchRepo := store.NewPitchRepository(pool)
	pitchFileRepo := store.NewPitchFileRepository(pool)
	reportRepo := store.NewReportRepository(pool)
	grantRepo := store.NewGrantRepository(pool)
	preferenceRepo := store.NewInvestorPreferenceRepository(pool)
	subscriptionRepo := store.NewSubscriptionRepository(pool)

	processor := intake.NewProcessor(logger, intakeBucket, publishedBucket, pitchFileRepo, pitchRepo, reportRepo)

	var dispatcher intake.Dispatcher
	if config.IntakeWebhookURL != "" {
		dispatcher = intake.NewWebhookDispatcher(logger, nil, config.IntakeWebhookURL, config.IntakeWebhookSecret)
	} else {
		logger.Info("INTAKE_WEBHOOK_URL not set, processing uploads in-process")
		dispatcher = intake.NewLocalDispatcher(logger, processor)
	}

	gate := access.NewGate(logger, grantRepo, pitchFileRepo, publishedBucket, time.Duration(config.SignedURLTTLSec)*time.Second)

	var scorer matching.Scorer = matching.SectorScorer{}
	if config.GeminiAPIKey != "" {
		scorer, err = matching.NewGenAIScorer(ctx, config.GeminiAPIKey, config.GeminiModel)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, falling back to sector matching")
	}
	matcher := matching.NewMatcher(logger, scorer, config.MatchConcurrency)

	billingService := billing.NewService(logger, subscriptionRepo, config.StripeSecretKey, config.StripeWebhookSecret, config.StripePriceID, config.PublicBaseURL)

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initilaize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

	err = jwkCache.Register(context.Background(), jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register cognito jwk with cache: %w", err)
	}

	srv, err := server.New(
		config,
		logger,
		cognitoClient,
		server.NewJWKSAuthenticator(jwkCache, jwksURL),
		server.Repositories{
			Users:         userRepo,
			Pitches:       pitchRepo,
			PitchFiles:    pitchFileRepo,
			Preferences:   preferenceRepo,
			Subscriptions: subscriptionRepo,
		},
		intakeBucket,
		processor,
		dispatcher,
		gate,
		matcher,
		billingService,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = srv.Stop(shutdownCtx)
	dispatcher.Wait()
	return err
}

func buildBuckets(config *types.Config, awsConfig aws.Config) (intakeBucket, publishedBucket storage.SigningBucket) {
	if config.StorageBackend == "supabase" {
		return storage.NewSupabaseBucket(config.SupabaseProjectID, config.SupabaseServiceKey, config.S3IntakeBucket),
			storage.NewSupabaseBucket(config.SupabaseProjectID, config.SupabaseServiceKey, config.S3PublishedBucket)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return storage.NewS3Bucket(s3Client, config.S3IntakeBucket), storage.NewS3Bucket(s3Client, config.S3PublishedBucket)
}
