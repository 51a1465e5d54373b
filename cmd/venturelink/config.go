package main

import (
	"context"
	"fmt"

	"venturelink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	if c.IntakeWebhookURL != "" && c.IntakeWebhookSecret == "" {
		return nil, fmt.Errorf("set INTAKE_WEBHOOK_SECRET when INTAKE_WEBHOOK_URL is set")
	}

	switch c.StorageBackend {
	case "s3":
	case "supabase":
		if c.SupabaseProjectID == "" || c.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("set SUPABASE_PROJECT_ID and SUPABASE_SERVICE_KEY for the supabase storage backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	return c, nil
}

func newLogger(c *types.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("invalid LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func loadAWSConfig(ctx context.Context, c *types.Config) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if c.S3Region != "" {
		opts = append(opts, config.WithRegion(c.S3Region))
	}
	// S3 compatible endpoints (MinIO, R2) usually hand out static keys.
	if c.S3AccessKeyID != "" && c.S3SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.S3AccessKeyID, c.S3SecretAccessKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return awsConfig, nil
}
