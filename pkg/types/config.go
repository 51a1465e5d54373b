package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"venturelink,public"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	PublicBaseURL   string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	SessionMaxAgeSec int `envconfig:"SESSION_MAX_AGE_SEC" default:"604800"` // 7 days

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Object storage. "s3" uses the AWS SDK against S3 or any S3 compatible
	// endpoint, "supabase" talks to Supabase Storage over its REST API.
	StorageBackend     string `envconfig:"STORAGE_BACKEND" default:"s3"`
	S3IntakeBucket     string `envconfig:"S3_INTAKE_BUCKET" default:"pitch-uploads"`
	S3PublishedBucket  string `envconfig:"S3_PUBLISHED_BUCKET" default:"pitch-published"`
	S3BaseEndpoint     string `envconfig:"S3_BASE_ENDPOINT"`
	S3Region           string `envconfig:"S3_REGION"`
	S3AccessKeyID      string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey  string `envconfig:"S3_SECRET_ACCESS_KEY"`
	SupabaseProjectID  string `envconfig:"SUPABASE_PROJECT_ID"`
	SupabaseServiceKey string `envconfig:"SUPABASE_SERVICE_KEY"`
	SignedURLTTLSec    int    `envconfig:"SIGNED_URL_TTL_SEC" default:"900"`

	// Intake webhook. When IntakeWebhookURL is empty, registered files are
	// processed in-process in the background.
	IntakeWebhookSecret string `envconfig:"INTAKE_WEBHOOK_SECRET"`
	IntakeWebhookURL    string `envconfig:"INTAKE_WEBHOOK_URL"`

	// Stripe
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePriceID       string `envconfig:"STRIPE_PRICE_ID"`

	// Gemini match scoring
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"`
	GeminiModel      string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	MatchConcurrency int    `envconfig:"MATCH_CONCURRENCY" default:"4"`
}
