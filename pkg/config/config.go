package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Checkout     CheckoutConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Webhook      WebhookConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CONTAINERDEPOT_APP_ENV" required:"true"`
	Port         string `envconfig:"CONTAINERDEPOT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CONTAINERDEPOT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CONTAINERDEPOT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CONTAINERDEPOT_DB_DSN"`
	Driver string `envconfig:"CONTAINERDEPOT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CONTAINERDEPOT_DB_HOST"`
	LegacyPort     int    `envconfig:"CONTAINERDEPOT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CONTAINERDEPOT_DB_USER"`
	LegacyPassword string `envconfig:"CONTAINERDEPOT_DB_PASSWORD"`
	LegacyName     string `envconfig:"CONTAINERDEPOT_DB_NAME"`
	LegacySSLMode  string `envconfig:"CONTAINERDEPOT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CONTAINERDEPOT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CONTAINERDEPOT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CONTAINERDEPOT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CONTAINERDEPOT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CONTAINERDEPOT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CONTAINERDEPOT_REDIS_ADDR"`
	Password     string        `envconfig:"CONTAINERDEPOT_REDIS_PASSWORD"`
	DB           int           `envconfig:"CONTAINERDEPOT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CONTAINERDEPOT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CONTAINERDEPOT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CONTAINERDEPOT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CONTAINERDEPOT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CONTAINERDEPOT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CONTAINERDEPOT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CONTAINERDEPOT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CONTAINERDEPOT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CONTAINERDEPOT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CONTAINERDEPOT_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"CONTAINERDEPOT_STRIPE_API_KEY"`
	Secret string `envconfig:"CONTAINERDEPOT_STRIPE_SECRET"`
	Env    string `envconfig:"CONTAINERDEPOT_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CheckoutConfig struct {
	Currency   string `envconfig:"CONTAINERDEPOT_CHECKOUT_CURRENCY" default:"usd"`
	SuccessURL string `envconfig:"CONTAINERDEPOT_CHECKOUT_SUCCESS_URL" default:"http://localhost:3000/checkout/success"`
	CancelURL  string `envconfig:"CONTAINERDEPOT_CHECKOUT_CANCEL_URL" default:"http://localhost:3000/checkout/cancel"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CONTAINERDEPOT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CONTAINERDEPOT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CONTAINERDEPOT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"CONTAINERDEPOT_GCS_BUCKET_NAME"`
}

type PubSubConfig struct {
	OrderEventsTopic string `envconfig:"CONTAINERDEPOT_PUBSUB_ORDER_EVENTS_TOPIC" default:"cd-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CONTAINERDEPOT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CONTAINERDEPOT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CONTAINERDEPOT_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"CONTAINERDEPOT_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
