package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from .env, environment variables and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	JWTSecret   string
	TokenTTL    time.Duration
	LogLevel    string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIURL        string
	Currency            string

	AllowedOrigins []string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	IdempotencyTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	NewRelicAppName    string
	NewRelicLicenseKey string

	ReconcileInterval time.Duration
	ReconcileAfter    time.Duration
	ReconcileBatch    int
	WorkerPoolSize    int
	ShutdownTimeout   time.Duration
}

const (
	defaultRunAddress        = ":8080"
	defaultJWTSecret         = "change-me-in-production"
	defaultTokenTTL          = 24 * time.Hour
	defaultLogLevel          = "info"
	defaultCurrency          = "inr"
	defaultAllowedOrigins    = "http://localhost:5173"
	defaultIdempotencyTTL    = 24 * time.Hour
	defaultKafkaTopic        = "payments"
	defaultNewRelicAppName   = "schoolpay"
	defaultReconcileInterval = time.Minute
	defaultReconcileAfter    = 15 * time.Minute
	defaultReconcileBatch    = 32
	defaultWorkerPoolSize    = 4
	defaultShutdownTimeout   = 10 * time.Second
	defaultDotEnvPath        = ".env"
)

// Load parses configuration from an optional .env file, environment variables and flags.
func Load() (*Config, error) {
	path := defaultDotEnvPath
	if v, ok := os.LookupEnv("DOTENV_PATH"); ok && v != "" {
		path = v
	}
	if err := loadDotEnv(path); err != nil {
		return nil, err
	}
	return load(os.Args[1:], os.LookupEnv)
}

// loadDotEnv exports variables from path without overriding the real environment.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	runAddress := getString(lookup, "RUN_ADDRESS", "")
	if runAddress == "" {
		if port := getString(lookup, "PORT", ""); port != "" {
			runAddress = ":" + port
		} else {
			runAddress = defaultRunAddress
		}
	}

	cfg := &Config{
		RunAddress:          runAddress,
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		JWTSecret:           getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:            getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
		StripeSecretKey:     getString(lookup, "STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getString(lookup, "STRIPE_WEBHOOK_SECRET", ""),
		StripeAPIURL:        getString(lookup, "STRIPE_API_URL", ""),
		Currency:            strings.ToLower(getString(lookup, "PAYMENT_CURRENCY", defaultCurrency)),
		RedisAddr:           getString(lookup, "REDIS_ADDR", ""),
		RedisPassword:       getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:             getInt(lookup, "REDIS_DB", 0),
		IdempotencyTTL:      getDuration(lookup, "IDEMPOTENCY_TTL", defaultIdempotencyTTL),
		KafkaTopic:          getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		NewRelicAppName:     getString(lookup, "NEW_RELIC_APP_NAME", defaultNewRelicAppName),
		NewRelicLicenseKey:  getString(lookup, "NEW_RELIC_LICENSE_KEY", ""),
		ReconcileInterval:   getDuration(lookup, "RECONCILE_INTERVAL", defaultReconcileInterval),
		ReconcileAfter:      getDuration(lookup, "RECONCILE_AFTER", defaultReconcileAfter),
		ReconcileBatch:      getInt(lookup, "RECONCILE_BATCH", defaultReconcileBatch),
		WorkerPoolSize:      getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	flags := flag.NewFlagSet("schoolpay", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var (
		origins              = getString(lookup, "CORS_ALLOWED_ORIGINS", defaultAllowedOrigins)
		brokers              = getString(lookup, "KAFKA_BROKERS", "")
		reconcileIntervalStr = cfg.ReconcileInterval.String()
		shutdownTimeoutStr   = cfg.ShutdownTimeout.String()
	)

	flags.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	flags.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	flags.StringVar(&cfg.Currency, "currency", cfg.Currency, "Payment intent currency")
	flags.StringVar(&origins, "cors-origins", origins, "Comma separated list of allowed CORS origins")
	flags.StringVar(&brokers, "kafka-brokers", brokers, "Comma separated list of Kafka brokers")
	flags.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for idempotency keys")
	flags.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconcile workers")
	flags.StringVar(&reconcileIntervalStr, "reconcile-interval", reconcileIntervalStr, "Interval between reconcile passes")
	flags.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	flags.IntVar(&cfg.ReconcileBatch, "reconcile-batch", cfg.ReconcileBatch, "Maximum payments per reconcile pass")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ReconcileInterval, err = time.ParseDuration(reconcileIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	cfg.AllowedOrigins = splitList(origins)
	cfg.KafkaBrokers = splitList(brokers)

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ReconcileBatch <= 0 {
		cfg.ReconcileBatch = defaultReconcileBatch
	}

	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}

	if cfg.ReconcileAfter <= 0 {
		cfg.ReconcileAfter = defaultReconcileAfter
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	cfg.Currency = strings.ToLower(strings.TrimSpace(cfg.Currency))
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("stripe secret key must be provided")
	}

	if cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
