package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by the *_BACKEND keys.
const (
	CatalogDynamoDB = "dynamodb"
	CatalogPostgres = "postgres"
	CatalogSQLite   = "sqlite"

	StorageS3         = "s3"
	StorageFilesystem = "filesystem"

	GenerationBedrock   = "bedrock"
	GenerationHTTP      = "http"
	GenerationSynthetic = "synthetic"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	AWSRegion   string

	CatalogBackend string
	FoodTableName  string
	SQLitePath     string

	StorageBackend string
	S3BucketName   string
	StoragePath    string
	GeneratedBy    string

	GenerationBackend string
	BedrockModelID    string
	GenerationBaseURL string
	GenerationAPIKey  string
	GenerationTimeout time.Duration
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration

	ImageGateFlag        string
	ImageDefaultRequired bool
	PromptSeedLookup     bool

	WorkerConcurrency  int
	WorkerPollInterval time.Duration
	WorkerMaxAttempts  int
	WorkerRetryDelay   time.Duration
	WorkerStaleAfter   time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string
}

// LoadConfig loads configuration from environment variables, applies defaults
// and validates backend-specific requirements.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AWSRegion:   getEnv("AWS_REGION", "us-east-1"),

		CatalogBackend: strings.ToLower(getEnv("CATALOG_BACKEND", CatalogDynamoDB)),
		FoodTableName:  os.Getenv("FOOD_TABLE_NAME"),
		SQLitePath:     getEnv("SQLITE_PATH", "./petfood.db"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageS3)),
		S3BucketName:   os.Getenv("S3_BUCKET_NAME"),
		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		GeneratedBy:    getEnv("GENERATED_BY", "petfood-pipeline"),

		GenerationBackend: strings.ToLower(getEnv("GENERATION_BACKEND", GenerationBedrock)),
		BedrockModelID:    getEnv("BEDROCK_MODEL_ID", "amazon.titan-image-generator-v2:0"),
		GenerationBaseURL: os.Getenv("GENERATION_BASE_URL"),
		GenerationAPIKey:  os.Getenv("GENERATION_API_KEY"),
		GenerationTimeout: time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 60)),
		MaxRetries:        getEnvInt("MAX_RETRIES", 5),
		BaseDelay:         getEnvDuration("BASE_DELAY_MS", time.Millisecond, time.Second),
		MaxDelay:          getEnvDuration("MAX_DELAY_MS", time.Millisecond, 60*time.Second),

		ImageGateFlag:        getEnv("IMAGE_GATE_FLAG", "image_required"),
		ImageDefaultRequired: getEnvBool("IMAGE_DEFAULT_REQUIRED", true),
		PromptSeedLookup:     getEnvBool("PROMPT_SEED_LOOKUP", true),

		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 4),
		WorkerPollInterval: getEnvDuration("WORKER_POLL_INTERVAL_MS", time.Millisecond, 2*time.Second),
		WorkerMaxAttempts:  getEnvInt("WORKER_MAX_ATTEMPTS", 3),
		WorkerRetryDelay:   time.Second * time.Duration(getEnvInt("WORKER_RETRY_DELAY_SECONDS", 60)),
		WorkerStaleAfter:   time.Second * time.Duration(getEnvInt("WORKER_STALE_AFTER_SECONDS", 900)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:      getEnvList("CORS_ALLOWED_ORIGINS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	var errs []error

	switch c.CatalogBackend {
	case CatalogDynamoDB:
		if c.FoodTableName == "" {
			errs = append(errs, errors.New("FOOD_TABLE_NAME is required for the dynamodb catalog"))
		}
	case CatalogPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres catalog"))
		}
	case CatalogSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported CATALOG_BACKEND %q", c.CatalogBackend))
	}

	switch c.StorageBackend {
	case StorageS3:
		if c.S3BucketName == "" {
			errs = append(errs, errors.New("S3_BUCKET_NAME is required for s3 storage"))
		}
	case StorageFilesystem:
		if c.StoragePath == "" {
			errs = append(errs, errors.New("STORAGE_PATH is required for filesystem storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend))
	}

	switch c.GenerationBackend {
	case GenerationBedrock, GenerationSynthetic:
	case GenerationHTTP:
		if c.GenerationBaseURL == "" {
			errs = append(errs, errors.New("GENERATION_BASE_URL is required for the http generation backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported GENERATION_BACKEND %q", c.GenerationBackend))
	}

	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("MAX_RETRIES must not be negative"))
	}
	if c.BaseDelay > c.MaxDelay {
		errs = append(errs, errors.New("BASE_DELAY_MS must not exceed MAX_DELAY_MS"))
	}
	if c.WorkerConcurrency < 1 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be at least 1"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration reads an integer count of unit.
func getEnvDuration(key string, unit, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return time.Duration(i) * unit
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
