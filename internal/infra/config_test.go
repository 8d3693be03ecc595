package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setLocalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CATALOG_BACKEND", "sqlite")
	t.Setenv("STORAGE_BACKEND", "filesystem")
	t.Setenv("GENERATION_BACKEND", "synthetic")
	for _, key := range []string{
		"SQLITE_PATH", "STORAGE_PATH", "MAX_RETRIES", "BASE_DELAY_MS", "MAX_DELAY_MS",
		"IMAGE_GATE_FLAG", "IMAGE_DEFAULT_REQUIRED", "PROMPT_SEED_LOOKUP", "WORKER_CONCURRENCY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	setLocalEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.BaseDelay)
	assert.Equal(t, 60*time.Second, cfg.MaxDelay)
	assert.Equal(t, "image_required", cfg.ImageGateFlag)
	assert.True(t, cfg.ImageDefaultRequired)
	assert.True(t, cfg.PromptSeedLookup)
	assert.Equal(t, "./petfood.db", cfg.SQLitePath)
	assert.Equal(t, "./storage", cfg.StoragePath)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
}

func TestLoadConfigOverrides(t *testing.T) {
	setLocalEnv(t)
	t.Setenv("MAX_RETRIES", "2")
	t.Setenv("BASE_DELAY_MS", "250")
	t.Setenv("MAX_DELAY_MS", "4000")
	t.Setenv("PROMPT_SEED_LOOKUP", "false")
	t.Setenv("IMAGE_GATE_FLAG", "needs_photo")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, ,https://ops.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.BaseDelay)
	assert.Equal(t, 4*time.Second, cfg.MaxDelay)
	assert.False(t, cfg.PromptSeedLookup)
	assert.Equal(t, "needs_photo", cfg.ImageGateFlag)
	assert.Equal(t, []string{"https://admin.example.com", "https://ops.example.com"}, cfg.CORSOrigins)
}

func TestLoadConfigIgnoresMalformedNumbers(t *testing.T) {
	setLocalEnv(t)
	t.Setenv("MAX_RETRIES", "many")
	t.Setenv("PROMPT_SEED_LOOKUP", "maybe")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.True(t, cfg.PromptSeedLookup)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			CatalogBackend:    CatalogDynamoDB,
			FoodTableName:     "foods",
			StorageBackend:    StorageS3,
			S3BucketName:      "images",
			GenerationBackend: GenerationBedrock,
			MaxRetries:        5,
			BaseDelay:         time.Second,
			MaxDelay:          time.Minute,
			WorkerConcurrency: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "dynamodb without table", mutate: func(c *Config) { c.FoodTableName = "" }, wantErr: "FOOD_TABLE_NAME"},
		{name: "postgres without url", mutate: func(c *Config) { c.CatalogBackend = CatalogPostgres }, wantErr: "DATABASE_URL"},
		{name: "unknown catalog", mutate: func(c *Config) { c.CatalogBackend = "redis" }, wantErr: "CATALOG_BACKEND"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.S3BucketName = "" }, wantErr: "S3_BUCKET_NAME"},
		{name: "http without base url", mutate: func(c *Config) { c.GenerationBackend = GenerationHTTP }, wantErr: "GENERATION_BASE_URL"},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, wantErr: "MAX_RETRIES"},
		{name: "base above max", mutate: func(c *Config) { c.BaseDelay = 2 * time.Minute }, wantErr: "BASE_DELAY_MS"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
