// Package app assembles the pipeline from configuration for the binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog"

	"petfood/internal/catalog"
	"petfood/internal/event"
	"petfood/internal/generation"
	"petfood/internal/infra"
	"petfood/internal/infra/credentials"
	"petfood/internal/pipeline"
	"petfood/internal/prompt"
	"petfood/internal/providers/bedrock"
	"petfood/internal/providers/httpgen"
	"petfood/internal/providers/synthetic"
	"petfood/internal/storage"
)

// Runtime owns the wired pipeline and the connections behind it. Build it
// once at startup; it is not safe to call SQL concurrently.
type Runtime struct {
	Config       *infra.Config
	Logger       zerolog.Logger
	Validator    *event.Validator
	Prompts      *prompt.Selector
	Orchestrator *pipeline.Orchestrator

	aws     *aws.Config
	sql     *infra.SQLRunner
	closers []func()
}

// Build wires every stage according to cfg. genOpts are passed to the
// generation client.
func Build(ctx context.Context, cfg *infra.Config, logger zerolog.Logger, genOpts ...generation.Option) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger}

	backend, err := rt.generationBackend(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}
	writer, err := rt.objectWriter(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}
	store, err := rt.catalogStore(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}

	policy := generation.DefaultPolicy()
	policy.MaxRetries = cfg.MaxRetries
	policy.BaseDelay = cfg.BaseDelay
	policy.MaxDelay = cfg.MaxDelay

	composer := prompt.NewComposer(prompt.DefaultVocabulary(), prompt.WithLogger(logger))
	rt.Validator = event.NewValidator(logger)
	rt.Prompts = prompt.NewSelector(composer, cfg.PromptSeedLookup)

	opts := append([]generation.Option{generation.WithLogger(logger)}, genOpts...)
	rt.Orchestrator, err = pipeline.New(pipeline.Deps{
		Validator: rt.Validator,
		Prompts:   rt.Prompts,
		Generator: generation.NewClient(backend, policy, opts...),
		Artifacts: storage.NewArtifactStore(writer,
			storage.WithGeneratedBy(cfg.GeneratedBy),
			storage.WithLogger(logger)),
		Catalog: catalog.NewUpdater(store, catalog.WithLogger(logger)),
		Gate: pipeline.Gate{
			Flag:            cfg.ImageGateFlag,
			DefaultRequired: cfg.ImageDefaultRequired,
		},
		Logger: logger,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}

	logger.Info().
		Str("catalog", cfg.CatalogBackend).
		Str("storage", cfg.StorageBackend).
		Str("generation", cfg.GenerationBackend).
		Msg("app: pipeline ready")
	return rt, nil
}

// SQL returns the Postgres runner, connecting on first use.
func (rt *Runtime) SQL(ctx context.Context) (*infra.SQLRunner, error) {
	if rt.sql != nil {
		return rt.sql, nil
	}
	pool, err := infra.NewDBPool(ctx, rt.Config)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, pool.Close)
	rt.sql = infra.NewSQLRunner(pool, rt.Logger)
	return rt.sql, nil
}

// Close releases connections in reverse order of creation.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

func (rt *Runtime) awsConfig(ctx context.Context) (aws.Config, error) {
	if rt.aws != nil {
		return *rt.aws, nil
	}
	cfg, err := infra.LoadAWSConfig(ctx, rt.Config.AWSRegion)
	if err != nil {
		return aws.Config{}, err
	}
	rt.aws = &cfg
	return cfg, nil
}

func (rt *Runtime) generationBackend(ctx context.Context) (generation.Backend, error) {
	cfg := rt.Config
	switch cfg.GenerationBackend {
	case infra.GenerationBedrock:
		awsCfg, err := rt.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return bedrock.NewFromConfig(awsCfg, cfg.BedrockModelID, &rt.Logger)
	case infra.GenerationHTTP:
		apiKey, err := rt.generationAPIKey(ctx)
		if err != nil {
			return nil, err
		}
		return httpgen.NewClient(httpgen.Options{
			BaseURL:        cfg.GenerationBaseURL,
			APIKey:         apiKey,
			ModelID:        cfg.BedrockModelID,
			HTTPClient:     &http.Client{Timeout: cfg.GenerationTimeout},
			Logger:         &rt.Logger,
			RequestTimeout: cfg.GenerationTimeout,
		})
	case infra.GenerationSynthetic:
		rt.Logger.Warn().Msg("app: using synthetic image generation")
		return synthetic.New(rt.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported generation backend %q", cfg.GenerationBackend)
	}
}

// generationAPIKey prefers GENERATION_API_KEY and falls back to the token
// stored in Postgres when a database is configured.
func (rt *Runtime) generationAPIKey(ctx context.Context) (string, error) {
	if key := strings.TrimSpace(rt.Config.GenerationAPIKey); key != "" || rt.Config.DatabaseURL == "" {
		return key, nil
	}
	runner, err := rt.SQL(ctx)
	if err != nil {
		return "", err
	}
	key, err := credentials.NewStore(runner).Token(ctx, credentials.ProviderHTTPGeneration)
	if err != nil {
		rt.Logger.Warn().Err(err).Msg("app: failed to load generation api key from store")
		return "", nil
	}
	if key == "" {
		rt.Logger.Warn().Msg("app: no generation api key configured")
	}
	return key, nil
}

func (rt *Runtime) objectWriter(ctx context.Context) (storage.ObjectWriter, error) {
	cfg := rt.Config
	switch cfg.StorageBackend {
	case infra.StorageS3:
		awsCfg, err := rt.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewS3StoreFromConfig(awsCfg, cfg.S3BucketName)
	case infra.StorageFilesystem:
		return storage.NewFileStore(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

func (rt *Runtime) catalogStore(ctx context.Context) (catalog.Store, error) {
	cfg := rt.Config
	switch cfg.CatalogBackend {
	case infra.CatalogDynamoDB:
		awsCfg, err := rt.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.NewDynamoStoreFromConfig(awsCfg, cfg.FoodTableName)
	case infra.CatalogPostgres:
		runner, err := rt.SQL(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.NewPostgresStore(runner)
	case infra.CatalogSQLite:
		db, err := catalog.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { closeQuietly(db) })
		return catalog.NewSQLiteStore(ctx, db)
	default:
		return nil, fmt.Errorf("unsupported catalog backend %q", cfg.CatalogBackend)
	}
}

func closeQuietly(db *sql.DB) { _ = db.Close() }
