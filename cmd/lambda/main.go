package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"

	"petfood/internal/app"
	"petfood/internal/infra"
	"petfood/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "lambda").Logger()

	rt, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("lambda: failed to build pipeline")
	}
	defer rt.Close()

	lambda.Start(func(ctx context.Context, envelope map[string]any) (pipeline.Response, error) {
		return rt.Orchestrator.HandleEvent(ctx, envelope), nil
	})
}
