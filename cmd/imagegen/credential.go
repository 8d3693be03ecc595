package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"petfood/internal/infra"
	"petfood/internal/infra/credentials"
)

func newCredentialCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "set-api-key",
		Short: "Store the http generation backend API key in Postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key = strings.TrimSpace(key)
			if key == "" {
				key = strings.TrimSpace(os.Getenv("GENERATION_API_KEY"))
			}
			if key == "" {
				return fmt.Errorf("API key is required via --key or GENERATION_API_KEY")
			}
			cfg := &infra.Config{DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")), WorkerConcurrency: 1}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			pool, err := infra.NewDBPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := infra.NewLogger("cli").With().Str("cmd", "imagegen").Logger()
			store := credentials.NewStore(infra.NewSQLRunner(pool, logger))
			if err := store.SetToken(ctx, credentials.ProviderHTTPGeneration, key, map[string]any{
				"set_at": time.Now().UTC().Format(time.RFC3339),
			}); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "generation API key stored")
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "API key (falls back to GENERATION_API_KEY)")
	return cmd
}
