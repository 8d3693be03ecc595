package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"petfood/internal/app"
	"petfood/internal/catalog"
	"petfood/internal/infra"
)

// localDefaults are applied by --local for keys the environment leaves unset.
var localDefaults = map[string]string{
	"CATALOG_BACKEND":    infra.CatalogSQLite,
	"STORAGE_BACKEND":    infra.StorageFilesystem,
	"GENERATION_BACKEND": infra.GenerationSynthetic,
}

func newProcessCmd() *cobra.Command {
	var (
		eventPath string
		local     bool
	)
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run one event through the pipeline",
		Long: "Runs an event envelope through validation, prompt, generation, storage and catalog update " +
			"and prints the response. --local uses sqlite, the filesystem and synthetic images, and " +
			"registers the item in the local catalog first.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envelope, err := readEnvelope(cmd, eventPath)
			if err != nil {
				return err
			}
			if local {
				for key, value := range localDefaults {
					if os.Getenv(key) == "" {
						if err := os.Setenv(key, value); err != nil {
							return err
						}
					}
				}
			}
			cfg, err := infra.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "imagegen").Logger()
			if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
				logger = zerolog.Nop()
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if local && cfg.CatalogBackend == infra.CatalogSQLite {
				if err := registerLocalItem(ctx, cfg.SQLitePath, envelope); err != nil {
					return err
				}
			}

			rt, err := app.Build(ctx, cfg, logger, generationOptions...)
			if err != nil {
				return err
			}
			defer rt.Close()

			resp := rt.Orchestrator.HandleEvent(ctx, envelope)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if !resp.Body.Success {
				return fmt.Errorf("event failed: %s", resp.Body.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&eventPath, "event", "e", "-", "Path to the event envelope JSON, or - for stdin")
	cmd.Flags().BoolVar(&local, "local", false, "Use local backends and seed the item into the sqlite catalog")
	cmd.Flags().BoolP("quiet", "q", false, "Suppress pipeline logs")
	return cmd
}

// registerLocalItem makes sure the envelope's item exists in the sqlite
// catalog so the catalog stage has something to update.
func registerLocalItem(ctx context.Context, path string, envelope map[string]any) error {
	detail, _ := envelope["detail"].(map[string]any)
	id := firstString(detail, "item_id", "food_id")
	if id == "" {
		return nil
	}
	name := firstString(detail, "item_name", "food_name")
	if name == "" {
		name = id
	}

	db, err := catalog.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()
	store, err := catalog.NewSQLiteStore(ctx, db)
	if err != nil {
		return err
	}
	return store.PutFood(ctx, catalog.Food{ID: id, Name: name})
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
