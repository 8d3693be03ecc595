package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"petfood/internal/infra"
	"petfood/internal/worker"
)

func newEnqueueCmd() *cobra.Command {
	var eventPath string
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue an event for the worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envelope, err := readEnvelope(cmd, eventPath)
			if err != nil {
				return err
			}
			cfg, err := infra.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx := cmd.Context()
			pool, err := infra.NewDBPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "imagegen").Logger()
			id, err := worker.NewPostgresQueue(infra.NewSQLRunner(pool, logger)).Enqueue(ctx, envelope)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
	cmd.Flags().StringVarP(&eventPath, "event", "e", "-", "Path to the event envelope JSON, or - for stdin")
	return cmd
}
