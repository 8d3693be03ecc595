package main

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"petfood/internal/event"
	"petfood/internal/prompt"
)

type promptPreview struct {
	ItemID     string `json:"item_id"`
	PromptType string `json:"prompt_type"`
	Length     int    `json:"length"`
	Prompt     string `json:"prompt"`
}

func newPromptCmd() *cobra.Command {
	var (
		eventPath  string
		seedLookup bool
	)
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Show the prompt an event would produce",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envelope, err := readEnvelope(cmd, eventPath)
			if err != nil {
				return err
			}
			task, err := event.NewValidator(zerolog.Nop()).Validate(envelope)
			if err != nil {
				return fmt.Errorf("invalid event: %w", err)
			}
			selector := prompt.NewSelector(prompt.NewComposer(prompt.DefaultVocabulary()), seedLookup)
			resolved := selector.Resolve(task)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(promptPreview{
				ItemID:     task.ItemID,
				PromptType: string(resolved.Kind),
				Length:     len(resolved.Text),
				Prompt:     resolved.Text,
			})
		},
	}
	cmd.Flags().StringVarP(&eventPath, "event", "e", "-", "Path to the event envelope JSON, or - for stdin")
	cmd.Flags().BoolVar(&seedLookup, "seed-lookup", true, "Consult the seed prompt table for non-manual items")
	return cmd
}
