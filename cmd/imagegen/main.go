// Package main is the imagegen CLI for running and inspecting the pipeline locally.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"petfood/internal/event"
	"petfood/internal/generation"
)

// generationOptions are handed to the generation client built by process.
var generationOptions []generation.Option

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "imagegen",
		Short:         "Pet food image pipeline tools",
		Long:          "Runs catalog events through the image pipeline, previews prompts and derives storage keys.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newProcessCmd(), newPromptCmd(), newKeyCmd(), newEnqueueCmd(), newCredentialCmd())
	return root
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// readEnvelope loads an event envelope from path, or stdin when path is "-".
func readEnvelope(cmd *cobra.Command, path string) (map[string]any, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open event file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return event.ReadEnvelope(r)
}
