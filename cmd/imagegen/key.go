package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"petfood/internal/storage"
)

func newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <item name>",
		Short: "Print the storage key for an item name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), storage.StorageKey(strings.Join(args, " ")))
			return err
		},
	}
}
