package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/kinship/internal/core/resolve"
	"github.com/agenthands/kinship/internal/logging"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <id|Q-id|name>",
	Short: "Print the numeric Wikidata id for an id or a search term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolve.NewResolver(client, logging.New(cfg.Log)).Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}
