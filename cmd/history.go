package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"nearshare/internal/history"
)

// historyCmd represents the history command.
var historyCmd = newHistoryCmd()
var historyLimit int

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent transfers",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.Close()

			if !e.cfg.History.Enabled {
				return errors.New("history is disabled in the configuration")
			}
			store, err := history.Open(e.cfg.History.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			transfers, err := store.Recent(historyLimit)
			if err != nil {
				return err
			}
			return history.Render(e.out, transfers)
		},
	}
	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of transfers to show")

	return cmd
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
