package cmd

import (
	"os"

	"filesorter/internal/config"
	"filesorter/internal/history"
	"filesorter/internal/report"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "Show recent sort runs, or the files moved by one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := report.NewPrinter(cmd.OutOrStdout())

			path := config.HistoryPath()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				printer.Runs(nil)
				return nil
			}

			store, err := history.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				entries, err := store.Entries(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printer.Entries(entries)
				return nil
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printer.Runs(runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	return cmd
}
