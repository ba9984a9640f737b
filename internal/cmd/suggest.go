package cmd

import (
	"fmt"
	"os"

	"filesorter/internal/config"
	"filesorter/internal/history"
	"filesorter/internal/mime"
	"filesorter/internal/patterns/learning"
	"filesorter/internal/report"

	"github.com/spf13/cobra"
)

func newRulesSuggestCmd(opts *rootOptions) *cobra.Command {
	cfg := learning.DefaultConfig()
	var apply bool

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest rules for files that keep going unmatched",
		Long: `Look through the history of recent runs for files no rule matched, group
them by extension (or by content type when they have none) and propose a rule
for each large enough group. With --apply the proposals are appended to the
rule list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := report.NewPrinter(cmd.OutOrStdout())

			path := opts.settingsPath()
			s, err := config.Load(path)
			if err != nil {
				return err
			}

			dbPath := config.HistoryPath()
			if _, err := os.Stat(dbPath); os.IsNotExist(err) {
				printer.Suggestions(nil)
				return nil
			}
			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			engine, err := learning.NewEngine(store, cfg, mime.NewMagicDetector())
			if err != nil {
				return err
			}
			suggestions, err := engine.Suggest(cmd.Context(), s.RuleSet())
			if err != nil {
				return err
			}
			printer.Suggestions(suggestions)

			if !apply || len(suggestions) == 0 {
				return nil
			}
			for _, sg := range suggestions {
				s.SortPatterns = append(s.SortPatterns, sg.Rule)
			}
			if err := s.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d rules to %s\n", len(suggestions), path)
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.RecencyDays, "days", cfg.RecencyDays, "only consider runs from the last N days")
	cmd.Flags().IntVar(&cfg.MinOccurrences, "min", cfg.MinOccurrences, "minimum number of files before a rule is suggested")
	cmd.Flags().IntVar(&cfg.MaxSuggestions, "max", cfg.MaxSuggestions, "maximum number of suggestions (0 for no limit)")
	cmd.Flags().BoolVar(&cfg.ContentSampling, "sniff", cfg.ContentSampling, "sniff extensionless files still in place for a MIME type")
	cmd.Flags().BoolVar(&apply, "apply", false, "append the suggested rules to the settings file")
	return cmd
}
