package cmd

import (
	"fmt"
	"io"

	"filesorter/internal/analysis"
	"filesorter/internal/config"
	"filesorter/internal/errors"
	"filesorter/internal/log"
	"filesorter/internal/mime"
	"filesorter/internal/organize"
	"filesorter/internal/report"
	"filesorter/pkg/types"

	"github.com/spf13/cobra"
)

func newSortCmd(opts *rootOptions) *cobra.Command {
	var (
		noHistory bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort the files currently in the source directories",
		Long: `Move every file directly inside the configured sources into its category
folder under the destination. Files no rule matches stay where they are.
The run stops at once if a destination path exists but is not a directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.loadSettings()
			if err != nil {
				return err
			}

			if dryRun {
				return planSort(cmd.OutOrStdout(), s)
			}

			ss, err := openSession(cmd.Context(), cmd.OutOrStdout(), s, !noHistory)
			if err != nil {
				return err
			}

			if err := ss.sortSources(); err != nil {
				return ss.fail(err)
			}
			if ss.summary.Total() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to sort.")
			}
			ss.close(false)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this run in the history journal")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would be done without moving anything")

	return cmd
}

// planSort previews a sort. It creates no directories and takes no lock.
func planSort(w io.Writer, s *config.Settings) error {
	ignore, err := s.IgnoreList()
	if err != nil {
		return err
	}
	resolver, err := s.Resolver()
	if err != nil {
		return err
	}

	var candidates []types.FileCandidate
	for _, src := range s.Sources {
		found, err := organize.EnumerateCandidates(src, ignore)
		if err != nil {
			if errors.IsFileNotFound(err) {
				log.Warnf("Source %s does not exist yet", src)
				continue
			}
			return err
		}
		candidates = append(candidates, found...)
	}

	planner := analysis.NewPlanner(s.RuleSet(), resolver, mime.NewMagicDetector())
	plan := planner.Plan(candidates)

	printer := report.NewPrinter(w)
	for _, pl := range plan {
		printer.Planned(pl)
	}
	printer.PlanSummary(plan)
	return nil
}
