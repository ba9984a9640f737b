package cmd

import (
	"fmt"
	"strings"
	"time"

	"filesorter/internal/errors"
	"filesorter/internal/watch"

	"github.com/spf13/cobra"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		noHistory bool
		settle    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sort now, then keep sorting new files until interrupted",
		Long: `Sort the source directories once, then watch them and relocate each new
file once it has stopped changing. Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.loadSettings()
			if err != nil {
				return err
			}
			if len(s.Sources) == 0 {
				return errors.New("no source directories configured")
			}

			ss, err := openSession(cmd.Context(), cmd.OutOrStdout(), s, !noHistory)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s. Press Ctrl+C to stop.\n", strings.Join(s.Sources, ", "))

			d := watch.NewDaemon(ss.relocator, s.Sources,
				watch.WithIgnore(ss.ignore),
				watch.WithSettleDelay(settle),
				watch.WithInitialSort())
			if err := d.Run(cmd.Context()); err != nil {
				return ss.fail(err)
			}

			ss.close(false)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this session in the history journal")
	cmd.Flags().DurationVar(&settle, "settle", watch.DefaultSettleDelay,
		"how long a file must stay unchanged before it is moved")

	return cmd
}
