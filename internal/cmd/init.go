package cmd

import (
	"fmt"
	"path/filepath"

	"filesorter/internal/config"
	"filesorter/internal/destination"
	"filesorter/internal/errors"

	"github.com/spf13/cobra"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var (
		useDatePattern bool
		datePattern    string
	)

	cmd := &cobra.Command{
		Use:   "init SOURCE DESTINATION",
		Short: "Write a fresh settings file",
		Long: `Write a settings file that sorts SOURCE into DESTINATION using the
built-in rules. An existing settings file is kept as <file>.old.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := filepath.Abs(args[0])
			if err != nil {
				return errors.NewFileError("invalid source", args[0], errors.InvalidPath, err)
			}
			dest, err := filepath.Abs(args[1])
			if err != nil {
				return errors.NewFileError("invalid destination", args[1], errors.InvalidPath, err)
			}

			s := config.Default().
				AddSource(source).
				SetDestination(dest).
				SetUseDatePattern(useDatePattern).
				SetDatePattern(datePattern)
			if err := s.Validate(); err != nil {
				return err
			}

			path := opts.settingsPath()
			old, err := config.BackupExisting(path)
			if err != nil {
				return err
			}
			if err := s.Save(path); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if old != "" {
				fmt.Fprintf(out, "Previous settings kept at %s\n", old)
			}
			fmt.Fprintf(out, "Wrote settings to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&useDatePattern, "use-date-pattern", "d", false,
		"nest category folders under a folder named after each file's modification date")
	cmd.Flags().StringVarP(&datePattern, "date-pattern", "p", destination.DefaultDatePattern,
		"strftime pattern for the date folder, applied in UTC")

	return cmd
}
