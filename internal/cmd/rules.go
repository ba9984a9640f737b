package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"filesorter/internal/config"
	"filesorter/internal/errors"
	"filesorter/internal/report"
	"filesorter/internal/rules"
	"filesorter/pkg/types"

	"github.com/spf13/cobra"
)

func newRulesCmd(opts *rootOptions) *cobra.Command {
	var showDefaults bool

	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "List the sorting rules in match order",
		Long: `List the configured rules. Order matters: a file goes to the folder of the
first rule whose extensions or MIME types match it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := rules.Defaults()
			if !showDefaults {
				s, err := config.Load(opts.settingsPath())
				if err != nil {
					return err
				}
				list = s.SortPatterns
			}
			report.NewPrinter(cmd.OutOrStdout()).Rules(list)
			return nil
		},
	}
	rulesCmd.Flags().BoolVar(&showDefaults, "defaults", false, "show the built-in rules instead of the configured ones")

	rulesCmd.AddCommand(newRulesAddCmd(opts))
	rulesCmd.AddCommand(newRulesRemoveCmd(opts))
	rulesCmd.AddCommand(newRulesSuggestCmd(opts))
	return rulesCmd
}

func newRulesAddCmd(opts *rootOptions) *cobra.Command {
	var (
		extensions []string
		mimeTypes  []string
		position   int
	)

	cmd := &cobra.Command{
		Use:   "add FOLDER",
		Short: "Add a rule sending matching files to FOLDER",
		Example: `  filesorter rules add ebooks --ext epub,mobi --position 1
  filesorter rules add binary --mime application/x-sharedlib`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.settingsPath()
			s, err := config.Load(path)
			if err != nil {
				return err
			}

			rule := types.SortRule{
				Extensions:  normalizeExtensions(extensions),
				MimeTypes:   mimeTypes,
				Destination: args[0],
			}
			if rule.MimeTypes == nil {
				rule.MimeTypes = []string{}
			}
			if err := rules.Validate([]types.SortRule{rule}); err != nil {
				return err
			}

			idx := len(s.SortPatterns)
			if position > 0 && position-1 < idx {
				idx = position - 1
			}
			s.SortPatterns = append(s.SortPatterns, types.SortRule{})
			copy(s.SortPatterns[idx+1:], s.SortPatterns[idx:])
			s.SortPatterns[idx] = rule

			if err := s.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added rule %d: %s\n", idx+1, rule)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&extensions, "ext", "e", nil, "extensions to match, without the dot")
	cmd.Flags().StringSliceVarP(&mimeTypes, "mime", "m", nil, "MIME types to match")
	cmd.Flags().IntVar(&position, "position", 0, "1-based position in the rule list (default is last)")
	return cmd
}

func newRulesRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove N",
		Short: "Remove the rule at position N",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.NewRuleError("rule position must be a number", args[0], errors.InvalidRule, err)
			}

			path := opts.settingsPath()
			s, err := config.Load(path)
			if err != nil {
				return err
			}
			if n < 1 || n > len(s.SortPatterns) {
				return errors.NewRuleError("no such rule", args[0], errors.InvalidRule,
					errors.Newf("have %d rules", len(s.SortPatterns)))
			}

			removed := s.SortPatterns[n-1]
			s.SortPatterns = append(s.SortPatterns[:n-1], s.SortPatterns[n:]...)
			if err := s.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed rule %d: %s\n", n, removed)
			return nil
		},
	}
}

// normalizeExtensions accepts ".JPG" style input and stores "jpg".
func normalizeExtensions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, ext := range in {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}
