// Package cmd implements the filesorter command line.
package cmd

import (
	"context"

	"filesorter/internal/config"
	"filesorter/internal/log"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfgFile string
	verbose bool
}

func (o *rootOptions) settingsPath() string {
	if o.cfgFile != "" {
		return o.cfgFile
	}
	return config.DefaultPath()
}

// loadSettings reads and validates the settings file.
func (o *rootOptions) loadSettings() (*config.Settings, error) {
	s, err := config.Load(o.settingsPath())
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "filesorter",
		Short: "Sort files into folders by type",
		Long: `filesorter moves the files sitting directly in your source directories
(Downloads, for example) into category folders under a destination root.

Each file is matched against an ordered list of rules by extension or
content type; the first matching rule names its folder. Files no rule
matches are left where they are.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetDebug(opts.verbose)
			logOpts := []log.Option{log.WithOutput(cmd.ErrOrStderr())}
			if !opts.verbose {
				logOpts = append(logOpts, log.WithQuiet())
			}
			log.Configure(logOpts...)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "",
		"settings file (default is $XDG_CONFIG_HOME/filesorter/settings.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newSortCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newRulesCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))

	return rootCmd
}

// Execute runs the command line with fang's styled help and errors.
func Execute(ctx context.Context, version string) error {
	rootCmd := NewRootCmd()
	rootCmd.Version = version
	return fang.Execute(ctx, rootCmd)
}
