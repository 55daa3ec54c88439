// Package cli implements archivectl, the maintenance tool for the archive.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"almostArchiveAPI/internal/config"
	"almostArchiveAPI/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	EnvFile string
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "archivectl",
		Short: "Maintenance commands for the Almost Archive",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := "info"
			if opts.Verbose {
				level = "debug"
			}
			return logger.Init(level, "console")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// loadConfig reads the store settings; session settings are not needed here.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	config.LoadDotEnv(opts.EnvFile)
	return config.Load()
}
