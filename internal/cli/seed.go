package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"almostArchiveAPI/internal/docstore"
	"almostArchiveAPI/internal/seed"
	"almostArchiveAPI/internal/validation"
)

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		file   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample stories and comments from a YAML file",
		Long: `Load sample stories, their comments and matching reaction events
from a YAML file. The whole file is validated with the submission rules
before anything is written.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			store, err := cfg.OpenStore(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer store.Close()

			return runSeed(cmd, rootOpts, store, file, dryRun)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "data/stories.yaml", "seed file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without writing")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *RootOptions, store docstore.Store, path string, dryRun bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := seed.Load(f)
	if err != nil {
		return err
	}

	validator := validation.New()
	var res seed.Result
	if dryRun {
		if err := data.Validate(validator); err != nil {
			return err
		}
	} else {
		res, err = seed.Apply(cmd.Context(), store, validator, data, time.Now())
		if err != nil {
			return err
		}
	}

	return printSeedResult(cmd.OutOrStdout(), opts.Format, len(data.Stories), res, dryRun)
}

func printSeedResult(w io.Writer, format string, inFile int, res seed.Result, dryRun bool) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(map[string]interface{}{
			"dryRun":      dryRun,
			"storiesRead": inFile,
			"written":     res,
		})
	}
	if dryRun {
		_, err := fmt.Fprintf(w, "%d stories valid, nothing written\n", inFile)
		return err
	}
	_, err := fmt.Fprintf(w, "seeded %d stories, %d comments, %d reactions\n", res.Stories, res.Comments, res.Reactions)
	return err
}
