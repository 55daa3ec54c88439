package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	statstypes "almostArchiveAPI/internal/types/stats"
	"almostArchiveAPI/internal/validation"
	"almostArchiveAPI/services"
)

func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:          "stats",
		Short:        "Recompute the site statistics and publish them to site-stats/current",
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

			validator := validation.New()
			stories := services.NewStoryService(store, validator)
			comments := services.NewCommentService(store, validator)
			statsService := services.NewStatsService(store, stories, comments)

			var snapshot *statstypes.SiteStats
			if dryRun {
				snapshot, err = statsService.Compute(cmd.Context(), time.Now())
			} else {
				snapshot, err = statsService.Publish(cmd.Context(), time.Now())
			}
			if err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), rootOpts.Format, snapshot)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and print without publishing")

	return cmd
}

func printStats(w io.Writer, format string, s *statstypes.SiteStats) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(w, "stories:   %d (%d this week, %d this month)\n", s.TotalStories, s.StoriesThisWeek, s.StoriesThisMonth)
	fmt.Fprintf(w, "reactions: %d\n", s.TotalReactions)
	fmt.Fprintf(w, "comments:  %d\n", s.TotalComments)
	for _, t := range s.PopularTags {
		fmt.Fprintf(w, "  #%-20s %d\n", t.Tag, t.Count)
	}
	for _, m := range s.MoodDistribution {
		fmt.Fprintf(w, "  %-20s %d\n", m.Mood, m.Count)
	}
	return nil
}
