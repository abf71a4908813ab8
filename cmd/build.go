package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/tome/internal/config"
	"github.com/Bitlatte/tome/internal/logging"
	"github.com/Bitlatte/tome/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the site from content, theme, and static assets",
	Long: `The build command wipes the output directory, copies static assets,
renders every non-draft document, then renders a listing page and feed for each
section that has a marker document and finally the site index and site feed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := runBuild(cmd.OutOrStdout(), osFs)
		return err
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

// runBuild loads config.toml from fsys, builds the site and prints the
// summary counters to w.
func runBuild(w io.Writer, fsys afero.Fs) (site.Stats, error) {
	cfg, err := config.Load(fsys, config.DefaultFile)
	if err != nil {
		return site.Stats{}, err
	}

	logger := logging.New(w, cfg.Verbose)
	logger.Info("Starting build", logging.Path(cfg.OutputDir))

	stats, err := site.New(cfg, fsys, logger).Build()
	if err != nil {
		return stats, err
	}
	printSummary(w, stats)
	return stats, nil
}

func printSummary(w io.Writer, s site.Stats) {
	fmt.Fprintf(w, "Pages rendered:   %d\n", s.Pages)
	fmt.Fprintf(w, "Drafts skipped:   %d\n", s.Drafts)
	fmt.Fprintf(w, "Section files:    %d\n", s.SectionFiles)
	fmt.Fprintf(w, "Feed files:       %d\n", s.FeedFiles)
	if s.SkippedSections > 0 {
		fmt.Fprintf(w, "Sections skipped: %d\n", s.SkippedSections)
	}
	fmt.Fprintf(w, "Static files:     %d (%s)\n", s.StaticFiles, humanize.Bytes(uint64(s.StaticBytes)))
	fmt.Fprintf(w, "Templates loaded: %d\n", s.Templates)
	fmt.Fprintf(w, "Built in %s\n", s.Elapsed.Round(time.Millisecond))
}
