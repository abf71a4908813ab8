package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// osFs is the filesystem every command builds against.
var osFs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   "tome",
	Short: "tome - a sectioned static site generator",
	Long: `tome reads config.toml from the working directory, turns the Markdown
documents under content/ into HTML pages through the templates in the theme,
renders one listing page and feed per section plus a site-wide index and feed,
and mirrors static/ into the output directory.

Running tome without a subcommand performs a build.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := runBuild(cmd.OutOrStdout(), osFs)
		return err
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
