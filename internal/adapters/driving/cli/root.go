// Package cli wires the service together behind cobra commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/grounder-ai/grounder/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagConfig  string
	flagVerbose bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "grounder",
	Short: "Grounded document Q&A service",
	Long: `Grounder ingests PDF and Word documents into a vector index and
answers questions strictly from the indexed content, with source
attribution for every answer.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.toml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
