package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "thinkex",
	Short: "ThinkEx - knowledge board client",
	Long: `ThinkEx is a client for ThinkEx knowledge boards: cluster lists of
question/answer, research, source-note, and flashcard cards.

It talks to the ThinkEx backend over HTTP, keeps a local snapshot cache,
applies drag-style move/reorder operations optimistically with rollback on
failure, and can follow live board changes over the real-time channel.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// No subcommand: show help rather than silently succeeding.
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Errors are printed as formatted colored output by the printer
	// package; suppress Cobra's own printing.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "thinkex.yml", "Path to the thinkex config file")
}
