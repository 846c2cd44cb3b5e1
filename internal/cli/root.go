// Package cli defines the Cobra command tree for the cursorvault CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// version, commit, date are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cursorvault",
	Short: "Extract and archive Cursor AI conversations per project",
	Long: `Cursorvault watches Cursor's local storage and archives the AI conversations
belonging to the current project as JSON files under .cursorvault/.

Conversations are deduplicated across polls and merged idempotently, so the
archive accumulates full history without ever duplicating a message.

Run 'cursorvault setup' once, then 'cursorvault run' inside a project.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(
		newRunCmd(),
		newSyncCmd(),
		newBackfillCmd(),
		newListCmd(),
		newShowCmd(),
		newExportCmd(),
		newStatusCmd(),
		newSetupCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cursorvault %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
