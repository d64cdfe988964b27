package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgr/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	e := &env{source: "cli"}

	rootCmd := &cobra.Command{
		Use:     "ledgr",
		Short:   "Accounting journal for clubs and households",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&e.dir, "dir", "C", ".", "journal workspace directory")
	rootCmd.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(newInitCommand())
	addJournalCommands(rootCmd, e)
	rootCmd.AddCommand(newImportCommand(e))
	rootCmd.AddCommand(newShellCommand(e))
	rootCmd.AddCommand(newServeCommand(e))

	return rootCmd
}

// addJournalCommands registers the commands shared by the CLI and the shell.
func addJournalCommands(parent *cobra.Command, e *env) {
	parent.AddCommand(
		newAddCommand(e),
		newRemoveCommand(e),
		newListCommand(e),
		newBalanceCommand(e),
		newCategoriesCommand(e),
		newPointCommand(e),
		newStartValueCommand(e),
		newRenameCommand(e),
		newDescribeCommand(e),
	)
}
