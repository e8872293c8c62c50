package main

import (
	"github.com/ashishacharya123/pkms-todos/internal/constants"
	"github.com/ashishacharya123/pkms-todos/internal/logging"
	"github.com/ashishacharya123/pkms-todos/internal/notify"
	"github.com/ashishacharya123/pkms-todos/internal/tui"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "todoboard",
		Short: "Kanban board and command line client for the todo API",
		Long: `Kanban board and command line client for the todo API.

Commands that take a <uuid> also accept a unique prefix of one. Prefixes match
top-level todos and their direct subtasks; deeper subtasks need the full uuid.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, a)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.apiURL, "api", constants.DefaultAPIURL, "base URL of the todo API")
	flags.StringVar(&a.configPath, "config", "todoboard.toml", "path to a TOML config file")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	boardCmd := &cobra.Command{
		Use:   "board",
		Short: "Open the interactive board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, a)
		},
	}

	rootCmd.AddCommand(
		boardCmd,
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newMoveCmd(a),
		newReorderCmd(a),
		newDoneCmd(a),
		newArchiveCmd(a),
		newFavoriteCmd(a),
		newRemoveCmd(a),
		newDepsCmd(a),
		newStatsCmd(a),
		newProjectsCmd(a),
	)
	return rootCmd
}

func runBoard(cmd *cobra.Command, a *app) error {
	// The board owns the terminal; log lines would tear the screen.
	a.logger = logging.Discard()
	toasts := notify.NewQueue()
	return tui.Run(cmd.Context(), tui.Options{
		Store:  a.newStore(toasts),
		Deps:   a.client,
		Toasts: toasts,
		Logger: a.logger,
	})
}
