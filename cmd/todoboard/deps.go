package main

import (
	"context"
	"fmt"

	"github.com/ashishacharya123/pkms-todos/internal/dependencies"
	"github.com/ashishacharya123/pkms-todos/internal/notify"
	"github.com/spf13/cobra"
)

func newDepsCmd(a *app) *cobra.Command {
	depsCmd := &cobra.Command{
		Use:   "deps <uuid>",
		Short: "Show what blocks a todo and what it blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadManager(cmd, args[0])
			if err != nil {
				return err
			}
			defer m.Close()

			out := cmd.OutOrStdout()
			if len(m.BlockedBy()) == 0 && len(m.Blocking()) == 0 {
				fmt.Fprintln(out, "No dependencies.")
				return nil
			}
			writeSummaries(cmd, "Blocked by", m.BlockedBy())
			writeSummaries(cmd, "Blocking", m.Blocking())
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <uuid> <blocker-uuid>",
		Short: "Make one todo block another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editDependency(cmd, a, args, (*dependencies.Manager).Add, "now blocks")
		},
	}

	rmCmd := &cobra.Command{
		Use:     "rm <uuid> <blocker-uuid>",
		Aliases: []string{"remove"},
		Short:   "Remove a blocker from a todo",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editDependency(cmd, a, args, (*dependencies.Manager).Remove, "no longer blocks")
		},
	}

	depsCmd.AddCommand(addCmd, rmCmd)
	return depsCmd
}

func editDependency(cmd *cobra.Command, a *app, args []string, edit func(*dependencies.Manager, context.Context, string) error, verb string) error {
	blocker, err := a.resolve(cmd.Context(), args[1])
	if err != nil {
		return err
	}
	m, err := a.loadManager(cmd, args[0])
	if err != nil {
		return err
	}
	defer m.Close()

	if err := edit(m, cmd.Context(), blocker); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", shortUUID(blocker), verb, shortUUID(m.TodoUUID()))
	return nil
}

// loadManager resolves ref and loads both dependency sets for it.
func (a *app) loadManager(cmd *cobra.Command, ref string) (*dependencies.Manager, error) {
	uuid, err := a.resolve(cmd.Context(), ref)
	if err != nil {
		return nil, err
	}
	m := dependencies.New(cmd.Context(), a.client, uuid,
		dependencies.WithLogger(a.logger),
		dependencies.WithNotifier(notify.NewLogNotifier(a.logger)),
	)
	if err := m.Load(cmd.Context()); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}
