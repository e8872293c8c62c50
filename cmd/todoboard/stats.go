package main

import (
	"fmt"
	"strings"

	"github.com/ashishacharya123/pkms-todos/internal/board"
	"github.com/ashishacharya123/pkms-todos/internal/dto"
	"github.com/ashishacharya123/pkms-todos/internal/notify"
	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show todo counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.newStore(notify.NewLogNotifier(a.logger))
			if err := st.LoadStats(cmd.Context()); err != nil {
				return err
			}
			stats := st.Stats()

			rows := make([][]string, 0, len(board.DefaultLanes())+4)
			for _, lane := range board.DefaultLanes() {
				rows = append(rows, []string{lane.Title, fmt.Sprint(stats.ByStatus[lane.Status])})
			}
			rows = append(rows,
				[]string{"Overdue", fmt.Sprint(stats.Overdue)},
				[]string{"Due today", fmt.Sprint(stats.DueToday)},
				[]string{"Completed today", fmt.Sprint(stats.CompletedToday)},
				[]string{"Total", fmt.Sprint(stats.Total)},
			)
			fmt.Fprint(cmd.OutOrStdout(), formatTable([]string{"", "COUNT"}, rows))
			return nil
		},
	}
}

func newProjectsCmd(a *app) *cobra.Command {
	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.newStore(notify.NewLogNotifier(a.logger))
			if err := st.LoadProjects(cmd.Context()); err != nil {
				return err
			}
			projects := st.Projects()
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects.")
				return nil
			}
			rows := make([][]string, len(projects))
			for i, p := range projects {
				rows[i] = []string{shortUUID(p.UUID), p.Name, fmt.Sprint(p.TodoCount), p.Color}
			}
			fmt.Fprint(cmd.OutOrStdout(), formatTable([]string{"ID", "NAME", "TODOS", "COLOR"}, rows))
			return nil
		},
	}

	var (
		description string
		color       string
	)
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.newStore(notify.NewLogNotifier(a.logger))
			project, err := st.CreateProject(cmd.Context(), dto.CreateProjectRequest{
				Name:        args[0],
				Description: description,
				Color:       color,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s %s\n", shortUUID(project.UUID), project.Name)
			return nil
		},
	}
	addCmd.Flags().StringVarP(&description, "description", "d", "", "project description")
	addCmd.Flags().StringVar(&color, "color", "", "hex color, for example #3b82f6")

	rmCmd := &cobra.Command{
		Use:   "rm <uuid>",
		Short: "Delete a project; its todos stay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.newStore(notify.NewLogNotifier(a.logger))
			if err := st.LoadProjects(cmd.Context()); err != nil {
				return err
			}
			uuid := args[0]
			for _, p := range st.Projects() {
				if strings.HasPrefix(p.UUID, uuid) {
					uuid = p.UUID
					break
				}
			}
			if err := st.DeleteProject(cmd.Context(), uuid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", shortUUID(uuid))
			return nil
		},
	}

	projectsCmd.AddCommand(addCmd, rmCmd)
	return projectsCmd
}
