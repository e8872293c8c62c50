package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ashishacharya123/pkms-todos/internal/board"
	"github.com/ashishacharya123/pkms-todos/internal/dto"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/notify"
	"github.com/ashishacharya123/pkms-todos/internal/store"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func newListCmd(a *app) *cobra.Command {
	var (
		status   string
		priority string
		project  string
		tag      string
		search   string
		archived bool
		overdue  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos grouped by lane",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := store.DefaultFilters()
			if status != "" {
				s, err := parseStatus(status)
				if err != nil {
					return err
				}
				filters.Status = s
			}
			if priority != "" {
				p, err := parsePriority(priority)
				if err != nil {
					return err
				}
				filters.Priority = p
			}
			filters.ProjectUUID = project
			filters.Tag = tag
			filters.Search = search
			filters.ShowOverdue = overdue
			if archived {
				filters.Archived = &archived
			}

			st := a.newStore(notify.NewLogNotifier(a.logger))
			if err := a.loadAll(cmd.Context(), st, filters); err != nil {
				return err
			}

			now := time.Now()
			var rows [][]string
			for _, lane := range board.Partition(st.Todos(), board.DefaultLanes()) {
				for _, todo := range lane.Todos {
					rows = append(rows, todoRow(todo, now))
				}
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No todos.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatTable(
				[]string{"ID", "STATUS", "#", "PRIORITY", "DUE", "TITLE"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only todos with this status")
	cmd.Flags().StringVar(&priority, "priority", "", "only todos with this priority")
	cmd.Flags().StringVar(&project, "project", "", "only todos in this project UUID")
	cmd.Flags().StringVar(&tag, "tag", "", "only todos carrying this tag")
	cmd.Flags().StringVar(&search, "search", "", "match title or description")
	cmd.Flags().BoolVar(&archived, "archived", false, "list archived todos instead")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "only overdue todos")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <uuid>",
		Short: "Show one todo with its subtasks and dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uuid, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			st := a.newStore(notify.NewLogNotifier(a.logger))
			todo, err := st.LoadTodo(cmd.Context(), uuid)
			if err != nil {
				return err
			}
			writeTodo(cmd, *todo)
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var (
		description string
		status      string
		priority    string
		due         string
		projects    []string
		tags        []string
		favorite    bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a todo at the end of its lane",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CreateTodoRequest{
				Title:        strings.Join(args, " "),
				Description:  description,
				ProjectUUIDs: projects,
				Tags:         tags,
				IsFavorite:   favorite,
			}
			if status != "" {
				s, err := parseStatus(status)
				if err != nil {
					return err
				}
				req.Status = s
			}
			if priority != "" {
				p, err := parsePriority(priority)
				if err != nil {
					return err
				}
				req.Priority = p
			}
			if due != "" {
				date, err := time.ParseInLocation(dateLayout, due, time.Local)
				if err != nil {
					return fmt.Errorf("invalid due date %q, want YYYY-MM-DD", due)
				}
				req.DueDate = &date
			}

			st := a.newStore(notify.NewLogNotifier(a.logger))
			todo, err := st.CreateTodo(cmd.Context(), req)
			if err != nil {
				return err
			}
			st.Wait()
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", shortUUID(todo.UUID), todo.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "todo description")
	cmd.Flags().StringVar(&status, "status", "", "initial status")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "priority (low, medium, high, urgent)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&projects, "project", nil, "project UUID (repeatable)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag (repeatable)")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "mark as favorite")
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	var position int

	cmd := &cobra.Command{
		Use:   "move <uuid> <status>",
		Short: "Move a todo to another lane",
		Long:  "Move a todo to another lane. Without --position it lands at the end of the lane.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			return dragTodo(cmd, a, args[0], func(lanes []board.Lane) (*board.Lane, int, error) {
				target := board.LaneIndex(lanes, status)
				if target < 0 {
					return nil, 0, fmt.Errorf("status %q has no lane on the board", status)
				}
				index := len(lanes[target].Todos)
				if cmd.Flags().Changed("position") {
					index = position
				}
				return &lanes[target], index, nil
			})
		},
	}

	cmd.Flags().IntVar(&position, "position", 0, "position within the target lane")
	return cmd
}

func newReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <uuid> <index>",
		Short: "Move a todo to a position within its lane",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}
			return dragTodo(cmd, a, args[0], func(lanes []board.Lane) (*board.Lane, int, error) {
				return nil, index, nil
			})
		},
	}
}

// dragTodo runs a drag of ref on the current board. pick chooses the target
// lane and position; a nil lane means the todo's own lane.
func dragTodo(cmd *cobra.Command, a *app, ref string, pick func([]board.Lane) (*board.Lane, int, error)) error {
	ctx := cmd.Context()
	uuid, err := a.resolve(ctx, ref)
	if err != nil {
		return err
	}

	st := a.newStore(notify.NewLogNotifier(a.logger))
	if err := a.loadAll(ctx, st, store.DefaultFilters()); err != nil {
		return err
	}
	lanes := board.Partition(st.Todos(), board.DefaultLanes())
	laneIdx, pos, ok := board.FindTodo(lanes, uuid)
	if !ok {
		return fmt.Errorf("todo %s is not on the board", shortUUID(uuid))
	}

	target, index, err := pick(lanes)
	if err != nil {
		return err
	}
	if target == nil {
		target = &lanes[laneIdx]
	}

	coordinator := board.NewCoordinator(st, a.logger)
	coordinator.BeginDrag(lanes[laneIdx].Todos[pos])
	if err := coordinator.DropAt(ctx, target, index); err != nil {
		return err
	}
	st.Wait()

	entry, _ := st.Entry(uuid)
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s #%d\n",
		shortUUID(uuid), entry.Todo.Status, entry.Todo.OrderIndex)
	return nil
}

func newDoneCmd(a *app) *cobra.Command {
	return todoActionCmd(a, "done <uuid>", "Mark a todo done", "Completed", (*store.Store).CompleteTodo)
}

func newFavoriteCmd(a *app) *cobra.Command {
	return todoActionCmd(a, "fav <uuid>", "Toggle a todo's favorite flag", "Toggled favorite on", (*store.Store).ToggleFavorite)
}

func newArchiveCmd(a *app) *cobra.Command {
	var undo bool

	cmd := todoActionCmd(a, "archive <uuid>", "Archive a todo", "Archived", func(st *store.Store, ctx context.Context, uuid string) (*dto.TodoDTO, error) {
		if undo {
			return st.UnarchiveTodo(ctx, uuid)
		}
		return st.ArchiveTodo(ctx, uuid)
	})
	cmd.Flags().BoolVar(&undo, "undo", false, "unarchive instead")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <uuid>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo and its subtasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uuid, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			st := a.newStore(notify.NewLogNotifier(a.logger))
			if err := st.DeleteTodo(cmd.Context(), uuid); err != nil {
				return err
			}
			st.Wait()
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", shortUUID(uuid))
			return nil
		},
	}
}

func todoActionCmd(a *app, use, short, verb string, action func(*store.Store, context.Context, string) (*dto.TodoDTO, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uuid, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			st := a.newStore(notify.NewLogNotifier(a.logger))
			todo, err := action(st, cmd.Context(), uuid)
			if err != nil {
				return err
			}
			st.Wait()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", verb, shortUUID(todo.UUID), todo.Title)
			return nil
		},
	}
}

func todoRow(todo dto.TodoDTO, now time.Time) []string {
	due := ""
	if todo.DueDate != nil {
		due = todo.DueDate.Format(dateLayout)
		if todo.IsOverdue(now) {
			due += " !"
		}
	}
	title := todo.Title
	if todo.IsFavorite {
		title = "* " + title
	}
	return []string{
		shortUUID(todo.UUID),
		string(todo.Status),
		strconv.Itoa(todo.OrderIndex),
		string(todo.Priority),
		due,
		title,
	}
}

func writeTodo(cmd *cobra.Command, todo dto.TodoDTO) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", todo.Title)
	fmt.Fprintf(out, "  id:        %s\n", todo.UUID)
	fmt.Fprintf(out, "  status:    %s #%d\n", todo.Status, todo.OrderIndex)
	fmt.Fprintf(out, "  priority:  %s\n", todo.Priority)
	if todo.DueDate != nil {
		fmt.Fprintf(out, "  due:       %s\n", todo.DueDate.Format(dateLayout))
	}
	if len(todo.Tags) > 0 {
		fmt.Fprintf(out, "  tags:      %s\n", strings.Join(todo.Tags, ", "))
	}
	if len(todo.Projects) > 0 {
		names := make([]string, len(todo.Projects))
		for i, p := range todo.Projects {
			names[i] = p.Name
		}
		fmt.Fprintf(out, "  projects:  %s\n", strings.Join(names, ", "))
	}
	if todo.IsArchived {
		fmt.Fprintln(out, "  archived")
	}
	if todo.Description != "" {
		fmt.Fprintf(out, "\n%s\n", todo.Description)
	}
	writeSummaries(cmd, "Blocked by", todo.BlockedByTodos)
	writeSummaries(cmd, "Blocking", todo.BlockingTodos)
	if len(todo.Subtasks) > 0 {
		fmt.Fprintln(out, "\nSubtasks:")
		for _, sub := range todo.Subtasks {
			fmt.Fprintf(out, "  %s  %-11s  %s\n", shortUUID(sub.UUID), sub.Status, sub.Title)
		}
	}
}

func writeSummaries(cmd *cobra.Command, label string, todos []dto.TodoSummaryDTO) {
	if len(todos) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s:\n", label)
	for _, t := range todos {
		fmt.Fprintf(out, "  %s  %-11s  %s\n", shortUUID(t.UUID), t.Status, t.Title)
	}
}

func parseStatus(value string) (models.TodoStatus, error) {
	status := models.TodoStatus(strings.ToLower(value))
	if !status.IsValid() {
		return "", fmt.Errorf("unknown status %q", value)
	}
	return status, nil
}

func parsePriority(value string) (models.TodoPriority, error) {
	priority := models.TodoPriority(strings.ToLower(value))
	if !priority.IsValid() {
		return "", fmt.Errorf("unknown priority %q", value)
	}
	return priority, nil
}
