// Package tui is the interactive kanban board.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashishacharya123/pkms-todos/internal/board"
	"github.com/ashishacharya123/pkms-todos/internal/dependencies"
	"github.com/ashishacharya123/pkms-todos/internal/dto"
	"github.com/ashishacharya123/pkms-todos/internal/logging"
	"github.com/ashishacharya123/pkms-todos/internal/notify"
	"github.com/ashishacharya123/pkms-todos/internal/store"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

var _ board.Mover = (*store.Store)(nil)

type statusLevel int

const (
	statusNone statusLevel = iota
	statusInfo
	statusError
)

type loadedMsg struct{ err error }

type movedMsg struct {
	uuid   string
	action board.Action
	err    error
}

type mutatedMsg struct {
	uuid string
	verb string
	err  error
}

// depsMsg reports a dependency load, or an add or remove when changed is
// set.
type depsMsg struct {
	err     error
	changed bool
}

// Options are the collaborators of the board.
type Options struct {
	Store  *store.Store
	Deps   dependencies.Backend
	Toasts *notify.Queue
	Logger *log.Logger
}

type model struct {
	ctx         context.Context
	store       *store.Store
	deps        dependencies.Backend
	coordinator *board.Coordinator
	toasts      *notify.Queue
	logger      *log.Logger

	width  int
	height int

	lanes       []board.Lane
	focus       board.Focus
	detail      *detailModel
	busy        bool
	status      string
	statusLevel statusLevel
}

// Run shows the board until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return fmt.Errorf("store is required")
	}
	program := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func newModel(ctx context.Context, opts Options) model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.OrDiscard(opts.Logger)
	toasts := opts.Toasts
	if toasts == nil {
		toasts = notify.NewQueue()
	}
	return model{
		ctx:         ctx,
		store:       opts.Store,
		deps:        opts.Deps,
		coordinator: board.NewCoordinator(opts.Store, logger),
		toasts:      toasts,
		logger:      logger,
		lanes:       board.Partition(nil, board.DefaultLanes()),
	}
}

func (m model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshDetail()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.detail != nil {
			return m.updateDetail(msg)
		}
		return m.handleKey(msg.String())
	case loadedMsg:
		m.busy = false
		m.rebuild("")
		m.refreshDetail()
		if msg.err != nil {
			m.setStatus("Failed to load todos", statusError)
		}
		m.drainToasts()
		return m, nil
	case movedMsg:
		m.busy = false
		m.rebuild(msg.uuid)
		m.drainToasts()
		if msg.err == nil && msg.action == board.ActionMoved {
			m.setStatus("Moved", statusInfo)
		}
		return m, nil
	case mutatedMsg:
		m.busy = false
		m.rebuild(msg.uuid)
		m.drainToasts()
		if msg.err == nil {
			m.setStatus(msg.verb, statusInfo)
		}
		return m, nil
	case depsMsg:
		m.refreshDetail()
		m.drainToasts()
		if errors.Is(msg.err, dependencies.ErrWouldCycle) {
			m.setStatus("Adding this dependency would create a circular dependency", statusError)
		}
		if msg.changed && msg.err == nil {
			// The list carries both dependency sets of every todo.
			return m, m.loadCmd()
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m.quit()
	case "left", "h":
		m.moveFocus(-1, 0)
		return m, nil
	case "right", "l":
		m.moveFocus(1, 0)
		return m, nil
	case "up", "k":
		m.moveFocus(0, -1)
		return m, nil
	case "down", "j":
		m.moveFocus(0, 1)
		return m, nil
	case "r":
		m.busy = true
		return m, m.loadCmd()
	}

	todo, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch key {
	case "x":
		return m, m.mutateCmd(todo.UUID, "Completed", func(ctx context.Context) error {
			_, err := m.store.CompleteTodo(ctx, todo.UUID)
			return err
		})
	case "f":
		return m, m.mutateCmd(todo.UUID, "Favorite toggled", func(ctx context.Context) error {
			_, err := m.store.ToggleFavorite(ctx, todo.UUID)
			return err
		})
	case "a":
		return m, m.mutateCmd(todo.UUID, "Archived", func(ctx context.Context) error {
			_, err := m.store.ArchiveTodo(ctx, todo.UUID)
			return err
		})
	}

	k := boardKey(key)
	if k == board.KeyNone || m.busy {
		return m, nil
	}
	switch k {
	case board.KeyEnter, board.KeySpace, board.KeyDelete:
		action, _ := m.coordinator.HandleKey(m.ctx, m.lanes, m.focus, k)
		switch action {
		case board.ActionEdit:
			return m.openDetail(todo.UUID)
		case board.ActionDelete:
			return m, m.mutateCmd("", "Deleted", func(ctx context.Context) error {
				return m.store.DeleteTodo(ctx, todo.UUID)
			})
		}
		return m, nil
	}

	m.busy = true
	return m, m.moveCmd(todo.UUID, k)
}

func (m model) quit() (tea.Model, tea.Cmd) {
	if m.detail != nil {
		m.detail.close()
	}
	m.store.Wait()
	return m, tea.Quit
}

func (m model) loadCmd() tea.Cmd {
	ctx := m.ctx
	st := m.store
	return func() tea.Msg {
		return loadedMsg{err: st.Refresh(ctx)}
	}
}

// moveCmd hands the key to the coordinator on a copy of the board, so the
// request runs off the update loop.
func (m model) moveCmd(uuid string, key board.Key) tea.Cmd {
	ctx := m.ctx
	coordinator := m.coordinator
	lanes := cloneLanes(m.lanes)
	focus := m.focus
	return func() tea.Msg {
		action, err := coordinator.HandleKey(ctx, lanes, focus, key)
		return movedMsg{uuid: uuid, action: action, err: err}
	}
}

func (m model) mutateCmd(uuid, verb string, run func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return mutatedMsg{uuid: uuid, verb: verb, err: run(ctx)}
	}
}

// rebuild re-derives the lanes from the store and keeps the selection on
// uuid when it is still on the board.
func (m *model) rebuild(uuid string) {
	if uuid == "" {
		if todo, ok := m.selected(); ok {
			uuid = todo.UUID
		}
	}
	m.lanes = board.Partition(m.store.Todos(), board.DefaultLanes())
	if lane, pos, ok := board.FindTodo(m.lanes, uuid); ok {
		m.focus = board.Focus{Lane: lane, Pos: pos}
		return
	}
	m.clampFocus()
}

func (m *model) moveFocus(dLane, dPos int) {
	m.focus.Lane += dLane
	m.focus.Pos += dPos
	m.clampFocus()
}

func (m *model) clampFocus() {
	if m.focus.Lane < 0 {
		m.focus.Lane = 0
	}
	if m.focus.Lane >= len(m.lanes) {
		m.focus.Lane = len(m.lanes) - 1
	}
	if m.focus.Lane < 0 {
		m.focus = board.Focus{}
		return
	}
	n := len(m.lanes[m.focus.Lane].Todos)
	if m.focus.Pos >= n {
		m.focus.Pos = n - 1
	}
	if m.focus.Pos < 0 {
		m.focus.Pos = 0
	}
}

func (m model) selected() (dto.TodoDTO, bool) {
	if !m.focus.Valid(m.lanes) {
		return dto.TodoDTO{}, false
	}
	return m.lanes[m.focus.Lane].Todos[m.focus.Pos], true
}

func (m *model) setStatus(message string, level statusLevel) {
	m.status = message
	m.statusLevel = level
}

// drainToasts shows the most recent toast in the status line.
func (m *model) drainToasts() {
	toasts := m.toasts.Drain()
	if len(toasts) == 0 {
		return
	}
	last := toasts[len(toasts)-1]
	level := statusInfo
	if last.Level == notify.LevelError {
		level = statusError
	}
	m.setStatus(last.Message, level)
}

func cloneLanes(lanes []board.Lane) []board.Lane {
	out := make([]board.Lane, len(lanes))
	for i, lane := range lanes {
		out[i] = lane
		out[i].Todos = append(lane.Todos[:0:0], lane.Todos...)
	}
	return out
}
