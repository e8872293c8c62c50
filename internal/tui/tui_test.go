package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ashishacharya123/pkms-todos/internal/api"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/notify"
	"github.com/ashishacharya123/pkms-todos/internal/store"
	"github.com/ashishacharya123/pkms-todos/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// drive feeds msg to the model and runs the resulting commands until none
// are left.
func drive(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(model)
	for cmd != nil {
		out := cmd()
		if _, quit := out.(tea.QuitMsg); quit {
			return m
		}
		next, cmd = m.Update(out)
		m = next.(model)
	}
	return m
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		m = drive(t, m, keyMsg(k))
	}
	return m
}

func laneTitles(m model, lane int) []string {
	var titles []string
	for _, todo := range m.lanes[lane].Todos {
		titles = append(titles, todo.Title)
	}
	return titles
}

func newTestModel(t *testing.T) (model, *store.Store) {
	t.Helper()
	srv := testutil.NewServer(t)
	testutil.Seed(t, srv.DB,
		models.Todo{Title: "a", OrderIndex: 0},
		models.Todo{Title: "b", OrderIndex: 1},
		models.Todo{Title: "shipped", Status: models.TodoStatusDone},
	)
	client := api.NewClient(srv.APIURL())
	toasts := notify.NewQueue()
	st := store.New(client, store.WithNotifier(toasts))
	t.Cleanup(st.Wait)

	m := newModel(context.Background(), Options{Store: st, Deps: client, Toasts: toasts})
	m = drive(t, m, m.Init()())
	return m, st
}

func TestInitLoadsBoard(t *testing.T) {
	m, st := newTestModel(t)

	assert.Equal(t, []string{"a", "b"}, laneTitles(m, 0))
	assert.Equal(t, []string{"shipped"}, laneTitles(m, 3))
	require.NotNil(t, st.Stats())

	view := m.View()
	assert.Contains(t, view, "To Do")
	assert.Contains(t, view, "In Progress")
	assert.Contains(t, view, "shipped")
}

func TestSelectionMovesWithoutCalls(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "down")
	assert.Equal(t, 1, m.focus.Pos)

	m = press(t, m, "down")
	assert.Equal(t, 1, m.focus.Pos)

	m = press(t, m, "l", "l", "l")
	assert.Equal(t, 3, m.focus.Lane)
	assert.Equal(t, 0, m.focus.Pos)

	assert.Equal(t, []string{"a", "b"}, laneTitles(m, 0))
}

func TestShiftMovesTodoAcrossLanes(t *testing.T) {
	m, st := newTestModel(t)

	m = press(t, m, "L")

	assert.Equal(t, []string{"b"}, laneTitles(m, 0))
	assert.Equal(t, []string{"a"}, laneTitles(m, 1))
	assert.Equal(t, 1, m.focus.Lane)
	assert.Equal(t, 0, m.focus.Pos)
	for _, todo := range st.Todos() {
		if todo.Title == "b" {
			assert.Equal(t, 0, todo.OrderIndex)
		}
	}
}

func TestShiftReordersWithinLane(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "down", "K")

	assert.Equal(t, []string{"b", "a"}, laneTitles(m, 0))
	assert.Equal(t, 0, m.focus.Pos)

	// Already first: nothing happens.
	m = press(t, m, "K")
	assert.Equal(t, []string{"b", "a"}, laneTitles(m, 0))
}

func TestCompleteAndDelete(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "x")
	assert.Equal(t, []string{"b"}, laneTitles(m, 0))
	assert.Equal(t, []string{"shipped", "a"}, laneTitles(m, 3))
	// The selection follows the completed todo.
	assert.Equal(t, 3, m.focus.Lane)
	assert.Equal(t, 1, m.focus.Pos)

	m = press(t, m, "d")
	assert.Equal(t, []string{"shipped"}, laneTitles(m, 3))
	assert.Equal(t, []string{"b"}, laneTitles(m, 0))
	assert.Equal(t, "Deleted", m.status)
}

func TestDetailAddsAndRemovesBlocker(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "enter")
	require.NotNil(t, m.detail)
	rows := m.detail.rows(m.store.Todos())
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].title)
	assert.False(t, rows[0].blocker)

	m = press(t, m, "enter")
	blockers := m.detail.manager.BlockedBy()
	require.Len(t, blockers, 1)
	assert.Equal(t, "b", blockers[0].Title)
	assert.Contains(t, m.View(), "✗ b")

	m = press(t, m, "enter")
	assert.Empty(t, m.detail.manager.BlockedBy())

	m = press(t, m, "esc")
	assert.Nil(t, m.detail)
	assert.Nil(t, m.store.Current())
}

func TestBlockedTodoCannotBlockItsBlocker(t *testing.T) {
	m, _ := newTestModel(t)

	// b blocks a. The board reloads the list on its own.
	m = press(t, m, "enter", "enter", "esc")
	require.Len(t, m.lanes[0].Todos[0].BlockedByTodos, 1)

	// From b, a is offered but the loop is refused.
	m = press(t, m, "down", "enter")
	require.NotNil(t, m.detail)
	assert.Equal(t, "b", m.detail.todo.Title)
	m = press(t, m, "enter")

	assert.Empty(t, m.detail.manager.BlockedBy())
	assert.Equal(t, statusError, m.statusLevel)
	assert.Contains(t, m.status, "circular dependency")
}

func TestReverseBlockerAllowedAfterRemove(t *testing.T) {
	m, _ := newTestModel(t)

	// b blocks a, then stops blocking it.
	m = press(t, m, "enter", "enter")
	require.Len(t, m.detail.manager.BlockedBy(), 1)
	m = press(t, m, "enter", "esc")
	require.Nil(t, m.detail)
	assert.Empty(t, m.lanes[0].Todos[0].BlockedByTodos)

	// a may now block b without reloading by hand.
	m = press(t, m, "down", "enter")
	require.NotNil(t, m.detail)
	assert.Equal(t, "b", m.detail.todo.Title)
	assert.Contains(t, m.View(), "+ a")
	m = press(t, m, "enter")

	blockers := m.detail.manager.BlockedBy()
	require.Len(t, blockers, 1)
	assert.Equal(t, "a", blockers[0].Title)
	assert.NotEqual(t, statusError, m.statusLevel)
}

func TestPickerSelectionFollowsKeys(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "enter")
	require.NotNil(t, m.detail)
	row, ok := m.detail.selected()
	require.True(t, ok)
	assert.Equal(t, "b", row.title)

	// There is one candidate, so the selection stays put.
	m = press(t, m, "down", "j")
	assert.Equal(t, 0, m.detail.picker.Index())
	m = press(t, m, "up")
	assert.Equal(t, 0, m.detail.picker.Index())
}

func TestLongLaneScrollsToSelection(t *testing.T) {
	srv := testutil.NewServer(t)
	todos := make([]models.Todo, 15)
	for i := range todos {
		todos[i] = models.Todo{Title: fmt.Sprintf("t%02d", i), OrderIndex: i}
	}
	testutil.Seed(t, srv.DB, todos...)
	client := api.NewClient(srv.APIURL())
	st := store.New(client)
	t.Cleanup(st.Wait)

	m := newModel(context.Background(), Options{Store: st, Deps: client})
	m = drive(t, m, m.Init()())
	m = drive(t, m, tea.WindowSizeMsg{Width: 120, Height: 14})
	require.Len(t, m.lanes[0].Todos, 15)

	view := m.View()
	assert.Contains(t, view, "t00")
	assert.NotContains(t, view, "t14")
	assert.LessOrEqual(t, len(strings.Split(view, "\n")), 14)

	for i := 0; i < 14; i++ {
		m = press(t, m, "down")
	}
	view = m.View()
	assert.Contains(t, view, "t14")
	assert.NotContains(t, view, "t00")
}
