package board

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ashishacharya123/pkms-todos/internal/dto"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMover keeps a list of todos and applies moves the way the server does:
// a status change appends to the end of the new lane, a reorder clamps and
// renumbers the lane.
type fakeMover struct {
	todos      []dto.TodoDTO
	calls      []string
	statusErr  error
	reorderErr error
}

func (m *fakeMover) lane(status models.TodoStatus) []dto.TodoDTO {
	for _, l := range Partition(m.todos, []LaneDef{{Status: status}}) {
		return l.Todos
	}
	return nil
}

func (m *fakeMover) set(updated dto.TodoDTO) {
	for i := range m.todos {
		if m.todos[i].UUID == updated.UUID {
			m.todos[i] = updated
		}
	}
}

func (m *fakeMover) find(uuid string) (dto.TodoDTO, bool) {
	for _, t := range m.todos {
		if t.UUID == uuid {
			return t, true
		}
	}
	return dto.TodoDTO{}, false
}

func (m *fakeMover) renumber(lane []dto.TodoDTO) {
	for i, t := range lane {
		t.OrderIndex = i
		m.set(t)
	}
}

func (m *fakeMover) UpdateTodoStatus(_ context.Context, uuid string, status models.TodoStatus) (*dto.TodoDTO, error) {
	m.calls = append(m.calls, fmt.Sprintf("status %s %s", uuid, status))
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	t, ok := m.find(uuid)
	if !ok {
		return nil, errors.New("not found")
	}
	old := t.Status
	t.OrderIndex = len(m.lane(status))
	t.Status = status
	m.set(t)
	m.renumber(m.lane(old))
	return &t, nil
}

func (m *fakeMover) ReorderTodo(_ context.Context, uuid string, index int) (*dto.TodoDTO, error) {
	m.calls = append(m.calls, fmt.Sprintf("reorder %s %d", uuid, index))
	if m.reorderErr != nil {
		return nil, m.reorderErr
	}
	t, ok := m.find(uuid)
	if !ok {
		return nil, errors.New("not found")
	}
	lane := m.lane(t.Status)
	from := utils.IndexOf(lane, func(x dto.TodoDTO) bool { return x.UUID == uuid })
	m.renumber(utils.MoveItem(lane, from, index))
	t, _ = m.find(uuid)
	return &t, nil
}

func (m *fakeMover) board() []Lane {
	return Partition(m.todos, DefaultLanes())
}

func TestCoordinatorStates(t *testing.T) {
	c := NewCoordinator(&fakeMover{}, nil)
	assert.Equal(t, PhaseIdle, c.Phase())

	c.BeginDrag(todo("a", models.TodoStatusPending, 3))
	assert.Equal(t, PhaseDragging, c.Phase())
	state, ok := c.Active()
	require.True(t, ok)
	assert.Equal(t, DragState{TodoUUID: "a", SourceStatus: models.TodoStatusPending, SourceOrderIndex: 3}, state)

	// A second drag replaces the first.
	c.BeginDrag(todo("b", models.TodoStatusDone, 0))
	state, _ = c.Active()
	assert.Equal(t, "b", state.TodoUUID)

	c.Cancel()
	assert.Equal(t, PhaseIdle, c.Phase())
	_, ok = c.Active()
	assert.False(t, ok)
}

func TestDropWithoutTargetMakesNoCalls(t *testing.T) {
	m := &fakeMover{todos: []dto.TodoDTO{todo("a", models.TodoStatusPending, 0)}}
	c := NewCoordinator(m, nil)

	c.BeginDrag(m.todos[0])
	require.NoError(t, c.Drop(context.Background(), nil))

	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Empty(t, m.calls)

	// Nothing is carried over into the next drop.
	lanes := m.board()
	require.NoError(t, c.Drop(context.Background(), &lanes[3]))
	assert.Empty(t, m.calls)
}

func TestDropOnOtherLane(t *testing.T) {
	m := &fakeMover{todos: []dto.TodoDTO{
		todo("a", models.TodoStatusPending, 0),
		todo("d", models.TodoStatusDone, 0),
	}}
	c := NewCoordinator(m, nil)
	lanes := m.board()

	c.BeginDrag(lanes[0].Todos[0])
	require.NoError(t, c.Drop(context.Background(), &lanes[3]))

	// The server already appended at len(lane), so no reorder follows.
	assert.Equal(t, []string{"status a done"}, m.calls)
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, []string{"d", "a"}, uuids(m.board()[3].Todos))
}

// serverPrepends reports order_index 0 after a status change, which forces the
// follow-up reorder.
type serverPrepends struct{ fakeMover }

func (m *serverPrepends) UpdateTodoStatus(ctx context.Context, uuid string, status models.TodoStatus) (*dto.TodoDTO, error) {
	t, err := m.fakeMover.UpdateTodoStatus(ctx, uuid, status)
	if err != nil {
		return nil, err
	}
	t.OrderIndex = 0
	return t, nil
}

func TestDropReordersWhenServerIndexDiffers(t *testing.T) {
	m := &serverPrepends{fakeMover{todos: []dto.TodoDTO{
		todo("a", models.TodoStatusPending, 0),
		todo("d", models.TodoStatusDone, 0),
	}}}
	c := NewCoordinator(m, nil)
	lanes := m.board()

	c.BeginDrag(lanes[0].Todos[0])
	require.NoError(t, c.Drop(context.Background(), &lanes[3]))

	assert.Equal(t, []string{"status a done", "reorder a 1"}, m.calls)
}

func TestDropOnSameLaneOnlyReorders(t *testing.T) {
	m := &fakeMover{todos: []dto.TodoDTO{
		todo("a", models.TodoStatusPending, 0),
		todo("b", models.TodoStatusPending, 1),
	}}
	c := NewCoordinator(m, nil)
	lanes := m.board()

	c.BeginDrag(lanes[0].Todos[0])
	require.NoError(t, c.Drop(context.Background(), &lanes[0]))

	assert.Equal(t, []string{"reorder a 2"}, m.calls)
	assert.Equal(t, []string{"b", "a"}, uuids(m.board()[0].Todos))
}

func TestDropAtBeforeFirst(t *testing.T) {
	m := &fakeMover{todos: []dto.TodoDTO{
		todo("a", models.TodoStatusPending, 0),
		todo("b", models.TodoStatusPending, 1),
	}}
	c := NewCoordinator(m, nil)
	lanes := m.board()

	c.BeginDrag(lanes[0].Todos[1])
	require.NoError(t, c.DropAt(context.Background(), &lanes[0], 0))

	assert.Equal(t, []string{"reorder b 0"}, m.calls)
	assert.Equal(t, []string{"b", "a"}, uuids(m.board()[0].Todos))
}

func TestDropAtOtherLaneMiddle(t *testing.T) {
	m := &fakeMover{todos: []dto.TodoDTO{
		todo("a", models.TodoStatusPending, 0),
		todo("x", models.TodoStatusInProgress, 0),
		todo("y", models.TodoStatusInProgress, 1),
	}}
	c := NewCoordinator(m, nil)
	lanes := m.board()

	c.BeginDrag(lanes[0].Todos[0])
	require.NoError(t, c.DropAt(context.Background(), &lanes[1], 1))

	assert.Equal(t, []string{"status a in_progress", "reorder a 1"}, m.calls)
	assert.Equal(t, []string{"x", "a", "y"}, uuids(m.board()[1].Todos))
}

func TestDropAtClampsIndex(t *testing.T) {
	m := &fakeMover{todos: []dto.TodoDTO{
		todo("a", models.TodoStatusPending, 0),
		todo("b", models.TodoStatusPending, 1),
	}}
	c := NewCoordinator(m, nil)
	lanes := m.board()

	c.BeginDrag(lanes[0].Todos[0])
	require.NoError(t, c.DropAt(context.Background(), &lanes[0], 40))

	assert.Equal(t, []string{"reorder a 1"}, m.calls)
}

func TestDropFailureReturnsToIdle(t *testing.T) {
	boom := errors.New("boom")
	m := &fakeMover{
		todos:     []dto.TodoDTO{todo("a", models.TodoStatusPending, 0)},
		statusErr: boom,
	}
	c := NewCoordinator(m, nil)
	lanes := m.board()

	c.BeginDrag(lanes[0].Todos[0])
	err := c.Drop(context.Background(), &lanes[1])

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, []string{"status a in_progress"}, m.calls)
	// No local rollback is needed because nothing changed.
	assert.Equal(t, models.TodoStatusPending, m.todos[0].Status)
}

func TestReorderFailureIsReturned(t *testing.T) {
	boom := errors.New("boom")
	m := &fakeMover{
		todos: []dto.TodoDTO{
			todo("a", models.TodoStatusPending, 0),
			todo("b", models.TodoStatusPending, 1),
		},
		reorderErr: boom,
	}
	c := NewCoordinator(m, nil)
	lanes := m.board()

	c.BeginDrag(lanes[0].Todos[1])
	assert.ErrorIs(t, c.DropAt(context.Background(), &lanes[0], 0), boom)
	assert.Equal(t, PhaseIdle, c.Phase())
}
