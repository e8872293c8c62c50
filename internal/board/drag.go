package board

import (
	"context"
	"sync"

	"github.com/ashishacharya123/pkms-todos/internal/dto"
	"github.com/ashishacharya123/pkms-todos/internal/logging"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/utils"
	"github.com/charmbracelet/log"
)

// Mover performs the server calls behind a drop. The client store
// implements it.
type Mover interface {
	UpdateTodoStatus(ctx context.Context, uuid string, status models.TodoStatus) (*dto.TodoDTO, error)
	ReorderTodo(ctx context.Context, uuid string, orderIndex int) (*dto.TodoDTO, error)
}

// Phase is the coordinator's drag state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
)

func (p Phase) String() string {
	if p == PhaseDragging {
		return "dragging"
	}
	return "idle"
}

// DragState is the reference carried while a todo is being dragged.
type DragState struct {
	TodoUUID         string
	SourceStatus     models.TodoStatus
	SourceOrderIndex int
}

// Coordinator runs the drag state machine: Idle, Dragging, then back to
// Idle on drop or cancel. At most one drag is active.
type Coordinator struct {
	mover  Mover
	logger *log.Logger

	mu     sync.Mutex
	active *DragState
}

// NewCoordinator creates a Coordinator. A nil logger discards output.
func NewCoordinator(mover Mover, logger *log.Logger) *Coordinator {
	return &Coordinator{
		mover:  mover,
		logger: logging.OrDiscard(logger),
	}
}

// BeginDrag starts dragging todo, replacing any drag already active.
func (c *Coordinator) BeginDrag(todo dto.TodoDTO) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = &DragState{
		TodoUUID:         todo.UUID,
		SourceStatus:     todo.Status,
		SourceOrderIndex: todo.OrderIndex,
	}
}

// Cancel ends the drag without touching the server.
func (c *Coordinator) Cancel() {
	c.take()
}

// Phase reports whether a drag is in progress.
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return PhaseIdle
	}
	return PhaseDragging
}

// Active returns the current drag reference.
func (c *Coordinator) Active() (DragState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return DragState{}, false
	}
	return *c.active, true
}

// Drop drops the dragged todo at the end of target. A nil target is a drop
// outside any lane and only ends the drag.
func (c *Coordinator) Drop(ctx context.Context, target *Lane) error {
	if target == nil {
		c.Cancel()
		return nil
	}
	return c.drop(ctx, target, len(target.Todos))
}

// DropAt drops the dragged todo at position index of target, clamped to the
// lane's bounds.
func (c *Coordinator) DropAt(ctx context.Context, target *Lane, index int) error {
	if target == nil {
		c.Cancel()
		return nil
	}
	n := len(target.Todos)
	if !containsTodo(target, c.activeUUID()) {
		// The dragged todo will be one more entry in the lane.
		n++
	}
	return c.drop(ctx, target, utils.ClampIndex(index, n))
}

func (c *Coordinator) drop(ctx context.Context, target *Lane, newIndex int) error {
	state := c.take()
	if state == nil {
		return nil
	}

	if target.Status == state.SourceStatus {
		if _, err := c.mover.ReorderTodo(ctx, state.TodoUUID, newIndex); err != nil {
			c.logger.Error("Failed to reorder todo", "uuid", state.TodoUUID, "index", newIndex, "err", err)
			return err
		}
		return nil
	}

	moved, err := c.mover.UpdateTodoStatus(ctx, state.TodoUUID, target.Status)
	if err != nil {
		c.logger.Error("Failed to change todo status", "uuid", state.TodoUUID, "status", target.Status, "err", err)
		return err
	}
	if moved.OrderIndex == newIndex {
		return nil
	}
	if _, err := c.mover.ReorderTodo(ctx, state.TodoUUID, newIndex); err != nil {
		c.logger.Error("Failed to reorder todo", "uuid", state.TodoUUID, "index", newIndex, "err", err)
		return err
	}
	return nil
}

// take clears and returns the active drag.
func (c *Coordinator) take() *DragState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.active
	c.active = nil
	return state
}

func (c *Coordinator) activeUUID() string {
	state, ok := c.Active()
	if !ok {
		return ""
	}
	return state.TodoUUID
}

func containsTodo(lane *Lane, uuid string) bool {
	return utils.IndexOf(lane.Todos, func(t dto.TodoDTO) bool { return t.UUID == uuid }) >= 0
}
