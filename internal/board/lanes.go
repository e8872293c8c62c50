// Package board turns the todo list into kanban lanes and coordinates moving
// todos between and within them.
package board

import (
	"sort"

	"github.com/ashishacharya123/pkms-todos/internal/dto"
	"github.com/ashishacharya123/pkms-todos/internal/models"
)

// LaneDef describes one column of the board.
type LaneDef struct {
	Status models.TodoStatus
	Title  string
	Color  string
}

// Lane is a column of the board with its todos in display order.
type Lane struct {
	Status models.TodoStatus
	Title  string
	Color  string
	Todos  []dto.TodoDTO
}

// DefaultLanes returns the four board columns. Cancelled todos have no lane.
func DefaultLanes() []LaneDef {
	return []LaneDef{
		{Status: models.TodoStatusPending, Title: "To Do", Color: "#6b7280"},
		{Status: models.TodoStatusInProgress, Title: "In Progress", Color: "#3b82f6"},
		{Status: models.TodoStatusBlocked, Title: "Blocked", Color: "#ef4444"},
		{Status: models.TodoStatusDone, Title: "Done", Color: "#22c55e"},
	}
}

// Partition builds one lane per definition holding the todos with that
// status, ascending by order_index. Todos sharing an order_index keep their
// order from todos. Todos whose status has no lane are left out.
func Partition(todos []dto.TodoDTO, defs []LaneDef) []Lane {
	lanes := make([]Lane, len(defs))
	index := make(map[models.TodoStatus]int, len(defs))
	for i, def := range defs {
		lanes[i] = Lane{Status: def.Status, Title: def.Title, Color: def.Color, Todos: []dto.TodoDTO{}}
		if _, exists := index[def.Status]; !exists {
			index[def.Status] = i
		}
	}

	for _, todo := range todos {
		i, ok := index[todo.Status]
		if !ok {
			continue
		}
		lanes[i].Todos = append(lanes[i].Todos, todo)
	}

	for i := range lanes {
		laneTodos := lanes[i].Todos
		sort.SliceStable(laneTodos, func(a, b int) bool {
			return laneTodos[a].OrderIndex < laneTodos[b].OrderIndex
		})
	}

	return lanes
}

// LaneIndex returns the position of the lane for status, or -1.
func LaneIndex(lanes []Lane, status models.TodoStatus) int {
	for i, lane := range lanes {
		if lane.Status == status {
			return i
		}
	}
	return -1
}

// FindTodo locates a todo on the board.
func FindTodo(lanes []Lane, uuid string) (lane, pos int, ok bool) {
	for i, l := range lanes {
		for j, todo := range l.Todos {
			if todo.UUID == uuid {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}
