package dependencies

import (
	"github.com/ashishacharya123/pkms-todos/internal/dto"
	"github.com/ashishacharya123/pkms-todos/internal/models"
)

// graph maps a todo to the todos blocking it.
type graph map[string]map[string]struct{}

func (g graph) addEdge(blockedUUID, blockerUUID string) {
	if g[blockedUUID] == nil {
		g[blockedUUID] = make(map[string]struct{})
	}
	g[blockedUUID][blockerUUID] = struct{}{}
}

func buildGraph(todos []dto.TodoDTO) graph {
	g := make(graph)
	for _, t := range todos {
		for _, blocker := range t.BlockedByTodos {
			g.addEdge(t.UUID, blocker.UUID)
		}
		for _, blocked := range t.BlockingTodos {
			g.addEdge(blocked.UUID, t.UUID)
		}
	}
	return g
}

// buildGraphAround builds the graph from todos but takes every edge touching
// uuid from blocking and blockedBy instead of from the list.
func buildGraphAround(todos []dto.TodoDTO, uuid string, blocking, blockedBy []dto.TodoSummaryDTO) graph {
	g := make(graph)
	for _, t := range todos {
		if t.UUID == uuid {
			continue
		}
		for _, blocker := range t.BlockedByTodos {
			if blocker.UUID != uuid {
				g.addEdge(t.UUID, blocker.UUID)
			}
		}
		for _, blocked := range t.BlockingTodos {
			if blocked.UUID != uuid {
				g.addEdge(blocked.UUID, t.UUID)
			}
		}
	}
	for _, blocker := range blockedBy {
		g.addEdge(uuid, blocker.UUID)
	}
	for _, blocked := range blocking {
		g.addEdge(blocked.UUID, uuid)
	}
	return g
}

// reaches walks blocked-by edges from start and reports whether target is
// found.
func (g graph) reaches(start, target string) bool {
	visited := make(map[string]bool)
	stack := []string{start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == target {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		for next := range g[current] {
			if !visited[next] {
				stack = append(stack, next)
			}
		}
	}
	return false
}

// WouldCreateCycle reports whether making blockerUUID a blocker of todoUUID
// closes a loop in the graph described by the todos' blocked_by_todos and
// blocking_todos lists. This is only a fast local check; the server still
// rejects cycles on its own.
func WouldCreateCycle(todos []dto.TodoDTO, todoUUID, blockerUUID string) bool {
	if todoUUID == blockerUUID {
		return true
	}
	return buildGraph(todos).reaches(blockerUUID, todoUUID)
}

// AvailableTodos returns the todos that may be offered as a new blocker of
// todoUUID: everything except the todo itself, its current blockers and done
// todos. The result is computed fresh on every call.
func AvailableTodos(all []dto.TodoDTO, todoUUID string, blockedBy []dto.TodoSummaryDTO) []dto.TodoDTO {
	current := make(map[string]struct{}, len(blockedBy))
	for _, b := range blockedBy {
		current[b.UUID] = struct{}{}
	}

	available := make([]dto.TodoDTO, 0, len(all))
	for _, t := range all {
		if t.UUID == todoUUID || t.Status == models.TodoStatusDone {
			continue
		}
		if _, blocked := current[t.UUID]; blocked {
			continue
		}
		available = append(available, t)
	}
	return available
}
