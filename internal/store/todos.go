package store

import (
	"context"

	"github.com/ashishacharya123/pkms-todos/internal/dto"
	apierrors "github.com/ashishacharya123/pkms-todos/internal/errors"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/notify"
)

// LoadTodos replaces the list with the first page for the active filters.
// HasMore is true when the page came back full.
func (s *Store) LoadTodos(ctx context.Context) error {
	s.mu.Lock()
	s.listGen++
	gen := s.listGen
	params := s.filters.Params(1, s.pageSize)
	s.loading = true
	s.mu.Unlock()

	resp, err := s.backend.ListTodos(ctx, params)

	s.mu.Lock()
	if gen != s.listGen {
		s.mu.Unlock()
		return nil
	}
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		return s.fail(ctx, err, "Failed to load todos")
	}
	if ctx.Err() != nil {
		s.mu.Unlock()
		return ctx.Err()
	}
	s.entries = s.entriesLocked(resp.Todos)
	s.page = 1
	s.hasMore = len(resp.Todos) == params.Limit
	s.mu.Unlock()

	s.logger.Debug("Todos loaded", "count", len(resp.Todos), "total", resp.Pagination.Total)
	return nil
}

// LoadMore appends the next page. It does nothing when the last page was
// not full or a load is in flight.
func (s *Store) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasMore || s.loading {
		s.mu.Unlock()
		return nil
	}
	gen := s.listGen
	page := s.page + 1
	params := s.filters.Params(page, s.pageSize)
	s.loading = true
	s.mu.Unlock()

	resp, err := s.backend.ListTodos(ctx, params)

	s.mu.Lock()
	if gen != s.listGen {
		s.mu.Unlock()
		return nil
	}
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		return s.fail(ctx, err, "Failed to load more todos", "page", page)
	}
	if ctx.Err() != nil {
		s.mu.Unlock()
		return ctx.Err()
	}
	for _, e := range s.entriesLocked(resp.Todos) {
		if s.indexLocked(e.Todo.UUID) < 0 {
			s.entries = append(s.entries, e)
		}
	}
	s.page = page
	s.hasMore = len(resp.Todos) == params.Limit
	s.mu.Unlock()
	return nil
}

// LoadTodo opens a todo in the detail view.
func (s *Store) LoadTodo(ctx context.Context, uuid string) (*dto.TodoDTO, error) {
	todo, err := s.backend.GetTodo(ctx, uuid)
	if err != nil {
		return nil, s.fail(ctx, err, "Failed to load todo", "uuid", uuid)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.mu.Lock()
	s.current = todo
	if i := s.indexLocked(uuid); i >= 0 && s.entries[i].State != StatePending {
		s.entries[i] = Entry{Todo: *todo, State: StateCommitted}
	}
	s.mu.Unlock()
	return todo, nil
}

// CloseTodo clears the detail view.
func (s *Store) CloseTodo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// CreateTodo creates a todo. It is put at the head of the list only when it
// matches the active filters. On failure the list is left alone and nil is
// returned with the error.
func (s *Store) CreateTodo(ctx context.Context, req dto.CreateTodoRequest) (*dto.TodoDTO, error) {
	todo, err := s.backend.CreateTodo(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, err, "Failed to create todo")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.mu.Lock()
	if s.filters.Matches(*todo, s.now()) && s.indexLocked(todo.UUID) < 0 {
		s.entries = append([]Entry{{Todo: *todo, State: StateCommitted}}, s.entries...)
	}
	s.mu.Unlock()

	s.reloadStats(ctx)
	notify.Success(s.notifier, "Todo created")
	return todo, nil
}

// UpdateTodo saves changes to a todo and replaces it in place.
func (s *Store) UpdateTodo(ctx context.Context, uuid string, req dto.UpdateTodoRequest) (*dto.TodoDTO, error) {
	todo, err := s.mutate(ctx, uuid, "Failed to update todo", func(ctx context.Context) (*dto.TodoDTO, error) {
		return s.backend.UpdateTodo(ctx, uuid, req)
	})
	if err != nil {
		return nil, err
	}
	s.reloadStats(ctx)
	return todo, nil
}

// CompleteTodo marks a todo done.
func (s *Store) CompleteTodo(ctx context.Context, uuid string) (*dto.TodoDTO, error) {
	todo, err := s.mutate(ctx, uuid, "Failed to complete todo", func(ctx context.Context) (*dto.TodoDTO, error) {
		return s.backend.CompleteTodo(ctx, uuid)
	})
	if err != nil {
		return nil, err
	}
	s.reloadStats(ctx)
	return todo, nil
}

// ArchiveTodo archives a todo. The local flag flips only after the server
// confirms.
func (s *Store) ArchiveTodo(ctx context.Context, uuid string) (*dto.TodoDTO, error) {
	return s.mutate(ctx, uuid, "Failed to archive todo", func(ctx context.Context) (*dto.TodoDTO, error) {
		return s.backend.ArchiveTodo(ctx, uuid)
	})
}

// UnarchiveTodo restores an archived todo.
func (s *Store) UnarchiveTodo(ctx context.Context, uuid string) (*dto.TodoDTO, error) {
	return s.mutate(ctx, uuid, "Failed to unarchive todo", func(ctx context.Context) (*dto.TodoDTO, error) {
		return s.backend.UnarchiveTodo(ctx, uuid)
	})
}

// UpdateTodoStatus moves a todo to another lane. The server appends it to the
// end of the new lane; the old lane is compacted locally to match.
func (s *Store) UpdateTodoStatus(ctx context.Context, uuid string, status models.TodoStatus) (*dto.TodoDTO, error) {
	todo, err := s.mutate(ctx, uuid, "Failed to update todo status", func(ctx context.Context) (*dto.TodoDTO, error) {
		return s.backend.UpdateTodoStatus(ctx, uuid, status)
	})
	if err != nil {
		return nil, err
	}
	s.reloadStats(ctx)
	return todo, nil
}

// ReorderTodo moves a todo to orderIndex within its lane. The neighbours'
// indexes are shifted locally the same way the server renumbers the lane.
func (s *Store) ReorderTodo(ctx context.Context, uuid string, orderIndex int) (*dto.TodoDTO, error) {
	return s.mutate(ctx, uuid, "Failed to reorder todo", func(ctx context.Context) (*dto.TodoDTO, error) {
		return s.backend.ReorderTodo(ctx, uuid, orderIndex)
	})
}

// ToggleFavorite flips is_favorite.
func (s *Store) ToggleFavorite(ctx context.Context, uuid string) (*dto.TodoDTO, error) {
	s.mu.RLock()
	var favorite bool
	if i := s.indexLocked(uuid); i >= 0 {
		favorite = s.entries[i].Todo.IsFavorite
	} else if s.current != nil && s.current.UUID == uuid {
		favorite = s.current.IsFavorite
	}
	s.mu.RUnlock()

	favorite = !favorite
	return s.mutate(ctx, uuid, "Failed to update todo", func(ctx context.Context) (*dto.TodoDTO, error) {
		return s.backend.UpdateTodo(ctx, uuid, dto.UpdateTodoRequest{IsFavorite: &favorite})
	})
}

// DeleteTodo hides the todo at once and deletes it on the server. If the
// request fails the entry comes back, marked Failed.
func (s *Store) DeleteTodo(ctx context.Context, uuid string) error {
	s.mu.Lock()
	snap := snapshot{index: -1}
	if i := s.indexLocked(uuid); i >= 0 {
		snap = snapshot{entry: s.entries[i], index: i, found: true}
		s.entries[i].deleting = true
		s.entries[i].State = StatePending
	}
	s.deleting[uuid] = snap
	s.mu.Unlock()

	err := s.backend.DeleteTodo(ctx, uuid)

	s.mu.Lock()
	delete(s.deleting, uuid)
	if err != nil {
		reason := apierrors.MessageFrom(err, "Failed to delete todo")
		if i := s.indexLocked(uuid); i >= 0 {
			s.entries[i].deleting = false
			s.entries[i].State = StateFailed
			s.entries[i].Reason = reason
		} else if snap.found {
			// The list was reloaded while the delete was in flight.
			restored := snap.entry
			restored.State = StateFailed
			restored.Reason = reason
			at := min(snap.index, len(s.entries))
			s.entries = append(s.entries[:at], append([]Entry{restored}, s.entries[at:]...)...)
		}
		s.mu.Unlock()
		return s.fail(ctx, err, "Failed to delete todo", "uuid", uuid)
	}

	if i := s.indexLocked(uuid); i >= 0 {
		removed := s.entries[i].Todo
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		s.compactLaneLocked(removed)
	}
	if s.current != nil && s.current.UUID == uuid {
		s.current = nil
	}
	s.mu.Unlock()

	s.reloadStats(ctx)
	notify.Success(s.notifier, "Todo deleted")
	return nil
}

// mutate marks the entry Pending while call runs, then either commits the
// server's todo or restores the previous one marked Failed.
func (s *Store) mutate(ctx context.Context, uuid, fallback string, call func(context.Context) (*dto.TodoDTO, error)) (*dto.TodoDTO, error) {
	snap := s.begin(uuid)

	todo, err := call(ctx)
	if err != nil {
		s.restore(snap, StateFailed, apierrors.MessageFrom(err, fallback))
		return nil, s.fail(ctx, err, fallback, "uuid", uuid)
	}
	if ctx.Err() != nil {
		s.restore(snap, snap.entry.State, snap.entry.Reason)
		return nil, ctx.Err()
	}

	s.commit(*todo)
	return todo, nil
}

func (s *Store) begin(uuid string) snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(uuid)
	if i < 0 {
		return snapshot{entry: Entry{Todo: dto.TodoDTO{UUID: uuid}}, index: -1}
	}
	snap := snapshot{entry: s.entries[i], index: i, found: true}
	s.entries[i].State = StatePending
	s.entries[i].Reason = ""
	return snap
}

func (s *Store) restore(snap snapshot, state State, reason string) {
	if !snap.found {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(snap.entry.Todo.UUID)
	if i < 0 {
		return
	}
	if s.entries[i].State == StatePending {
		s.entries[i].Todo = snap.entry.Todo
	}
	s.entries[i].State = state
	s.entries[i].Reason = reason
}

// commit stores the server's version of a todo, keeping the neighbours'
// order_index values in step with the server.
func (s *Store) commit(updated dto.TodoDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(updated.UUID); i >= 0 {
		previous := s.entries[i].Todo
		s.entries[i] = Entry{Todo: updated, State: StateCommitted}
		switch {
		case previous.Status != updated.Status:
			s.compactLaneLocked(previous)
		case previous.OrderIndex != updated.OrderIndex:
			s.shiftLaneLocked(updated.UUID, updated.Status, previous.OrderIndex, updated.OrderIndex)
		}
	}
	if s.current != nil && s.current.UUID == updated.UUID {
		current := updated
		s.current = &current
	}
}

// compactLaneLocked closes the gap left by removed in its lane.
func (s *Store) compactLaneLocked(removed dto.TodoDTO) {
	if removed.ParentUUID != nil {
		return
	}
	for i := range s.entries {
		t := &s.entries[i].Todo
		if t.UUID != removed.UUID && t.ParentUUID == nil && t.Status == removed.Status && t.OrderIndex > removed.OrderIndex {
			t.OrderIndex--
		}
	}
}

// shiftLaneLocked applies the renumbering of moving one todo from index
// from to index to within a lane.
func (s *Store) shiftLaneLocked(uuid string, status models.TodoStatus, from, to int) {
	for i := range s.entries {
		t := &s.entries[i].Todo
		if t.UUID == uuid || t.ParentUUID != nil || t.Status != status {
			continue
		}
		switch {
		case from < to && t.OrderIndex > from && t.OrderIndex <= to:
			t.OrderIndex--
		case from > to && t.OrderIndex >= to && t.OrderIndex < from:
			t.OrderIndex++
		}
	}
}

// entriesLocked wraps todos as committed entries, leaving out todos whose
// delete is still in flight.
func (s *Store) entriesLocked(todos []dto.TodoDTO) []Entry {
	entries := make([]Entry, 0, len(todos))
	for _, t := range todos {
		if _, deleting := s.deleting[t.UUID]; deleting {
			continue
		}
		entries = append(entries, Entry{Todo: t, State: StateCommitted})
	}
	return entries
}
