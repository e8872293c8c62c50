package store

import (
	"context"

	"github.com/ashishacharya123/pkms-todos/internal/models"
)

// SetStatus filters the list by status and reloads it. An empty status
// clears the filter.
func (s *Store) SetStatus(ctx context.Context, status models.TodoStatus) error {
	return s.setFilter(ctx, func(f *Filters) { f.Status = status })
}

// SetPriority filters by priority and reloads.
func (s *Store) SetPriority(ctx context.Context, priority models.TodoPriority) error {
	return s.setFilter(ctx, func(f *Filters) { f.Priority = priority })
}

// SetProjectFilter filters by project and reloads.
func (s *Store) SetProjectFilter(ctx context.Context, projectUUID string) error {
	return s.setFilter(ctx, func(f *Filters) { f.ProjectUUID = projectUUID })
}

// SetTag filters by tag and reloads.
func (s *Store) SetTag(ctx context.Context, tag string) error {
	return s.setFilter(ctx, func(f *Filters) { f.Tag = tag })
}

// SetShowOverdue limits the list to overdue todos and reloads.
func (s *Store) SetShowOverdue(ctx context.Context, overdue bool) error {
	return s.setFilter(ctx, func(f *Filters) { f.ShowOverdue = overdue })
}

// SetArchivedFilter selects archived (true), active (false) or all (nil)
// todos and reloads.
func (s *Store) SetArchivedFilter(ctx context.Context, archived *bool) error {
	return s.setFilter(ctx, func(f *Filters) {
		if archived == nil {
			f.Archived = nil
			return
		}
		value := *archived
		f.Archived = &value
	})
}

// SetSearch stores the search text. The caller decides when to reload.
func (s *Store) SetSearch(search string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Search = search
}

// SetFilters replaces every filter at once and reloads.
func (s *Store) SetFilters(ctx context.Context, filters Filters) error {
	return s.setFilter(ctx, func(f *Filters) { *f = filters })
}

// ClearFilters restores the default filters and reloads.
func (s *Store) ClearFilters(ctx context.Context) error {
	return s.setFilter(ctx, func(f *Filters) { *f = DefaultFilters() })
}

func (s *Store) setFilter(ctx context.Context, apply func(*Filters)) error {
	s.mu.Lock()
	apply(&s.filters)
	s.mu.Unlock()
	return s.LoadTodos(ctx)
}
