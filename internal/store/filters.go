package store

import (
	"strings"
	"time"

	"github.com/ashishacharya123/pkms-todos/internal/api"
	"github.com/ashishacharya123/pkms-todos/internal/dto"
	"github.com/ashishacharya123/pkms-todos/internal/models"
)

// Filters are the list filters sent with every load. Empty values do not
// filter.
type Filters struct {
	Status      models.TodoStatus
	Priority    models.TodoPriority
	ProjectUUID string
	Tag         string
	Search      string
	ShowOverdue bool
	Archived    *bool
}

// DefaultFilters hides archived todos and nothing else.
func DefaultFilters() Filters {
	archived := false
	return Filters{Archived: &archived}
}

// Params converts the filters into API query parameters for one page.
func (f Filters) Params(page, limit int) api.ListParams {
	return api.ListParams{
		Status:      f.Status,
		Priority:    f.Priority,
		ProjectUUID: f.ProjectUUID,
		Tag:         f.Tag,
		Search:      strings.TrimSpace(f.Search),
		IsArchived:  f.Archived,
		Overdue:     f.ShowOverdue,
		Page:        page,
		Limit:       limit,
	}
}

// Matches reports whether todo would be returned by a load with these
// filters.
func (f Filters) Matches(todo dto.TodoDTO, now time.Time) bool {
	if f.Status != "" && todo.Status != f.Status {
		return false
	}
	if f.Priority != "" && todo.Priority != f.Priority {
		return false
	}
	if f.ProjectUUID != "" && !todo.HasProject(f.ProjectUUID) {
		return false
	}
	if f.Tag != "" && !todo.HasTag(f.Tag) {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		if !strings.Contains(strings.ToLower(todo.Title), search) &&
			!strings.Contains(strings.ToLower(todo.Description), search) {
			return false
		}
	}
	if f.ShowOverdue && !todo.IsOverdue(now) {
		return false
	}
	if f.Archived != nil && todo.IsArchived != *f.Archived {
		return false
	}
	if todo.ParentUUID != nil {
		// The list only holds top-level todos.
		return false
	}
	return true
}
