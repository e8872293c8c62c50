package dto

import (
	"strings"
	"time"

	"github.com/ashishacharya123/pkms-todos/internal/constants"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/utils"
)

// TodoSummaryDTO represents a todo on the other end of a dependency edge
type TodoSummaryDTO struct {
	UUID     string              `json:"uuid"`
	Title    string              `json:"title"`
	Status   models.TodoStatus   `json:"status"`
	Priority models.TodoPriority `json:"priority"`
}

// TodoDTO represents a todo in API responses
type TodoDTO struct {
	UUID           string              `json:"uuid"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Status         models.TodoStatus   `json:"status"`
	Priority       models.TodoPriority `json:"priority"`
	OrderIndex     int                 `json:"order_index"`
	DueDate        *time.Time          `json:"due_date"`
	StartDate      *time.Time          `json:"start_date"`
	CompletedAt    *time.Time          `json:"completed_at"`
	ParentUUID     *string             `json:"parent_uuid,omitempty"`
	Projects       []ProjectRefDTO     `json:"projects"`
	Subtasks       []TodoDTO           `json:"subtasks,omitempty"`
	Tags           []string            `json:"tags"`
	BlockingTodos  []TodoSummaryDTO    `json:"blocking_todos"`
	BlockedByTodos []TodoSummaryDTO    `json:"blocked_by_todos"`
	IsArchived     bool                `json:"is_archived"`
	IsFavorite     bool                `json:"is_favorite"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// IsOverdue reports whether the todo is past due and still open.
func (t TodoDTO) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && !t.Status.IsClosed() && t.DueDate.Before(now)
}

// IsDueSoon reports whether the todo falls due within the due-soon window.
func (t TodoDTO) IsDueSoon(now time.Time) bool {
	if t.DueDate == nil || t.Status.IsClosed() || t.IsOverdue(now) {
		return false
	}
	return !t.DueDate.After(now.Add(constants.DueSoonWindow))
}

// HasProject reports whether the todo is associated with the project.
func (t TodoDTO) HasProject(projectUUID string) bool {
	for _, p := range t.Projects {
		if p.UUID == projectUUID {
			return true
		}
	}
	return false
}

// HasTag reports whether the todo carries the tag, ignoring case.
func (t TodoDTO) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// IsBlockedBy reports whether blockerUUID is one of the todo's blockers.
func (t TodoDTO) IsBlockedBy(blockerUUID string) bool {
	for _, b := range t.BlockedByTodos {
		if b.UUID == blockerUUID {
			return true
		}
	}
	return false
}

// TodoListResponse represents a paginated list of todos
type TodoListResponse struct {
	Todos      []TodoDTO                `json:"todos"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// TodoSummaryListResponse wraps dependency listings
type TodoSummaryListResponse struct {
	Todos []TodoSummaryDTO `json:"todos"`
}

// MessageResponse is returned by endpoints without a resource body
type MessageResponse struct {
	Message string `json:"message"`
}

// StatsDTO holds aggregate counts for the todo list
type StatsDTO struct {
	Total          int64                       `json:"total"`
	ByStatus       map[models.TodoStatus]int64 `json:"by_status"`
	Overdue        int64                       `json:"overdue"`
	DueToday       int64                       `json:"due_today"`
	CompletedToday int64                       `json:"completed_today"`
}

// Requests

// CreateTodoRequest is the body of POST /todos
type CreateTodoRequest struct {
	Title                string              `json:"title" binding:"required"`
	Description          string              `json:"description,omitempty"`
	Status               models.TodoStatus   `json:"status,omitempty"`
	Priority             models.TodoPriority `json:"priority,omitempty"`
	DueDate              *time.Time          `json:"due_date,omitempty"`
	StartDate            *time.Time          `json:"start_date,omitempty"`
	ParentUUID           *string             `json:"parent_uuid,omitempty"`
	ProjectUUIDs         []string            `json:"project_uuids,omitempty"`
	AreProjectsExclusive bool                `json:"are_projects_exclusive,omitempty"`
	Tags                 []string            `json:"tags,omitempty"`
	IsFavorite           bool                `json:"is_favorite,omitempty"`
}

// UpdateTodoRequest is the body of PUT /todos/:uuid. Nil fields are left unchanged.
type UpdateTodoRequest struct {
	Title                *string              `json:"title,omitempty"`
	Description          *string              `json:"description,omitempty"`
	Priority             *models.TodoPriority `json:"priority,omitempty"`
	DueDate              *time.Time           `json:"due_date,omitempty"`
	ClearDueDate         bool                 `json:"clear_due_date,omitempty"`
	StartDate            *time.Time           `json:"start_date,omitempty"`
	ClearStartDate       bool                 `json:"clear_start_date,omitempty"`
	ProjectUUIDs         *[]string            `json:"project_uuids,omitempty"`
	AreProjectsExclusive *bool                `json:"are_projects_exclusive,omitempty"`
	Tags                 *[]string            `json:"tags,omitempty"`
	IsFavorite           *bool                `json:"is_favorite,omitempty"`
}

// UpdateStatusRequest is the body of PATCH /todos/:uuid/status
type UpdateStatusRequest struct {
	Status models.TodoStatus `json:"status" binding:"required"`
}

// ReorderRequest is the body of PATCH /todos/:uuid/reorder
type ReorderRequest struct {
	OrderIndex *int `json:"order_index" binding:"required"`
}

// AddDependencyRequest is the body of POST /todos/:uuid/dependencies
type AddDependencyRequest struct {
	BlockerUUID string `json:"blocker_uuid" binding:"required"`
}

// Conversion functions

// ToTodoSummaryDTO converts a Todo model to TodoSummaryDTO
func ToTodoSummaryDTO(todo models.Todo) TodoSummaryDTO {
	return TodoSummaryDTO{
		UUID:     todo.UUID,
		Title:    todo.Title,
		Status:   todo.Status,
		Priority: todo.Priority,
	}
}

// ToTodoSummaryDTOs converts a slice of todos to summaries
func ToTodoSummaryDTOs(todos []models.Todo) []TodoSummaryDTO {
	items := make([]TodoSummaryDTO, len(todos))
	for i, todo := range todos {
		items[i] = ToTodoSummaryDTO(todo)
	}
	return items
}

// ToTodoDTO converts a Todo model to TodoDTO. blocking and blockedBy are the
// todos on either side of the todo's dependency edges.
func ToTodoDTO(todo models.Todo, blocking, blockedBy []models.Todo) TodoDTO {
	dto := TodoDTO{
		UUID:           todo.UUID,
		Title:          todo.Title,
		Description:    todo.Description,
		Status:         todo.Status,
		Priority:       todo.Priority,
		OrderIndex:     todo.OrderIndex,
		DueDate:        todo.DueDate,
		StartDate:      todo.StartDate,
		CompletedAt:    todo.CompletedAt,
		ParentUUID:     todo.ParentUUID,
		Projects:       make([]ProjectRefDTO, 0, len(todo.ProjectLinks)),
		Tags:           make([]string, 0, len(todo.Tags)),
		BlockingTodos:  ToTodoSummaryDTOs(blocking),
		BlockedByTodos: ToTodoSummaryDTOs(blockedBy),
		IsArchived:     todo.IsArchived,
		IsFavorite:     todo.IsFavorite,
		CreatedAt:      todo.CreatedAt,
		UpdatedAt:      todo.UpdatedAt,
	}

	// Include projects if preloaded
	for _, link := range todo.ProjectLinks {
		dto.Projects = append(dto.Projects, ToProjectRefDTO(link))
	}

	for _, tag := range todo.Tags {
		dto.Tags = append(dto.Tags, tag.Name)
	}

	// Include subtasks if preloaded
	if len(todo.Subtasks) > 0 {
		dto.Subtasks = make([]TodoDTO, len(todo.Subtasks))
		for i, sub := range todo.Subtasks {
			dto.Subtasks[i] = ToTodoDTO(sub, nil, nil)
		}
	}

	return dto
}
