package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ashishacharya123/pkms-todos/internal/constants"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/repository"
	"github.com/ashishacharya123/pkms-todos/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTodoNotFound             = errors.New("todo not found")
	ErrTitleRequired            = errors.New("title is required")
	ErrTitleEmpty               = errors.New("title cannot be empty")
	ErrTitleTooLong             = fmt.Errorf("title cannot exceed %d characters", constants.MaxTitleLength)
	ErrTagTooLong               = fmt.Errorf("tags cannot exceed %d characters", constants.MaxTagLength)
	ErrInvalidStatus            = errors.New("invalid status")
	ErrInvalidPriority          = errors.New("invalid priority")
	ErrParentNotFound           = errors.New("parent todo not found")
	ErrProjectNotFound          = errors.New("project not found")
	ErrExclusiveProjectConflict = errors.New("an exclusive todo can belong to only one project")
)

// TodoDetail is a todo together with the todos on either side of its
// dependency edges
type TodoDetail struct {
	Todo      models.Todo
	Blocking  []models.Todo
	BlockedBy []models.Todo
}

// TodoService handles todo business logic
type TodoService struct {
	todoRepo    repository.TodoRepository
	depRepo     repository.DependencyRepository
	projectRepo repository.ProjectRepository
	now         func() time.Time
}

// NewTodoService creates a new TodoService
func NewTodoService(todoRepo repository.TodoRepository, depRepo repository.DependencyRepository, projectRepo repository.ProjectRepository) *TodoService {
	return &TodoService{
		todoRepo:    todoRepo,
		depRepo:     depRepo,
		projectRepo: projectRepo,
		now:         time.Now,
	}
}

// ListTodosInput represents filters for listing todos
type ListTodosInput struct {
	Status      *models.TodoStatus
	Priority    *models.TodoPriority
	ProjectUUID *string
	Tag         *string
	Search      string
	IsArchived  *bool
	Overdue     bool
	Page        int
	PageSize    int
}

// CreateTodoInput represents input for creating a todo
type CreateTodoInput struct {
	Title                string
	Description          string
	Status               models.TodoStatus
	Priority             models.TodoPriority
	DueDate              *time.Time
	StartDate            *time.Time
	ParentUUID           *string
	ProjectUUIDs         []string
	AreProjectsExclusive bool
	Tags                 []string
	IsFavorite           bool
}

// UpdateTodoInput represents input for updating a todo. Nil fields are left unchanged.
type UpdateTodoInput struct {
	Title                *string
	Description          *string
	Priority             *models.TodoPriority
	DueDate              *time.Time
	ClearDueDate         bool
	StartDate            *time.Time
	ClearStartDate       bool
	ProjectUUIDs         *[]string
	AreProjectsExclusive *bool
	Tags                 *[]string
	IsFavorite           *bool
}

// ListTodos returns top-level todos matching the filters with their dependency edges
func (s *TodoService) ListTodos(input ListTodosInput) ([]TodoDetail, int64, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, ErrInvalidStatus
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, 0, ErrInvalidPriority
	}

	filter := repository.TodoFilter{
		Status:      input.Status,
		Priority:    input.Priority,
		ProjectUUID: input.ProjectUUID,
		Tag:         input.Tag,
		Search:      input.Search,
		IsArchived:  input.IsArchived,
		Page:        input.Page,
		PageSize:    input.PageSize,
	}
	if input.Overdue {
		now := s.now()
		filter.OverdueAt = &now
	}

	todos, total, err := s.todoRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list todos: %w", err)
	}

	details, err := s.attachEdges(todos)
	if err != nil {
		return nil, 0, err
	}

	return details, total, nil
}

// GetTodo returns a todo with related data
func (s *TodoService) GetTodo(uuid string) (*TodoDetail, error) {
	todo, err := s.findTodo(s.todoRepo, uuid, repository.PreloadTodoDetail...)
	if err != nil {
		return nil, err
	}

	blocking, err := s.depRepo.Blocking(uuid)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocking todos: %w", err)
	}
	blockedBy, err := s.depRepo.Blockers(uuid)
	if err != nil {
		return nil, fmt.Errorf("failed to load blockers: %w", err)
	}

	return &TodoDetail{Todo: *todo, Blocking: blocking, BlockedBy: blockedBy}, nil
}

// CreateTodo creates a new todo at the end of its lane
func (s *TodoService) CreateTodo(input CreateTodoInput) (*TodoDetail, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		if errors.Is(err, ErrTitleEmpty) {
			return nil, ErrTitleRequired
		}
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.TodoStatusPending
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority == "" {
		input.Priority = models.TodoPriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	tags, err := normalizeTags(input.Tags)
	if err != nil {
		return nil, err
	}

	links, err := s.projectLinks(input.ProjectUUIDs, input.AreProjectsExclusive)
	if err != nil {
		return nil, err
	}

	todo := &models.Todo{
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		StartDate:   input.StartDate,
		ParentUUID:  input.ParentUUID,
		IsFavorite:  input.IsFavorite,
	}
	for _, tag := range tags {
		todo.Tags = append(todo.Tags, models.TodoTag{Name: tag})
	}
	todo.ProjectLinks = links
	if todo.Status == models.TodoStatusDone {
		now := s.now()
		todo.CompletedAt = &now
	}

	err = s.todoRepo.Transaction(func(repo repository.TodoRepository) error {
		if todo.ParentUUID != nil {
			if _, err := repo.FindByUUID(*todo.ParentUUID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrParentNotFound
				}
				return fmt.Errorf("failed to find parent todo: %w", err)
			}
			count, err := repo.SubtaskCount(*todo.ParentUUID)
			if err != nil {
				return fmt.Errorf("failed to count subtasks: %w", err)
			}
			todo.OrderIndex = int(count)
		} else {
			lane, err := repo.LaneTodos(todo.Status)
			if err != nil {
				return fmt.Errorf("failed to load lane: %w", err)
			}
			todo.OrderIndex = len(lane)
		}

		if err := repo.Create(todo); err != nil {
			return fmt.Errorf("failed to create todo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTodo(todo.UUID)
}

// UpdateTodo updates an existing todo's fields, tags and projects
func (s *TodoService) UpdateTodo(uuid string, input UpdateTodoInput) (*TodoDetail, error) {
	todo, err := s.findTodo(s.todoRepo, uuid, "ProjectLinks")
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		todo.Title = title
	}
	if input.Description != nil {
		todo.Description = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		todo.Priority = *input.Priority
	}
	if input.ClearDueDate {
		todo.DueDate = nil
	} else if input.DueDate != nil {
		todo.DueDate = input.DueDate
	}
	if input.ClearStartDate {
		todo.StartDate = nil
	} else if input.StartDate != nil {
		todo.StartDate = input.StartDate
	}
	if input.IsFavorite != nil {
		todo.IsFavorite = *input.IsFavorite
	}

	var tags []string
	if input.Tags != nil {
		if tags, err = normalizeTags(*input.Tags); err != nil {
			return nil, err
		}
	}

	var links []models.TodoProject
	replaceProjects := input.ProjectUUIDs != nil || input.AreProjectsExclusive != nil
	if replaceProjects {
		projectUUIDs := make([]string, 0, len(todo.ProjectLinks))
		exclusive := false
		for _, link := range todo.ProjectLinks {
			projectUUIDs = append(projectUUIDs, link.ProjectUUID)
			exclusive = exclusive || link.IsExclusive
		}
		if input.ProjectUUIDs != nil {
			projectUUIDs = *input.ProjectUUIDs
		}
		if input.AreProjectsExclusive != nil {
			exclusive = *input.AreProjectsExclusive
		}
		if links, err = s.projectLinks(projectUUIDs, exclusive); err != nil {
			return nil, err
		}
	}

	err = s.todoRepo.Transaction(func(repo repository.TodoRepository) error {
		if err := repo.Update(todo); err != nil {
			return fmt.Errorf("failed to update todo: %w", err)
		}
		if input.Tags != nil {
			if err := repo.ReplaceTags(uuid, tags); err != nil {
				return fmt.Errorf("failed to update tags: %w", err)
			}
		}
		if replaceProjects {
			if err := repo.ReplaceProjects(uuid, links); err != nil {
				return fmt.Errorf("failed to update projects: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTodo(uuid)
}

// DeleteTodo deletes a todo and closes the gap it leaves in its lane
func (s *TodoService) DeleteTodo(uuid string) error {
	return s.todoRepo.Transaction(func(repo repository.TodoRepository) error {
		todo, err := s.findTodo(repo, uuid)
		if err != nil {
			return err
		}

		if err := repo.Delete(uuid); err != nil {
			return fmt.Errorf("failed to delete todo: %w", err)
		}

		return s.compact(repo, todo)
	})
}

// CompleteTodo moves a todo to the done lane
func (s *TodoService) CompleteTodo(uuid string) (*TodoDetail, error) {
	return s.UpdateStatus(uuid, models.TodoStatusDone)
}

// SetArchived archives or unarchives a todo. Status and position are kept.
func (s *TodoService) SetArchived(uuid string, archived bool) (*TodoDetail, error) {
	todo, err := s.findTodo(s.todoRepo, uuid)
	if err != nil {
		return nil, err
	}

	if todo.IsArchived != archived {
		todo.IsArchived = archived
		if err := s.todoRepo.Update(todo); err != nil {
			return nil, fmt.Errorf("failed to update todo: %w", err)
		}
	}

	return s.GetTodo(uuid)
}

// UpdateStatus moves a todo to the end of another status lane and compacts
// the lane it left
func (s *TodoService) UpdateStatus(uuid string, status models.TodoStatus) (*TodoDetail, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	err := s.todoRepo.Transaction(func(repo repository.TodoRepository) error {
		todo, err := s.findTodo(repo, uuid)
		if err != nil {
			return err
		}
		if todo.Status == status {
			return nil
		}

		previous := *todo
		todo.Status = status
		if status == models.TodoStatusDone {
			now := s.now()
			todo.CompletedAt = &now
		} else {
			todo.CompletedAt = nil
		}

		// Subtasks keep their position under the parent.
		if todo.ParentUUID == nil {
			lane, err := repo.LaneTodos(status)
			if err != nil {
				return fmt.Errorf("failed to load lane: %w", err)
			}
			todo.OrderIndex = len(lane)
		}

		if err := repo.Update(todo); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		return s.compact(repo, &previous)
	})
	if err != nil {
		return nil, err
	}

	return s.GetTodo(uuid)
}

// Reorder moves a todo to index within its lane, or within its parent's
// subtasks, clamping the index and renumbering the siblings densely
func (s *TodoService) Reorder(uuid string, index int) (*TodoDetail, error) {
	err := s.todoRepo.Transaction(func(repo repository.TodoRepository) error {
		todo, err := s.findTodo(repo, uuid)
		if err != nil {
			return err
		}

		siblings, err := s.siblings(repo, todo)
		if err != nil {
			return err
		}

		from := utils.IndexOf(siblings, func(t models.Todo) bool { return t.UUID == uuid })
		if from < 0 {
			return ErrTodoNotFound
		}
		ordered := utils.MoveItem(siblings, from, utils.ClampIndex(index, len(siblings)))

		return renumber(repo, ordered)
	})
	if err != nil {
		return nil, err
	}

	return s.GetTodo(uuid)
}

// Stats returns aggregate counts for non-archived top-level todos
func (s *TodoService) Stats() (*repository.TodoStats, error) {
	stats, err := s.todoRepo.Stats(s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}

// attachEdges loads the dependency edges of todos in bulk
func (s *TodoService) attachEdges(todos []models.Todo) ([]TodoDetail, error) {
	details := make([]TodoDetail, len(todos))
	if len(todos) == 0 {
		return details, nil
	}

	uuids := make([]string, len(todos))
	for i, todo := range todos {
		uuids[i] = todo.UUID
	}

	edges, err := s.depRepo.EdgesTouching(uuids)
	if err != nil {
		return nil, fmt.Errorf("failed to load dependencies: %w", err)
	}

	counterparts := make([]string, 0, len(edges)*2)
	for _, edge := range edges {
		counterparts = append(counterparts, edge.BlockedUUID, edge.BlockerUUID)
	}
	related, err := s.todoRepo.FindByUUIDs(uniqueStrings(counterparts))
	if err != nil {
		return nil, fmt.Errorf("failed to load dependent todos: %w", err)
	}
	byUUID := make(map[string]models.Todo, len(related))
	for _, todo := range related {
		byUUID[todo.UUID] = todo
	}

	blocking := make(map[string][]models.Todo)
	blockedBy := make(map[string][]models.Todo)
	for _, edge := range edges {
		if blocked, ok := byUUID[edge.BlockedUUID]; ok {
			blocking[edge.BlockerUUID] = append(blocking[edge.BlockerUUID], blocked)
		}
		if blocker, ok := byUUID[edge.BlockerUUID]; ok {
			blockedBy[edge.BlockedUUID] = append(blockedBy[edge.BlockedUUID], blocker)
		}
	}

	for i, todo := range todos {
		details[i] = TodoDetail{
			Todo:      todo,
			Blocking:  blocking[todo.UUID],
			BlockedBy: blockedBy[todo.UUID],
		}
	}
	return details, nil
}

// projectLinks validates project UUIDs and builds the association rows
func (s *TodoService) projectLinks(projectUUIDs []string, exclusive bool) ([]models.TodoProject, error) {
	projectUUIDs = uniqueStrings(projectUUIDs)
	if len(projectUUIDs) == 0 {
		return nil, nil
	}
	if exclusive && len(projectUUIDs) > 1 {
		return nil, ErrExclusiveProjectConflict
	}

	projects, err := s.projectRepo.FindByUUIDs(projectUUIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to verify projects: %w", err)
	}
	if len(projects) != len(projectUUIDs) {
		return nil, ErrProjectNotFound
	}

	links := make([]models.TodoProject, len(projectUUIDs))
	for i, projectUUID := range projectUUIDs {
		links[i] = models.TodoProject{ProjectUUID: projectUUID, IsExclusive: exclusive}
	}
	return links, nil
}

// findTodo maps a missing record to ErrTodoNotFound
func (s *TodoService) findTodo(repo repository.TodoRepository, uuid string, preload ...string) (*models.Todo, error) {
	todo, err := repo.FindByUUID(uuid, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return todo, nil
}

// siblings returns the ordered list todo is positioned in
func (s *TodoService) siblings(repo repository.TodoRepository, todo *models.Todo) ([]models.Todo, error) {
	if todo.ParentUUID == nil {
		lane, err := repo.LaneTodos(todo.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to load lane: %w", err)
		}
		return lane, nil
	}

	parent, err := s.findTodo(repo, *todo.ParentUUID, "Subtasks")
	if err != nil {
		if errors.Is(err, ErrTodoNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	return parent.Subtasks, nil
}

// compact renumbers the list todo used to sit in
func (s *TodoService) compact(repo repository.TodoRepository, todo *models.Todo) error {
	if todo.ParentUUID != nil {
		if _, err := repo.FindByUUID(*todo.ParentUUID); errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
	}
	siblings, err := s.siblings(repo, todo)
	if err != nil {
		return err
	}
	return renumber(repo, siblings)
}

// renumber writes order_index 0..n-1 following the slice order
func renumber(repo repository.TodoRepository, ordered []models.Todo) error {
	for i, todo := range ordered {
		if todo.OrderIndex == i {
			continue
		}
		if err := repo.SetOrderIndex(todo.UUID, i); err != nil {
			return fmt.Errorf("failed to renumber %s: %w", todo.UUID, err)
		}
	}
	return nil
}

// validateTitle trims the title and checks it is non-blank and not too long
func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleEmpty
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

// normalizeTags trims tags and removes blanks and case-insensitive duplicates
func normalizeTags(tags []string) ([]string, error) {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > constants.MaxTagLength {
			return nil, ErrTagTooLong
		}
		key := strings.ToLower(tag)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, tag)
	}

	return result, nil
}

// uniqueStrings removes duplicate values from a slice of strings
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
