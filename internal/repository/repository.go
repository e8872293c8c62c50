package repository

import (
	"time"

	"github.com/ashishacharya123/pkms-todos/internal/models"
)

// TodoRepository defines the interface for todo data access
type TodoRepository interface {
	// Transaction runs fn against a repository bound to one database transaction
	Transaction(fn func(repo TodoRepository) error) error

	// Create creates a todo together with its tags and project links
	Create(todo *models.Todo) error

	// FindByUUID finds a todo by UUID with optional preloading
	FindByUUID(uuid string, preload ...string) (*models.Todo, error)

	// FindByUUIDs returns the todos with the given UUIDs, in no particular order
	FindByUUIDs(uuids []string) ([]models.Todo, error)

	// List retrieves top-level todos with filtering and pagination
	List(filter TodoFilter) ([]models.Todo, int64, error)

	// Update saves the todo's own columns, leaving associations alone
	Update(todo *models.Todo) error

	// Delete removes a todo, its subtasks, tags, project links and dependency edges
	Delete(uuid string) error

	// ReplaceTags replaces the todo's tag set
	ReplaceTags(uuid string, tags []string) error

	// ReplaceProjects replaces the todo's project links
	ReplaceProjects(uuid string, links []models.TodoProject) error

	// LaneTodos returns the top-level todos of one status lane ordered by order_index
	LaneTodos(status models.TodoStatus) ([]models.Todo, error)

	// SubtaskCount counts the direct children of a todo
	SubtaskCount(parentUUID string) (int64, error)

	// SetOrderIndex updates order_index without touching updated_at
	SetOrderIndex(uuid string, index int) error

	// Stats aggregates counts across non-archived top-level todos
	Stats(now time.Time) (*TodoStats, error)
}

// TodoFilter holds filtering options for listing todos
type TodoFilter struct {
	Status      *models.TodoStatus
	Priority    *models.TodoPriority
	ProjectUUID *string
	Tag         *string
	Search      string
	IsArchived  *bool
	OverdueAt   *time.Time
	Page        int
	PageSize    int
}

// TodoStats holds aggregate counts
type TodoStats struct {
	Total          int64
	ByStatus       map[models.TodoStatus]int64
	Overdue        int64
	DueToday       int64
	CompletedToday int64
}

// DependencyRepository defines the interface for dependency edge access
type DependencyRepository interface {
	// Add creates the edge blockerUUID -> blockedUUID
	Add(blockedUUID, blockerUUID string) error

	// Remove deletes an edge, reporting whether it existed
	Remove(blockedUUID, blockerUUID string) (bool, error)

	// Exists reports whether the edge exists
	Exists(blockedUUID, blockerUUID string) (bool, error)

	// Blockers returns the todos blocking uuid
	Blockers(uuid string) ([]models.Todo, error)

	// Blocking returns the todos uuid blocks
	Blocking(uuid string) ([]models.Todo, error)

	// BlockerUUIDs returns only the UUIDs of uuid's blockers
	BlockerUUIDs(uuid string) ([]string, error)

	// EdgesTouching returns every edge with either end in uuids
	EdgesTouching(uuids []string) ([]models.TodoDependency, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByUUID finds a project by UUID
	FindByUUID(uuid string) (*models.Project, error)

	// FindByUUIDs returns the projects with the given UUIDs
	FindByUUIDs(uuids []string) ([]models.Project, error)

	// FindByName finds a project by its unique name
	FindByName(name string) (*models.Project, error)

	// List returns every project ordered by name
	List() ([]models.Project, error)

	// TodoCounts returns the number of linked todos per project UUID
	TodoCounts() (map[string]int64, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete deletes a project and its todo links
	Delete(uuid string) error
}
