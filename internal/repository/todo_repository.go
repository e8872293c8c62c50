package repository

import (
	"strings"
	"time"

	"github.com/ashishacharya123/pkms-todos/internal/database"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Preload sets used by the services
var (
	PreloadTodoList   = []string{"Tags", "ProjectLinks.Project", "Subtasks"}
	PreloadTodoDetail = []string{"Tags", "ProjectLinks.Project", "Subtasks", "Subtasks.Tags"}
)

// GormTodoRepository is a GORM implementation of TodoRepository
type GormTodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &GormTodoRepository{db: db}
}

// Transaction runs fn inside a single database transaction
func (r *GormTodoRepository) Transaction(fn func(repo TodoRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormTodoRepository{db: tx})
	})
}

// Create creates a todo together with its tags and project links
func (r *GormTodoRepository) Create(todo *models.Todo) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(todo).Error; err != nil {
			return err
		}
		for i := range todo.Tags {
			todo.Tags[i].TodoUUID = todo.UUID
		}
		if len(todo.Tags) > 0 {
			if err := tx.Create(&todo.Tags).Error; err != nil {
				return err
			}
		}
		for i := range todo.ProjectLinks {
			todo.ProjectLinks[i].TodoUUID = todo.UUID
		}
		if len(todo.ProjectLinks) > 0 {
			if err := tx.Omit("Project").Create(&todo.ProjectLinks).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByUUID finds a todo by UUID with optional preloading
func (r *GormTodoRepository) FindByUUID(uuid string, preload ...string) (*models.Todo, error) {
	var todo models.Todo
	query := preloadTodo(r.db, preload)

	if err := query.Where("uuid = ?", uuid).First(&todo).Error; err != nil {
		return nil, err
	}

	return &todo, nil
}

// FindByUUIDs returns the todos with the given UUIDs
func (r *GormTodoRepository) FindByUUIDs(uuids []string) ([]models.Todo, error) {
	var todos []models.Todo
	if len(uuids) == 0 {
		return todos, nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// List retrieves top-level todos with filtering and pagination
func (r *GormTodoRepository) List(filter TodoFilter) ([]models.Todo, int64, error) {
	var todos []models.Todo

	query := r.db.Model(&models.Todo{}).Scopes(database.TopLevel)

	// Apply filters
	if filter.Status != nil {
		query = query.Scopes(database.Lane(*filter.Status))
	}
	if filter.Priority != nil {
		query = query.Where("todos.priority = ?", *filter.Priority)
	}
	if filter.ProjectUUID != nil {
		projectSubQuery := r.db.Model(&models.TodoProject{}).
			Select("1").
			Where("todo_projects.todo_uuid = todos.uuid").
			Where("todo_projects.project_uuid = ?", *filter.ProjectUUID)
		query = query.Where("EXISTS (?)", projectSubQuery)
	}
	if filter.Tag != nil {
		tagSubQuery := r.db.Model(&models.TodoTag{}).
			Select("1").
			Where("todo_tags.todo_uuid = todos.uuid").
			Where("LOWER(todo_tags.name) = ?", strings.ToLower(*filter.Tag))
		query = query.Where("EXISTS (?)", tagSubQuery)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(todos.title) LIKE ? OR LOWER(todos.description) LIKE ?)", pattern, pattern)
	}
	if filter.IsArchived != nil {
		query = query.Where("todos.is_archived = ?", *filter.IsArchived)
	}
	if filter.OverdueAt != nil {
		query = query.
			Where("todos.due_date < ?", *filter.OverdueAt).
			Where("todos.status NOT IN ?", closedStatuses())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("todos.status ASC, todos.order_index ASC, todos.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := preloadTodo(listQuery, PreloadTodoList).Find(&todos).Error; err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}

// Update saves the todo's own columns
func (r *GormTodoRepository) Update(todo *models.Todo) error {
	return r.db.Omit(clause.Associations).Save(todo).Error
}

// Delete removes a todo and everything hanging off it
func (r *GormTodoRepository) Delete(uuid string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Collect the subtree level by level so children can be removed first.
		levels := [][]string{{uuid}}
		for {
			var children []string
			if err := tx.Model(&models.Todo{}).
				Where("parent_uuid IN ?", levels[len(levels)-1]).
				Pluck("uuid", &children).Error; err != nil {
				return err
			}
			if len(children) == 0 {
				break
			}
			levels = append(levels, children)
		}

		var all []string
		for _, level := range levels {
			all = append(all, level...)
		}

		if err := tx.Where("blocked_uuid IN ? OR blocker_uuid IN ?", all, all).
			Delete(&models.TodoDependency{}).Error; err != nil {
			return err
		}
		if err := tx.Where("todo_uuid IN ?", all).Delete(&models.TodoTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("todo_uuid IN ?", all).Delete(&models.TodoProject{}).Error; err != nil {
			return err
		}
		for i := len(levels) - 1; i >= 0; i-- {
			if err := tx.Where("uuid IN ?", levels[i]).Delete(&models.Todo{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceTags replaces the todo's tag set
func (r *GormTodoRepository) ReplaceTags(uuid string, tags []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("todo_uuid = ?", uuid).Delete(&models.TodoTag{}).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		rows := make([]models.TodoTag, len(tags))
		for i, tag := range tags {
			rows[i] = models.TodoTag{TodoUUID: uuid, Name: tag}
		}
		return tx.Create(&rows).Error
	})
}

// ReplaceProjects replaces the todo's project links
func (r *GormTodoRepository) ReplaceProjects(uuid string, links []models.TodoProject) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("todo_uuid = ?", uuid).Delete(&models.TodoProject{}).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		for i := range links {
			links[i].TodoUUID = uuid
		}
		return tx.Omit("Project").Create(&links).Error
	})
}

// LaneTodos returns one status lane ordered by order_index
func (r *GormTodoRepository) LaneTodos(status models.TodoStatus) ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.Scopes(database.TopLevel, database.Lane(status)).
		Order("todos.order_index ASC, todos.created_at ASC").
		Find(&todos).Error
	return todos, err
}

// SubtaskCount counts the direct children of a todo
func (r *GormTodoRepository) SubtaskCount(parentUUID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Todo{}).Where("parent_uuid = ?", parentUUID).Count(&count).Error
	return count, err
}

// SetOrderIndex updates order_index without touching updated_at
func (r *GormTodoRepository) SetOrderIndex(uuid string, index int) error {
	return r.db.Model(&models.Todo{}).Where("uuid = ?", uuid).UpdateColumn("order_index", index).Error
}

// Stats aggregates counts across non-archived top-level todos
func (r *GormTodoRepository) Stats(now time.Time) (*TodoStats, error) {
	base := func() *gorm.DB {
		return r.db.Model(&models.Todo{}).Scopes(database.TopLevel).Where("todos.is_archived = ?", false)
	}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &TodoStats{ByStatus: make(map[models.TodoStatus]int64)}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Status models.TodoStatus
		Count  int64
	}
	if err := base().Select("todos.status AS status, COUNT(*) AS count").Group("todos.status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
	}

	if err := base().
		Where("todos.due_date < ?", now).
		Where("todos.status NOT IN ?", closedStatuses()).
		Count(&stats.Overdue).Error; err != nil {
		return nil, err
	}
	if err := base().
		Where("todos.due_date >= ? AND todos.due_date < ?", startOfDay, endOfDay).
		Where("todos.status NOT IN ?", closedStatuses()).
		Count(&stats.DueToday).Error; err != nil {
		return nil, err
	}
	if err := base().
		Where("todos.status = ?", models.TodoStatusDone).
		Where("todos.completed_at >= ? AND todos.completed_at < ?", startOfDay, endOfDay).
		Count(&stats.CompletedToday).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func preloadTodo(db *gorm.DB, preload []string) *gorm.DB {
	for _, p := range preload {
		if p == "Subtasks" {
			db = db.Preload(p, func(tx *gorm.DB) *gorm.DB {
				return tx.Order("todos.order_index ASC, todos.created_at ASC")
			})
			continue
		}
		db = db.Preload(p)
	}
	return db
}

func closedStatuses() []models.TodoStatus {
	return []models.TodoStatus{models.TodoStatusDone, models.TodoStatusCancelled}
}
