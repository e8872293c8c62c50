package repository

import (
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"gorm.io/gorm"
)

// GormDependencyRepository is a GORM implementation of DependencyRepository
type GormDependencyRepository struct {
	db *gorm.DB
}

// NewDependencyRepository creates a new DependencyRepository
func NewDependencyRepository(db *gorm.DB) DependencyRepository {
	return &GormDependencyRepository{db: db}
}

// Add creates the edge blockerUUID -> blockedUUID
func (r *GormDependencyRepository) Add(blockedUUID, blockerUUID string) error {
	edge := models.TodoDependency{BlockedUUID: blockedUUID, BlockerUUID: blockerUUID}
	return r.db.Omit("Blocked", "Blocker").Create(&edge).Error
}

// Remove deletes an edge, reporting whether it existed
func (r *GormDependencyRepository) Remove(blockedUUID, blockerUUID string) (bool, error) {
	result := r.db.Where("blocked_uuid = ? AND blocker_uuid = ?", blockedUUID, blockerUUID).
		Delete(&models.TodoDependency{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Exists reports whether the edge exists
func (r *GormDependencyRepository) Exists(blockedUUID, blockerUUID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.TodoDependency{}).
		Where("blocked_uuid = ? AND blocker_uuid = ?", blockedUUID, blockerUUID).
		Count(&count).Error
	return count > 0, err
}

// Blockers returns the todos blocking uuid
func (r *GormDependencyRepository) Blockers(uuid string) ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.Model(&models.Todo{}).
		Joins("JOIN todo_dependencies ON todo_dependencies.blocker_uuid = todos.uuid").
		Where("todo_dependencies.blocked_uuid = ?", uuid).
		Order("todo_dependencies.created_at ASC").
		Find(&todos).Error
	return todos, err
}

// Blocking returns the todos uuid blocks
func (r *GormDependencyRepository) Blocking(uuid string) ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.Model(&models.Todo{}).
		Joins("JOIN todo_dependencies ON todo_dependencies.blocked_uuid = todos.uuid").
		Where("todo_dependencies.blocker_uuid = ?", uuid).
		Order("todo_dependencies.created_at ASC").
		Find(&todos).Error
	return todos, err
}

// BlockerUUIDs returns only the UUIDs of uuid's blockers
func (r *GormDependencyRepository) BlockerUUIDs(uuid string) ([]string, error) {
	var uuids []string
	err := r.db.Model(&models.TodoDependency{}).
		Where("blocked_uuid = ?", uuid).
		Pluck("blocker_uuid", &uuids).Error
	return uuids, err
}

// EdgesTouching returns every edge with either end in uuids
func (r *GormDependencyRepository) EdgesTouching(uuids []string) ([]models.TodoDependency, error) {
	var edges []models.TodoDependency
	if len(uuids) == 0 {
		return edges, nil
	}
	err := r.db.Where("blocked_uuid IN ? OR blocker_uuid IN ?", uuids, uuids).Find(&edges).Error
	return edges, err
}
