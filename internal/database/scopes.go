package database

import (
	"gorm.io/gorm"

	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// TopLevel excludes subtasks
func TopLevel(db *gorm.DB) *gorm.DB {
	return db.Where("todos.parent_uuid IS NULL")
}

// Lane restricts a query to one status lane
func Lane(status models.TodoStatus) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("todos.status = ?", status)
	}
}
