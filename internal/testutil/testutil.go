// Package testutil provides an in-memory database and a running API server
// for tests that need a real backend.
package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/ashishacharya123/pkms-todos/internal/database"
	"github.com/ashishacharya123/pkms-todos/internal/handlers"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory sqlite database closed at test cleanup.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

// Server is a running API server backed by an in-memory database.
type Server struct {
	*httptest.Server
	DB *gorm.DB
}

// APIURL is the base URL of the versioned API.
func (s *Server) APIURL() string {
	return s.URL + "/api/v1"
}

// NewServer starts the API on an httptest server closed at test cleanup.
func NewServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := NewDB(t)
	srv := httptest.NewServer(handlers.NewRouter(db, nil))
	t.Cleanup(srv.Close)

	return &Server{Server: srv, DB: db}
}

// Seed inserts todos directly, bypassing lane bookkeeping, and returns them
// keyed by title.
func Seed(t *testing.T, db *gorm.DB, todos ...models.Todo) map[string]models.Todo {
	t.Helper()

	byTitle := make(map[string]models.Todo, len(todos))
	for i := range todos {
		if todos[i].Status == "" {
			todos[i].Status = models.TodoStatusPending
		}
		if todos[i].Priority == "" {
			todos[i].Priority = models.TodoPriorityMedium
		}
		require.NoError(t, db.Create(&todos[i]).Error)
		byTitle[todos[i].Title] = todos[i]
	}
	return byTitle
}
