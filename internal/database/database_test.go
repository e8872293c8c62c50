package database

import (
	"testing"

	"github.com/ashishacharya123/pkms-todos/internal/config"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, Migrate(db))
	return db
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"sqlite", "mysql", "postgres"} {
		d, err := Dialector(&config.Config{DBDriver: driver, DBPath: "x.db"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestCompactLanes(t *testing.T) {
	db := openTestDB(t)

	seed := []models.Todo{
		{UUID: "a", Title: "a", Status: models.TodoStatusPending, OrderIndex: 4},
		{UUID: "b", Title: "b", Status: models.TodoStatusPending, OrderIndex: 9},
		{UUID: "c", Title: "c", Status: models.TodoStatusPending, OrderIndex: 0},
		{UUID: "d", Title: "d", Status: models.TodoStatusDone, OrderIndex: 7},
	}
	require.NoError(t, db.Create(&seed).Error)

	require.NoError(t, CompactLanes(db))

	var pending []models.Todo
	require.NoError(t, db.Scopes(Lane(models.TodoStatusPending)).Order("order_index").Find(&pending).Error)
	require.Len(t, pending, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{pending[0].UUID, pending[1].UUID, pending[2].UUID})
	assert.Equal(t, []int{0, 1, 2}, []int{pending[0].OrderIndex, pending[1].OrderIndex, pending[2].OrderIndex})

	var done models.Todo
	require.NoError(t, db.First(&done, "uuid = ?", "d").Error)
	assert.Equal(t, 0, done.OrderIndex)
}
