package repository

import (
	"testing"
	"time"

	"github.com/ashishacharya123/pkms-todos/internal/database"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

func strPtr(s string) *string { return &s }

func TestTodoRepository_CreateWithAssociations(t *testing.T) {
	db := setupTestDB(t)
	projects := NewProjectRepository(db)
	todos := NewTodoRepository(db)

	project := &models.Project{Name: "Home"}
	require.NoError(t, projects.Create(project))

	todo := &models.Todo{
		Title:        "Paint fence",
		Status:       models.TodoStatusPending,
		Priority:     models.TodoPriorityHigh,
		Tags:         []models.TodoTag{{Name: "outdoor"}},
		ProjectLinks: []models.TodoProject{{ProjectUUID: project.UUID, IsExclusive: true}},
	}
	require.NoError(t, todos.Create(todo))
	assert.NotEmpty(t, todo.UUID)

	found, err := todos.FindByUUID(todo.UUID, PreloadTodoDetail...)
	require.NoError(t, err)
	require.Len(t, found.Tags, 1)
	assert.Equal(t, "outdoor", found.Tags[0].Name)
	require.Len(t, found.ProjectLinks, 1)
	assert.Equal(t, "Home", found.ProjectLinks[0].Project.Name)
	assert.True(t, found.ProjectLinks[0].IsExclusive)
}

func TestTodoRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	projects := NewProjectRepository(db)
	repo := NewTodoRepository(db)

	project := &models.Project{Name: "Work"}
	require.NoError(t, projects.Create(project))

	past := time.Now().Add(-48 * time.Hour)
	seed := []*models.Todo{
		{Title: "Write report", Status: models.TodoStatusPending, Priority: models.TodoPriorityHigh,
			ProjectLinks: []models.TodoProject{{ProjectUUID: project.UUID}}},
		{Title: "Buy milk", Status: models.TodoStatusDone, Priority: models.TodoPriorityLow,
			Tags: []models.TodoTag{{Name: "Errand"}}},
		{Title: "Old thing", Status: models.TodoStatusPending, Priority: models.TodoPriorityMedium,
			IsArchived: true},
		{Title: "Late bill", Description: "electricity", Status: models.TodoStatusInProgress,
			Priority: models.TodoPriorityUrgent, DueDate: &past},
	}
	for _, todo := range seed {
		require.NoError(t, repo.Create(todo))
	}
	require.NoError(t, repo.Create(&models.Todo{Title: "Subtask", ParentUUID: &seed[0].UUID}))

	titles := func(filter TodoFilter) []string {
		t.Helper()
		list, total, err := repo.List(filter)
		require.NoError(t, err)
		assert.Equal(t, int64(len(list)), total)
		out := make([]string, len(list))
		for i, todo := range list {
			out[i] = todo.Title
		}
		return out
	}

	assert.Len(t, titles(TodoFilter{}), 4)

	pending := models.TodoStatusPending
	assert.ElementsMatch(t, []string{"Write report", "Old thing"}, titles(TodoFilter{Status: &pending}))

	urgent := models.TodoPriorityUrgent
	assert.Equal(t, []string{"Late bill"}, titles(TodoFilter{Priority: &urgent}))

	assert.Equal(t, []string{"Write report"}, titles(TodoFilter{ProjectUUID: &project.UUID}))
	assert.Equal(t, []string{"Buy milk"}, titles(TodoFilter{Tag: strPtr("errand")}))
	assert.Equal(t, []string{"Late bill"}, titles(TodoFilter{Search: "ELECTRIC"}))

	archived := true
	assert.Equal(t, []string{"Old thing"}, titles(TodoFilter{IsArchived: &archived}))

	now := time.Now()
	assert.Equal(t, []string{"Late bill"}, titles(TodoFilter{OverdueAt: &now}))
}

func TestTodoRepository_ListPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(&models.Todo{Title: "t", Status: models.TodoStatusPending}))
	}

	list, total, err := repo.List(TodoFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, list, 2)

	list, _, err = repo.List(TodoFilter{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTodoRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	deps := NewDependencyRepository(db)

	parent := &models.Todo{Title: "parent", Tags: []models.TodoTag{{Name: "x"}}}
	require.NoError(t, repo.Create(parent))
	child := &models.Todo{Title: "child", ParentUUID: &parent.UUID}
	require.NoError(t, repo.Create(child))
	grandchild := &models.Todo{Title: "grandchild", ParentUUID: &child.UUID}
	require.NoError(t, repo.Create(grandchild))
	other := &models.Todo{Title: "other"}
	require.NoError(t, repo.Create(other))
	require.NoError(t, deps.Add(other.UUID, parent.UUID))

	require.NoError(t, repo.Delete(parent.UUID))

	var count int64
	require.NoError(t, db.Model(&models.Todo{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.TodoTag{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.TodoDependency{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTodoRepository_LaneAndOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)

	for i, title := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(&models.Todo{Title: title, Status: models.TodoStatusPending, OrderIndex: 2 - i}))
	}
	require.NoError(t, repo.Create(&models.Todo{Title: "d", Status: models.TodoStatusDone}))

	lane, err := repo.LaneTodos(models.TodoStatusPending)
	require.NoError(t, err)
	require.Len(t, lane, 3)
	assert.Equal(t, "c", lane[0].Title)
	assert.Equal(t, "a", lane[2].Title)

	require.NoError(t, repo.SetOrderIndex(lane[2].UUID, 0))
	found, err := repo.FindByUUID(lane[2].UUID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.OrderIndex)
}

func TestTodoRepository_ReplaceTagsAndProjects(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	projects := NewProjectRepository(db)

	p1 := &models.Project{Name: "p1"}
	p2 := &models.Project{Name: "p2"}
	require.NoError(t, projects.Create(p1))
	require.NoError(t, projects.Create(p2))

	todo := &models.Todo{Title: "t", Tags: []models.TodoTag{{Name: "old"}},
		ProjectLinks: []models.TodoProject{{ProjectUUID: p1.UUID}}}
	require.NoError(t, repo.Create(todo))

	require.NoError(t, repo.ReplaceTags(todo.UUID, []string{"new", "fresh"}))
	require.NoError(t, repo.ReplaceProjects(todo.UUID, []models.TodoProject{{ProjectUUID: p2.UUID}}))

	found, err := repo.FindByUUID(todo.UUID, PreloadTodoList...)
	require.NoError(t, err)
	assert.Len(t, found.Tags, 2)
	require.Len(t, found.ProjectLinks, 1)
	assert.Equal(t, p2.UUID, found.ProjectLinks[0].ProjectUUID)

	counts, err := projects.TodoCounts()
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[p2.UUID])
	assert.Zero(t, counts[p1.UUID])
}

func TestTodoRepository_Stats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	laterToday := now.Add(2 * time.Hour)
	completed := now.Add(-time.Hour)

	seed := []*models.Todo{
		{Title: "overdue", Status: models.TodoStatusPending, DueDate: &yesterday},
		{Title: "today", Status: models.TodoStatusInProgress, DueDate: &laterToday},
		{Title: "finished", Status: models.TodoStatusDone, CompletedAt: &completed, DueDate: &yesterday},
		{Title: "archived", Status: models.TodoStatusPending, IsArchived: true, DueDate: &yesterday},
	}
	for _, todo := range seed {
		require.NoError(t, repo.Create(todo))
	}

	stats, err := repo.Stats(now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[models.TodoStatusPending])
	assert.Equal(t, int64(1), stats.ByStatus[models.TodoStatusDone])
	assert.Equal(t, int64(1), stats.Overdue)
	assert.Equal(t, int64(1), stats.DueToday)
	assert.Equal(t, int64(1), stats.CompletedToday)
}

func TestTodoRepository_TransactionRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)

	todo := &models.Todo{Title: "t", Status: models.TodoStatusPending}
	require.NoError(t, repo.Create(todo))

	err := repo.Transaction(func(tx TodoRepository) error {
		if err := tx.SetOrderIndex(todo.UUID, 7); err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	assert.ErrorIs(t, err, gorm.ErrInvalidData)

	found, err := repo.FindByUUID(todo.UUID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.OrderIndex)
}

func TestDependencyRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	deps := NewDependencyRepository(db)

	a := &models.Todo{Title: "a"}
	b := &models.Todo{Title: "b"}
	c := &models.Todo{Title: "c"}
	for _, todo := range []*models.Todo{a, b, c} {
		require.NoError(t, repo.Create(todo))
	}

	// b and c block a
	require.NoError(t, deps.Add(a.UUID, b.UUID))
	require.NoError(t, deps.Add(a.UUID, c.UUID))

	exists, err := deps.Exists(a.UUID, b.UUID)
	require.NoError(t, err)
	assert.True(t, exists)

	blockers, err := deps.Blockers(a.UUID)
	require.NoError(t, err)
	assert.Len(t, blockers, 2)

	blocking, err := deps.Blocking(b.UUID)
	require.NoError(t, err)
	require.Len(t, blocking, 1)
	assert.Equal(t, a.UUID, blocking[0].UUID)

	ids, err := deps.BlockerUUIDs(a.UUID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b.UUID, c.UUID}, ids)

	edges, err := deps.EdgesTouching([]string{c.UUID})
	require.NoError(t, err)
	assert.Len(t, edges, 1)

	removed, err := deps.Remove(a.UUID, b.UUID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = deps.Remove(a.UUID, b.UUID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestProjectRepository_DeleteUnlinks(t *testing.T) {
	db := setupTestDB(t)
	projects := NewProjectRepository(db)
	repo := NewTodoRepository(db)

	project := &models.Project{Name: "Garden"}
	require.NoError(t, projects.Create(project))
	todo := &models.Todo{Title: "weed", ProjectLinks: []models.TodoProject{{ProjectUUID: project.UUID}}}
	require.NoError(t, repo.Create(todo))

	byName, err := projects.FindByName("Garden")
	require.NoError(t, err)
	assert.Equal(t, project.UUID, byName.UUID)

	require.NoError(t, projects.Delete(project.UUID))

	_, err = projects.FindByUUID(project.UUID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := repo.FindByUUID(todo.UUID, PreloadTodoList...)
	require.NoError(t, err)
	assert.Empty(t, found.ProjectLinks)
}
