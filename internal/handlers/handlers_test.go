package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ashishacharya123/pkms-todos/internal/database"
	"github.com/ashishacharya123/pkms-todos/internal/dto"
	apierrors "github.com/ashishacharya123/pkms-todos/internal/errors"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// HandlerTestSuite drives the API through the full router
type HandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *HandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	// Run migrations
	suite.Require().NoError(database.Migrate(suite.db))

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	suite.router = NewRouter(suite.db, nil)
}

// TearDownTest runs after each test
func (suite *HandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// perform sends a request through the router, encoding body as JSON when set
func (suite *HandlerTestSuite) perform(method, url string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) decode(w *httptest.ResponseRecorder, out interface{}) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (suite *HandlerTestSuite) createTodo(title string, status models.TodoStatus) dto.TodoDTO {
	w := suite.perform(http.MethodPost, "/api/v1/todos", dto.CreateTodoRequest{Title: title, Status: status})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var todo dto.TodoDTO
	suite.decode(w, &todo)
	return todo
}

func (suite *HandlerTestSuite) TestHealth() {
	w := suite.perform(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "ok")
}

func (suite *HandlerTestSuite) TestHealth_DatabaseDown() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	suite.Require().NoError(sqlDB.Close())

	w := suite.perform(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusServiceUnavailable, w.Code)
	var apiErr apierrors.APIError
	suite.decode(w, &apiErr)
	suite.Equal(apierrors.ErrCodeServiceUnavailable, apiErr.Code)
	suite.Equal("Database is unavailable", apiErr.Message)
}

func (suite *HandlerTestSuite) TestCreateTodo_Success() {
	due := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	w := suite.perform(http.MethodPost, "/api/v1/todos", dto.CreateTodoRequest{
		Title:    "Buy milk",
		Priority: models.TodoPriorityHigh,
		DueDate:  &due,
		Tags:     []string{"errand"},
	})
	suite.Equal(http.StatusCreated, w.Code)

	var todo dto.TodoDTO
	suite.decode(w, &todo)
	suite.NotEmpty(todo.UUID)
	suite.Equal("Buy milk", todo.Title)
	suite.Equal(models.TodoStatusPending, todo.Status)
	suite.Equal(models.TodoPriorityHigh, todo.Priority)
	suite.Equal([]string{"errand"}, todo.Tags)
	suite.NotNil(todo.BlockedByTodos)
}

func (suite *HandlerTestSuite) TestCreateTodo_InvalidBody() {
	w := suite.perform(http.MethodPost, "/api/v1/todos", map[string]string{"description": "no title"})
	suite.Equal(http.StatusBadRequest, w.Code)

	var apiErr apierrors.APIError
	suite.decode(w, &apiErr)
	suite.Equal(apierrors.ErrCodeInvalidInput, apiErr.Code)

	w = suite.perform(http.MethodPost, "/api/v1/todos", dto.CreateTodoRequest{Title: "x", Status: "later"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.decode(w, &apiErr)
	suite.Equal("Invalid status", apiErr.Message)
}

func (suite *HandlerTestSuite) TestListTodos_WithFilters() {
	suite.createTodo("a", models.TodoStatusPending)
	suite.createTodo("b", models.TodoStatusDone)
	suite.createTodo("c", models.TodoStatusPending)

	w := suite.perform(http.MethodGet, "/api/v1/todos?status=pending&limit=10", nil)
	suite.Equal(http.StatusOK, w.Code)

	var resp dto.TodoListResponse
	suite.decode(w, &resp)
	suite.Len(resp.Todos, 2)
	suite.Equal(int64(2), resp.Pagination.Total)
	suite.Equal(10, resp.Pagination.Limit)
	suite.Equal("a", resp.Todos[0].Title)
	suite.Equal("c", resp.Todos[1].Title)

	w = suite.perform(http.MethodGet, "/api/v1/todos?search=B", nil)
	suite.decode(w, &resp)
	suite.Len(resp.Todos, 1)

	w = suite.perform(http.MethodGet, "/api/v1/todos?is_archived=maybe", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	var apiErr apierrors.APIError
	suite.decode(w, &apiErr)
	suite.Equal(apierrors.ErrCodeInvalidFormat, apiErr.Code)
}

func (suite *HandlerTestSuite) TestGetTodo_NotFound() {
	w := suite.perform(http.MethodGet, "/api/v1/todos/does-not-exist", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	var apiErr apierrors.APIError
	suite.decode(w, &apiErr)
	suite.Equal(apierrors.ErrCodeNotFound, apiErr.Code)
}

func (suite *HandlerTestSuite) TestUpdateTodo() {
	todo := suite.createTodo("old", models.TodoStatusPending)

	title := "new"
	w := suite.perform(http.MethodPut, "/api/v1/todos/"+todo.UUID, dto.UpdateTodoRequest{Title: &title})
	suite.Equal(http.StatusOK, w.Code)

	var updated dto.TodoDTO
	suite.decode(w, &updated)
	suite.Equal("new", updated.Title)
}

func (suite *HandlerTestSuite) TestStatusAndReorder() {
	a := suite.createTodo("a", models.TodoStatusPending)
	b := suite.createTodo("b", models.TodoStatusPending)
	suite.createTodo("x", models.TodoStatusInProgress)

	w := suite.perform(http.MethodPatch, "/api/v1/todos/"+a.UUID+"/status",
		dto.UpdateStatusRequest{Status: models.TodoStatusInProgress})
	suite.Equal(http.StatusOK, w.Code)
	var moved dto.TodoDTO
	suite.decode(w, &moved)
	suite.Equal(models.TodoStatusInProgress, moved.Status)
	suite.Equal(1, moved.OrderIndex)

	zero := 0
	w = suite.perform(http.MethodPatch, "/api/v1/todos/"+a.UUID+"/reorder", dto.ReorderRequest{OrderIndex: &zero})
	suite.Equal(http.StatusOK, w.Code)
	suite.decode(w, &moved)
	suite.Equal(0, moved.OrderIndex)

	// b closed the gap left by a
	w = suite.perform(http.MethodGet, "/api/v1/todos/"+b.UUID, nil)
	var fetched dto.TodoDTO
	suite.decode(w, &fetched)
	suite.Equal(0, fetched.OrderIndex)

	w = suite.perform(http.MethodPatch, "/api/v1/todos/"+a.UUID+"/reorder", map[string]string{})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCompleteArchiveDelete() {
	todo := suite.createTodo("a", models.TodoStatusPending)

	w := suite.perform(http.MethodPost, "/api/v1/todos/"+todo.UUID+"/complete", nil)
	suite.Equal(http.StatusOK, w.Code)
	var done dto.TodoDTO
	suite.decode(w, &done)
	suite.Equal(models.TodoStatusDone, done.Status)
	suite.NotNil(done.CompletedAt)

	w = suite.perform(http.MethodPost, "/api/v1/todos/"+todo.UUID+"/archive", nil)
	suite.Equal(http.StatusOK, w.Code)
	var archived dto.TodoDTO
	suite.decode(w, &archived)
	suite.True(archived.IsArchived)

	w = suite.perform(http.MethodPost, "/api/v1/todos/"+todo.UUID+"/unarchive", nil)
	suite.decode(w, &archived)
	suite.False(archived.IsArchived)

	w = suite.perform(http.MethodDelete, "/api/v1/todos/"+todo.UUID, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.perform(http.MethodGet, "/api/v1/todos/"+todo.UUID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestDependencies() {
	a := suite.createTodo("a", models.TodoStatusPending)
	b := suite.createTodo("b", models.TodoStatusPending)

	w := suite.perform(http.MethodPost, "/api/v1/todos/"+a.UUID+"/dependencies",
		dto.AddDependencyRequest{BlockerUUID: b.UUID})
	suite.Equal(http.StatusCreated, w.Code)

	w = suite.perform(http.MethodPost, "/api/v1/todos/"+a.UUID+"/dependencies",
		dto.AddDependencyRequest{BlockerUUID: b.UUID})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.perform(http.MethodPost, "/api/v1/todos/"+b.UUID+"/dependencies",
		dto.AddDependencyRequest{BlockerUUID: a.UUID})
	suite.Equal(http.StatusConflict, w.Code)
	var apiErr apierrors.APIError
	suite.decode(w, &apiErr)
	suite.Equal(apierrors.ErrCodeDependencyCycle, apiErr.Code)
	suite.Equal("Adding this dependency would create a circular dependency", apiErr.Message)

	w = suite.perform(http.MethodPost, "/api/v1/todos/"+a.UUID+"/dependencies",
		dto.AddDependencyRequest{BlockerUUID: a.UUID})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.decode(w, &apiErr)
	suite.Equal(apierrors.ErrCodeSelfDependency, apiErr.Code)

	w = suite.perform(http.MethodGet, "/api/v1/todos/"+a.UUID+"/blocked-by", nil)
	suite.Equal(http.StatusOK, w.Code)
	var list dto.TodoSummaryListResponse
	suite.decode(w, &list)
	suite.Require().Len(list.Todos, 1)
	suite.Equal(b.UUID, list.Todos[0].UUID)

	w = suite.perform(http.MethodGet, "/api/v1/todos/"+b.UUID+"/blocking", nil)
	suite.decode(w, &list)
	suite.Require().Len(list.Todos, 1)
	suite.Equal(a.UUID, list.Todos[0].UUID)

	w = suite.perform(http.MethodGet, "/api/v1/todos/"+a.UUID, nil)
	var detail dto.TodoDTO
	suite.decode(w, &detail)
	suite.True(detail.IsBlockedBy(b.UUID))

	w = suite.perform(http.MethodDelete, "/api/v1/todos/"+a.UUID+"/dependencies/"+b.UUID, nil)
	suite.Equal(http.StatusOK, w.Code)
	w = suite.perform(http.MethodDelete, "/api/v1/todos/"+a.UUID+"/dependencies/"+b.UUID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestStats() {
	suite.createTodo("a", models.TodoStatusPending)
	suite.createTodo("b", models.TodoStatusDone)

	w := suite.perform(http.MethodGet, "/api/v1/todos/stats", nil)
	suite.Equal(http.StatusOK, w.Code)

	var stats dto.StatsDTO
	suite.decode(w, &stats)
	suite.Equal(int64(2), stats.Total)
	suite.Equal(int64(1), stats.ByStatus[models.TodoStatusPending])
	suite.Equal(int64(0), stats.ByStatus[models.TodoStatusBlocked])
}

func (suite *HandlerTestSuite) TestProjects() {
	w := suite.perform(http.MethodPost, "/api/v1/projects", dto.CreateProjectRequest{Name: "Home", Color: "#00ff00"})
	suite.Equal(http.StatusCreated, w.Code)
	var project dto.ProjectDTO
	suite.decode(w, &project)

	w = suite.perform(http.MethodPost, "/api/v1/projects", dto.CreateProjectRequest{Name: "Home"})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.perform(http.MethodPost, "/api/v1/todos", dto.CreateTodoRequest{
		Title:        "Paint",
		ProjectUUIDs: []string{project.UUID},
	})
	suite.Equal(http.StatusCreated, w.Code)
	var todo dto.TodoDTO
	suite.decode(w, &todo)
	suite.True(todo.HasProject(project.UUID))

	w = suite.perform(http.MethodGet, "/api/v1/projects", nil)
	var list dto.ProjectListResponse
	suite.decode(w, &list)
	suite.Require().Len(list.Projects, 1)
	suite.Equal(int64(1), list.Projects[0].TodoCount)

	name := "House"
	w = suite.perform(http.MethodPut, "/api/v1/projects/"+project.UUID, dto.UpdateProjectRequest{Name: &name})
	suite.Equal(http.StatusOK, w.Code)
	suite.decode(w, &project)
	suite.Equal("House", project.Name)

	w = suite.perform(http.MethodDelete, "/api/v1/projects/"+project.UUID, nil)
	suite.Equal(http.StatusOK, w.Code)
	w = suite.perform(http.MethodGet, "/api/v1/projects/"+project.UUID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestCreateTodo_ExclusiveProjectsConflict() {
	var projects [2]dto.ProjectDTO
	for i, name := range []string{"Work", "Home"} {
		w := suite.perform(http.MethodPost, "/api/v1/projects", dto.CreateProjectRequest{Name: name})
		suite.Require().Equal(http.StatusCreated, w.Code)
		suite.decode(w, &projects[i])
	}

	w := suite.perform(http.MethodPost, "/api/v1/todos", dto.CreateTodoRequest{
		Title:                "Taxes",
		ProjectUUIDs:         []string{projects[0].UUID, projects[1].UUID},
		AreProjectsExclusive: true,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	var apiErr apierrors.APIError
	suite.decode(w, &apiErr)
	suite.Equal(apierrors.ErrCodeInvalidOperation, apiErr.Code)
}

// TestHandlerTestSuite runs the test suite
func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
