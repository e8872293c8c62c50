package handlers

import (
	"net/http"

	apierrors "github.com/ashishacharya123/pkms-todos/internal/errors"
	"github.com/ashishacharya123/pkms-todos/internal/logging"
	"github.com/ashishacharya123/pkms-todos/internal/middleware"
	"github.com/ashishacharya123/pkms-todos/internal/repository"
	"github.com/ashishacharya123/pkms-todos/internal/services"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewRouter wires repositories, services and handlers onto a gin engine.
// All API routes live under /api/v1.
func NewRouter(db *gorm.DB, logger *log.Logger) *gin.Engine {
	logger = logging.OrDiscard(logger)

	todoRepo := repository.NewTodoRepository(db)
	depRepo := repository.NewDependencyRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	todoHandler := NewTodoHandler(services.NewTodoService(todoRepo, depRepo, projectRepo))
	depHandler := NewDependencyHandler(services.NewDependencyService(todoRepo, depRepo))
	projectHandler := NewProjectHandler(services.NewProjectService(projectRepo))

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			logger.Error("Health check failed", "err", err)
			apierrors.ServiceUnavailable(c, "Database is unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Todo API is running",
		})
	})

	api := r.Group("/api/v1")
	{
		todos := api.Group("/todos")
		{
			todos.GET("", todoHandler.ListTodos)
			todos.POST("", todoHandler.CreateTodo)
			todos.GET("/stats", todoHandler.GetStats)

			todo := todos.Group("/:uuid", middleware.RequireTodo(todoRepo))
			{
				todo.GET("", todoHandler.GetTodo)
				todo.PUT("", todoHandler.UpdateTodo)
				todo.DELETE("", todoHandler.DeleteTodo)
				todo.POST("/complete", todoHandler.CompleteTodo)
				todo.POST("/archive", todoHandler.ArchiveTodo)
				todo.POST("/unarchive", todoHandler.UnarchiveTodo)
				todo.PATCH("/status", todoHandler.UpdateStatus)
				todo.PATCH("/reorder", todoHandler.Reorder)
				todo.GET("/blocking", depHandler.ListBlocking)
				todo.GET("/blocked-by", depHandler.ListBlockedBy)
				todo.POST("/dependencies", depHandler.AddDependency)
				todo.DELETE("/dependencies/:blocker_uuid", depHandler.RemoveDependency)
			}
		}

		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:uuid", projectHandler.GetProject)
			projects.PUT("/:uuid", projectHandler.UpdateProject)
			projects.DELETE("/:uuid", projectHandler.DeleteProject)
		}
	}

	return r
}
