package middleware

import (
	"errors"

	"github.com/ashishacharya123/pkms-todos/internal/constants"
	apierrors "github.com/ashishacharya123/pkms-todos/internal/errors"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/repository"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireTodo loads the todo named by the :uuid parameter into the context
// and aborts with 404 when it does not exist
func RequireTodo(repo repository.TodoRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid == "" {
			apierrors.BadRequest(c, "Todo UUID is required")
			c.Abort()
			return
		}

		todo, err := repo.FindByUUID(uuid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.NotFound(c, "Todo not found")
			} else {
				apierrors.InternalError(c, "Failed to load todo")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTodo, *todo)
		c.Next()
	}
}

// GetTodo returns the todo loaded by RequireTodo
func GetTodo(c *gin.Context) (models.Todo, bool) {
	value, exists := c.Get(constants.ContextKeyTodo)
	if !exists {
		return models.Todo{}, false
	}
	todo, ok := value.(models.Todo)
	return todo, ok
}
