package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ashishacharya123/pkms-todos/internal/dto"
	apierrors "github.com/ashishacharya123/pkms-todos/internal/errors"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/services"
	"github.com/ashishacharya123/pkms-todos/internal/utils"
	"github.com/gin-gonic/gin"
)

type TodoHandler struct {
	todoService *services.TodoService
}

func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
	}
}

// ListTodos returns top-level todos matching the query filters
func (h *TodoHandler) ListTodos(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	input := services.ListTodosInput{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if status := c.Query("status"); status != "" {
		s := models.TodoStatus(status)
		input.Status = &s
	}
	if priority := c.Query("priority"); priority != "" {
		p := models.TodoPriority(priority)
		input.Priority = &p
	}
	if projectUUID := c.Query("project_uuid"); projectUUID != "" {
		input.ProjectUUID = &projectUUID
	}
	if tag := c.Query("tag"); tag != "" {
		input.Tag = &tag
	}
	if archived := c.Query("is_archived"); archived != "" {
		value, err := strconv.ParseBool(archived)
		if err != nil {
			apierrors.InvalidFormat(c, "Invalid is_archived value")
			return
		}
		input.IsArchived = &value
	}
	if overdue := c.Query("overdue"); overdue != "" {
		value, err := strconv.ParseBool(overdue)
		if err != nil {
			apierrors.InvalidFormat(c, "Invalid overdue value")
			return
		}
		input.Overdue = value
	}

	details, total, err := h.todoService.ListTodos(input)
	if err != nil {
		respondError(c, err)
		return
	}

	todos := make([]dto.TodoDTO, len(details))
	for i, detail := range details {
		todos[i] = toTodoDTO(&detail)
	}

	c.JSON(http.StatusOK, dto.TodoListResponse{
		Todos: todos,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetStats returns aggregate counts
func (h *TodoHandler) GetStats(c *gin.Context) {
	stats, err := h.todoService.Stats()
	if err != nil {
		respondError(c, err)
		return
	}

	byStatus := make(map[models.TodoStatus]int64, len(models.ValidTodoStatuses()))
	for _, status := range models.ValidTodoStatuses() {
		byStatus[status] = stats.ByStatus[status]
	}

	c.JSON(http.StatusOK, dto.StatsDTO{
		Total:          stats.Total,
		ByStatus:       byStatus,
		Overdue:        stats.Overdue,
		DueToday:       stats.DueToday,
		CompletedToday: stats.CompletedToday,
	})
}

// GetTodo returns a todo with subtasks and dependency edges
// The todo's existence is checked by RequireTodo
func (h *TodoHandler) GetTodo(c *gin.Context) {
	detail, err := h.todoService.GetTodo(c.Param("uuid"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTodoDTO(detail))
}

// CreateTodo creates a new todo at the end of its lane
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	detail, err := h.todoService.CreateTodo(services.CreateTodoInput{
		Title:                req.Title,
		Description:          req.Description,
		Status:               req.Status,
		Priority:             req.Priority,
		DueDate:              req.DueDate,
		StartDate:            req.StartDate,
		ParentUUID:           req.ParentUUID,
		ProjectUUIDs:         req.ProjectUUIDs,
		AreProjectsExclusive: req.AreProjectsExclusive,
		Tags:                 req.Tags,
		IsFavorite:           req.IsFavorite,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTodoDTO(detail))
}

// UpdateTodo updates the fields present in the request body
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	detail, err := h.todoService.UpdateTodo(c.Param("uuid"), services.UpdateTodoInput{
		Title:                req.Title,
		Description:          req.Description,
		Priority:             req.Priority,
		DueDate:              req.DueDate,
		ClearDueDate:         req.ClearDueDate,
		StartDate:            req.StartDate,
		ClearStartDate:       req.ClearStartDate,
		ProjectUUIDs:         req.ProjectUUIDs,
		AreProjectsExclusive: req.AreProjectsExclusive,
		Tags:                 req.Tags,
		IsFavorite:           req.IsFavorite,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTodoDTO(detail))
}

// DeleteTodo deletes a todo with its subtasks and dependency edges
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	if err := h.todoService.DeleteTodo(c.Param("uuid")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Todo deleted successfully"})
}

// CompleteTodo moves a todo to the done lane
func (h *TodoHandler) CompleteTodo(c *gin.Context) {
	detail, err := h.todoService.CompleteTodo(c.Param("uuid"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTodoDTO(detail))
}

// ArchiveTodo archives a todo
func (h *TodoHandler) ArchiveTodo(c *gin.Context) {
	h.setArchived(c, true)
}

// UnarchiveTodo restores an archived todo
func (h *TodoHandler) UnarchiveTodo(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *TodoHandler) setArchived(c *gin.Context, archived bool) {
	detail, err := h.todoService.SetArchived(c.Param("uuid"), archived)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTodoDTO(detail))
}

// UpdateStatus moves a todo to the end of another status lane
func (h *TodoHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	detail, err := h.todoService.UpdateStatus(c.Param("uuid"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTodoDTO(detail))
}

// Reorder moves a todo within its lane
func (h *TodoHandler) Reorder(c *gin.Context) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	detail, err := h.todoService.Reorder(c.Param("uuid"), *req.OrderIndex)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTodoDTO(detail))
}

func toTodoDTO(detail *services.TodoDetail) dto.TodoDTO {
	return dto.ToTodoDTO(detail.Todo, detail.Blocking, detail.BlockedBy)
}
