package handlers

import (
	"net/http"

	"github.com/ashishacharya123/pkms-todos/internal/dto"
	apierrors "github.com/ashishacharya123/pkms-todos/internal/errors"
	"github.com/ashishacharya123/pkms-todos/internal/services"
	"github.com/gin-gonic/gin"
)

type DependencyHandler struct {
	depService *services.DependencyService
}

func NewDependencyHandler(depService *services.DependencyService) *DependencyHandler {
	return &DependencyHandler{
		depService: depService,
	}
}

// ListBlocking returns the todos this todo blocks
func (h *DependencyHandler) ListBlocking(c *gin.Context) {
	todos, err := h.depService.ListBlocking(c.Param("uuid"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TodoSummaryListResponse{Todos: dto.ToTodoSummaryDTOs(todos)})
}

// ListBlockedBy returns the todos blocking this todo
func (h *DependencyHandler) ListBlockedBy(c *gin.Context) {
	todos, err := h.depService.ListBlockedBy(c.Param("uuid"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TodoSummaryListResponse{Todos: dto.ToTodoSummaryDTOs(todos)})
}

// AddDependency marks the todo as blocked by blocker_uuid
func (h *DependencyHandler) AddDependency(c *gin.Context) {
	var req dto.AddDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	if err := h.depService.AddDependency(c.Param("uuid"), req.BlockerUUID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "Dependency added successfully"})
}

// RemoveDependency removes the blocker_uuid edge
func (h *DependencyHandler) RemoveDependency(c *gin.Context) {
	if err := h.depService.RemoveDependency(c.Param("uuid"), c.Param("blocker_uuid")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Dependency removed successfully"})
}
