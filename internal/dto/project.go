package dto

import "github.com/ashishacharya123/pkms-todos/internal/models"

// ProjectRefDTO represents a project as seen from one of its todos
type ProjectRefDTO struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	IsExclusive bool   `json:"is_exclusive"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	TodoCount   int64  `json:"todo_count"`
}

// ProjectListResponse wraps the project listing
type ProjectListResponse struct {
	Projects []ProjectDTO `json:"projects"`
}

// CreateProjectRequest is the body of POST /projects
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// UpdateProjectRequest is the body of PUT /projects/:uuid
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// ToProjectRefDTO converts a todo-project link to ProjectRefDTO
func ToProjectRefDTO(link models.TodoProject) ProjectRefDTO {
	return ProjectRefDTO{
		UUID:        link.ProjectUUID,
		Name:        link.Project.Name,
		Color:       link.Project.Color,
		IsExclusive: link.IsExclusive,
	}
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project, todoCount int64) ProjectDTO {
	return ProjectDTO{
		UUID:        project.UUID,
		Name:        project.Name,
		Description: project.Description,
		Color:       project.Color,
		TodoCount:   todoCount,
	}
}
