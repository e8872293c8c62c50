package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidProjectName = errors.New("project name cannot be empty")
	ErrProjectNameTaken   = errors.New("a project with this name already exists")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
	}
}

// ProjectWithCount pairs a project with the number of todos linked to it.
type ProjectWithCount struct {
	Project   models.Project
	TodoCount int64
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	Color       string
}

// UpdateProjectInput represents parameters to update a project. Nil fields are left unchanged.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Color       *string
}

// ListProjects returns every project with its todo count.
func (s *ProjectService) ListProjects() ([]ProjectWithCount, error) {
	projects, err := s.projectRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	counts, err := s.projectRepo.TodoCounts()
	if err != nil {
		return nil, fmt.Errorf("failed to count project todos: %w", err)
	}

	result := make([]ProjectWithCount, len(projects))
	for i, project := range projects {
		result[i] = ProjectWithCount{Project: project, TodoCount: counts[project.UUID]}
	}
	return result, nil
}

// GetProject returns a project with its todo count.
func (s *ProjectService) GetProject(uuid string) (*ProjectWithCount, error) {
	project, err := s.projectRepo.FindByUUID(uuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	counts, err := s.projectRepo.TodoCounts()
	if err != nil {
		return nil, fmt.Errorf("failed to count project todos: %w", err)
	}

	return &ProjectWithCount{Project: *project, TodoCount: counts[project.UUID]}, nil
}

// CreateProject creates a new project with a unique name.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*ProjectWithCount, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidProjectName
	}

	if err := s.ensureNameAvailable(name, ""); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		Color:       input.Color,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return &ProjectWithCount{Project: *project}, nil
}

// UpdateProject updates a project's details.
func (s *ProjectService) UpdateProject(uuid string, input UpdateProjectInput) (*ProjectWithCount, error) {
	project, err := s.projectRepo.FindByUUID(uuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidProjectName
		}
		if err := s.ensureNameAvailable(name, uuid); err != nil {
			return nil, err
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Color != nil {
		project.Color = *input.Color
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.GetProject(uuid)
}

// DeleteProject deletes a project. Its todos are unlinked, not deleted.
func (s *ProjectService) DeleteProject(uuid string) error {
	if _, err := s.projectRepo.FindByUUID(uuid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.projectRepo.Delete(uuid); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// ensureNameAvailable rejects names used by a project other than selfUUID.
func (s *ProjectService) ensureNameAvailable(name, selfUUID string) error {
	existing, err := s.projectRepo.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check project name: %w", err)
	}
	if existing.UUID != selfUUID {
		return ErrProjectNameTaken
	}
	return nil
}
