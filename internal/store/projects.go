package store

import (
	"context"
	"sort"
	"strings"

	"github.com/ashishacharya123/pkms-todos/internal/dto"
)

// LoadProjects replaces the project list.
func (s *Store) LoadProjects(ctx context.Context) error {
	projects, err := s.backend.ListProjects(ctx)
	if err != nil {
		return s.fail(ctx, err, "Failed to load projects")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
	return nil
}

// CreateProject creates a project and adds it to the list.
func (s *Store) CreateProject(ctx context.Context, req dto.CreateProjectRequest) (*dto.ProjectDTO, error) {
	project, err := s.backend.CreateProject(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, err, "Failed to create project")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.mu.Lock()
	s.projects = append(s.projects, *project)
	sortProjects(s.projects)
	s.mu.Unlock()
	return project, nil
}

// UpdateProject saves a project and refreshes the references todos hold to
// it.
func (s *Store) UpdateProject(ctx context.Context, uuid string, req dto.UpdateProjectRequest) (*dto.ProjectDTO, error) {
	project, err := s.backend.UpdateProject(ctx, uuid, req)
	if err != nil {
		return nil, s.fail(ctx, err, "Failed to update project", "uuid", uuid)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].UUID == uuid {
			s.projects[i] = *project
		}
	}
	sortProjects(s.projects)
	for i := range s.entries {
		refs := s.entries[i].Todo.Projects
		for j := range refs {
			if refs[j].UUID == uuid {
				refs[j].Name = project.Name
				refs[j].Color = project.Color
			}
		}
	}
	return project, nil
}

// DeleteProject deletes a project. Todos stay; their link to it is dropped.
func (s *Store) DeleteProject(ctx context.Context, uuid string) error {
	if err := s.backend.DeleteProject(ctx, uuid); err != nil {
		return s.fail(ctx, err, "Failed to delete project", "uuid", uuid)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p.UUID != uuid {
			kept = append(kept, p)
		}
	}
	s.projects = kept
	for i := range s.entries {
		todo := &s.entries[i].Todo
		refs := make([]dto.ProjectRefDTO, 0, len(todo.Projects))
		for _, ref := range todo.Projects {
			if ref.UUID != uuid {
				refs = append(refs, ref)
			}
		}
		todo.Projects = refs
	}
	if s.filters.ProjectUUID == uuid {
		s.filters.ProjectUUID = ""
	}
	return nil
}

func sortProjects(projects []dto.ProjectDTO) {
	sort.SliceStable(projects, func(i, j int) bool {
		return strings.ToLower(projects[i].Name) < strings.ToLower(projects[j].Name)
	})
}
