package services

import (
	"errors"
	"fmt"

	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSelfDependency     = errors.New("a todo cannot depend on itself")
	ErrBlockerNotFound    = errors.New("blocking todo not found")
	ErrDependencyExists   = errors.New("this todo is already blocked by that todo")
	ErrDependencyCycle    = errors.New("adding this dependency would create a circular dependency")
	ErrDependencyNotFound = errors.New("dependency not found")
)

// DependencyService manages blocked-by edges between todos
type DependencyService struct {
	todoRepo repository.TodoRepository
	depRepo  repository.DependencyRepository
}

// NewDependencyService creates a new DependencyService
func NewDependencyService(todoRepo repository.TodoRepository, depRepo repository.DependencyRepository) *DependencyService {
	return &DependencyService{
		todoRepo: todoRepo,
		depRepo:  depRepo,
	}
}

// AddDependency records that blockerUUID blocks blockedUUID
func (s *DependencyService) AddDependency(blockedUUID, blockerUUID string) error {
	if blockedUUID == blockerUUID {
		return ErrSelfDependency
	}

	if err := s.ensureTodo(blockedUUID, ErrTodoNotFound); err != nil {
		return err
	}
	if err := s.ensureTodo(blockerUUID, ErrBlockerNotFound); err != nil {
		return err
	}

	exists, err := s.depRepo.Exists(blockedUUID, blockerUUID)
	if err != nil {
		return fmt.Errorf("failed to check dependency: %w", err)
	}
	if exists {
		return ErrDependencyExists
	}

	cycle, err := s.reaches(blockerUUID, blockedUUID)
	if err != nil {
		return err
	}
	if cycle {
		return ErrDependencyCycle
	}

	if err := s.depRepo.Add(blockedUUID, blockerUUID); err != nil {
		return fmt.Errorf("failed to add dependency: %w", err)
	}

	return nil
}

// RemoveDependency deletes the edge blockerUUID -> blockedUUID
func (s *DependencyService) RemoveDependency(blockedUUID, blockerUUID string) error {
	removed, err := s.depRepo.Remove(blockedUUID, blockerUUID)
	if err != nil {
		return fmt.Errorf("failed to remove dependency: %w", err)
	}
	if !removed {
		return ErrDependencyNotFound
	}
	return nil
}

// ListBlocking returns the todos uuid blocks
func (s *DependencyService) ListBlocking(uuid string) ([]models.Todo, error) {
	if err := s.ensureTodo(uuid, ErrTodoNotFound); err != nil {
		return nil, err
	}

	todos, err := s.depRepo.Blocking(uuid)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocking todos: %w", err)
	}
	return todos, nil
}

// ListBlockedBy returns the todos blocking uuid
func (s *DependencyService) ListBlockedBy(uuid string) ([]models.Todo, error) {
	if err := s.ensureTodo(uuid, ErrTodoNotFound); err != nil {
		return nil, err
	}

	todos, err := s.depRepo.Blockers(uuid)
	if err != nil {
		return nil, fmt.Errorf("failed to list blockers: %w", err)
	}
	return todos, nil
}

// reaches walks blocked-by edges depth first from start and reports whether
// target is among its transitive blockers
func (s *DependencyService) reaches(start, target string) (bool, error) {
	visited := map[string]bool{start: true}
	stack := []string{start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		blockers, err := s.depRepo.BlockerUUIDs(current)
		if err != nil {
			return false, fmt.Errorf("failed to walk dependencies: %w", err)
		}
		for _, blocker := range blockers {
			if blocker == target {
				return true, nil
			}
			if !visited[blocker] {
				visited[blocker] = true
				stack = append(stack, blocker)
			}
		}
	}

	return false, nil
}

func (s *DependencyService) ensureTodo(uuid string, notFound error) error {
	if _, err := s.todoRepo.FindByUUID(uuid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound
		}
		return fmt.Errorf("failed to find todo: %w", err)
	}
	return nil
}
