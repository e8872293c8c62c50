// Package store is the client-side cache of the todo list. It calls the API,
// reconciles local state with the responses and reports failures through a
// notifier instead of panicking.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/ashishacharya123/pkms-todos/internal/api"
	"github.com/ashishacharya123/pkms-todos/internal/constants"
	"github.com/ashishacharya123/pkms-todos/internal/dto"
	apierrors "github.com/ashishacharya123/pkms-todos/internal/errors"
	"github.com/ashishacharya123/pkms-todos/internal/logging"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/notify"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Backend is the API the store calls. *api.Client implements it.
type Backend interface {
	ListTodos(ctx context.Context, params api.ListParams) (*dto.TodoListResponse, error)
	GetTodo(ctx context.Context, uuid string) (*dto.TodoDTO, error)
	CreateTodo(ctx context.Context, req dto.CreateTodoRequest) (*dto.TodoDTO, error)
	UpdateTodo(ctx context.Context, uuid string, req dto.UpdateTodoRequest) (*dto.TodoDTO, error)
	DeleteTodo(ctx context.Context, uuid string) error
	CompleteTodo(ctx context.Context, uuid string) (*dto.TodoDTO, error)
	ArchiveTodo(ctx context.Context, uuid string) (*dto.TodoDTO, error)
	UnarchiveTodo(ctx context.Context, uuid string) (*dto.TodoDTO, error)
	UpdateTodoStatus(ctx context.Context, uuid string, status models.TodoStatus) (*dto.TodoDTO, error)
	ReorderTodo(ctx context.Context, uuid string, orderIndex int) (*dto.TodoDTO, error)
	GetStats(ctx context.Context) (*dto.StatsDTO, error)
	ListProjects(ctx context.Context) ([]dto.ProjectDTO, error)
	CreateProject(ctx context.Context, req dto.CreateProjectRequest) (*dto.ProjectDTO, error)
	UpdateProject(ctx context.Context, uuid string, req dto.UpdateProjectRequest) (*dto.ProjectDTO, error)
	DeleteProject(ctx context.Context, uuid string) error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logging.OrDiscard(logger)
	}
}

// WithNotifier sets where failure toasts go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithPageSize sets the list page size.
func WithPageSize(size int) Option {
	return func(s *Store) {
		if size >= constants.MinPageSize && size <= constants.MaxPageSize {
			s.pageSize = size
		}
	}
}

// WithClock replaces time.Now, for overdue filtering.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store holds the todo list, the open todo, stats and projects for one
// session. It is safe for concurrent use.
type Store struct {
	backend  Backend
	logger   *log.Logger
	notifier notify.Notifier
	pageSize int
	now      func() time.Time

	background sync.WaitGroup

	mu       sync.RWMutex
	entries  []Entry
	current  *dto.TodoDTO
	stats    *dto.StatsDTO
	projects []dto.ProjectDTO
	filters  Filters
	page     int
	hasMore  bool
	loading  bool
	lastErr  error
	// listGen increases whenever the list is replaced, so an older load
	// finishing late cannot overwrite a newer one.
	listGen  uint64
	deleting map[string]snapshot
}

// New creates an empty store.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		logger:   logging.Discard(),
		pageSize: constants.DefaultPageSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked()
	return s
}

// Reset drops all session state. Options are kept.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.entries = []Entry{}
	s.current = nil
	s.stats = nil
	s.projects = []dto.ProjectDTO{}
	s.filters = DefaultFilters()
	s.page = 0
	s.hasMore = false
	s.loading = false
	s.lastErr = nil
	s.listGen++
	s.deleting = make(map[string]snapshot)
}

// Wait blocks until background stats reloads have finished.
func (s *Store) Wait() {
	s.background.Wait()
}

// Refresh loads the list, stats and projects together.
func (s *Store) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.LoadTodos(ctx) })
	g.Go(func() error { return s.LoadStats(ctx) })
	g.Go(func() error { return s.LoadProjects(ctx) })
	return g.Wait()
}

// Entries returns the visible list entries in list order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.deleting {
			out = append(out, e)
		}
	}
	return out
}

// Todos returns the visible todos in list order.
func (s *Store) Todos() []dto.TodoDTO {
	entries := s.Entries()
	out := make([]dto.TodoDTO, len(entries))
	for i, e := range entries {
		out[i] = e.Todo
	}
	return out
}

// Entry returns the visible entry for uuid.
func (s *Store) Entry(uuid string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(uuid)
	if i < 0 || s.entries[i].deleting {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Current returns the todo open in the detail view.
func (s *Store) Current() *dto.TodoDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	current := *s.current
	return &current
}

// Stats returns the last loaded stats, or nil.
func (s *Store) Stats() *dto.StatsDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stats == nil {
		return nil
	}
	stats := *s.stats
	return &stats
}

// Projects returns the loaded projects.
func (s *Store) Projects() []dto.ProjectDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dto.ProjectDTO(nil), s.projects...)
}

// Filters returns the active filters.
func (s *Store) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// HasMore reports whether the last page came back full.
func (s *Store) HasMore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasMore
}

// Loading reports whether a list load is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the error of the most recent failed action.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// ClearError forgets the last error.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
}

// fail records err, sends a toast and returns err. Errors caused by the
// caller cancelling ctx are returned without a toast.
func (s *Store) fail(ctx context.Context, err error, fallback string, keyvals ...interface{}) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	message := apierrors.MessageFrom(err, fallback)
	notify.Error(s.notifier, message)
	s.logger.Error(fallback, append([]interface{}{"err", err}, keyvals...)...)
	return err
}

// reloadStats refreshes stats in the background. Failures are only logged.
func (s *Store) reloadStats(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		stats, err := s.backend.GetStats(ctx)
		if err != nil {
			s.logger.Warn("Failed to reload stats", "err", err)
			return
		}
		s.mu.Lock()
		s.stats = stats
		s.mu.Unlock()
	}()
}

func (s *Store) indexLocked(uuid string) int {
	for i := range s.entries {
		if s.entries[i].Todo.UUID == uuid {
			return i
		}
	}
	return -1
}
