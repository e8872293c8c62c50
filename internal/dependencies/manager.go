// Package dependencies manages the blocking and blocked-by relationships of a
// single todo on behalf of a detail view.
package dependencies

import (
	"context"
	"errors"
	"sync"

	"github.com/ashishacharya123/pkms-todos/internal/dto"
	apierrors "github.com/ashishacharya123/pkms-todos/internal/errors"
	"github.com/ashishacharya123/pkms-todos/internal/logging"
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/ashishacharya123/pkms-todos/internal/notify"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Messages shown when the server gives no reason for a failure.
const (
	AddFailedMessage    = "Failed to add dependency"
	RemoveFailedMessage = "Failed to remove dependency"
)

var (
	ErrSelfDependency = errors.New("a todo cannot depend on itself")
	ErrAlreadyBlocked = errors.New("todo is already blocked by this todo")
	ErrBlockerDone    = errors.New("a completed todo cannot become a blocker")
	ErrWouldCycle     = errors.New("adding this dependency would create a circular dependency")
	ErrClosed         = errors.New("dependency manager is closed")
)

// Backend is the subset of the API the manager calls.
type Backend interface {
	GetBlockingTodos(ctx context.Context, uuid string) ([]dto.TodoSummaryDTO, error)
	GetBlockedByTodos(ctx context.Context, uuid string) ([]dto.TodoSummaryDTO, error)
	AddDependency(ctx context.Context, uuid, blockerUUID string) error
	RemoveDependency(ctx context.Context, uuid, blockerUUID string) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) {
		m.logger = logging.OrDiscard(logger)
	}
}

// WithNotifier also sends failures as toasts.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithTodos gives the manager a view of the loaded todo list, used to reject
// done blockers before calling the server.
func WithTodos(todos func() []dto.TodoDTO) Option {
	return func(m *Manager) {
		m.todos = todos
	}
}

// WithLocalCycleCheck rejects blockers that would close a loop in the known
// graph without asking the server.
func WithLocalCycleCheck() Option {
	return func(m *Manager) {
		m.cycleCheck = true
	}
}

// Manager holds the dependency view of one todo. Calls after Close fail with
// ErrClosed and responses arriving after Close are dropped.
type Manager struct {
	todoUUID   string
	backend    Backend
	logger     *log.Logger
	notifier   notify.Notifier
	todos      func() []dto.TodoDTO
	cycleCheck bool

	ctx    context.Context
	cancel context.CancelFunc
	banner notify.Banner

	mu        sync.RWMutex
	blocking  []dto.TodoSummaryDTO
	blockedBy []dto.TodoSummaryDTO
	loaded    bool
}

// New creates a manager for todoUUID whose lifetime ends when parent is
// cancelled or Close is called.
func New(parent context.Context, backend Backend, todoUUID string, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(parent)
	m := &Manager{
		todoUUID:  todoUUID,
		backend:   backend,
		logger:    logging.Discard(),
		ctx:       ctx,
		cancel:    cancel,
		blocking:  []dto.TodoSummaryDTO{},
		blockedBy: []dto.TodoSummaryDTO{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TodoUUID is the todo the manager is bound to.
func (m *Manager) TodoUUID() string {
	return m.todoUUID
}

// Close ends the manager's lifetime and aborts in-flight requests.
func (m *Manager) Close() {
	m.cancel()
}

// Banner is the dismissible error banner for this view.
func (m *Manager) Banner() *notify.Banner {
	return &m.banner
}

// Blocking returns the todos waiting on this one.
func (m *Manager) Blocking() []dto.TodoSummaryDTO {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]dto.TodoSummaryDTO(nil), m.blocking...)
}

// BlockedBy returns the todos this one waits on.
func (m *Manager) BlockedBy() []dto.TodoSummaryDTO {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]dto.TodoSummaryDTO(nil), m.blockedBy...)
}

// Loaded reports whether Load has completed at least once.
func (m *Manager) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Load fetches both edge sets at the same time. A set whose request fails is
// shown as empty; the other set is kept. The first failure is returned.
func (m *Manager) Load(ctx context.Context) error {
	ctx, stop, err := m.bind(ctx)
	if err != nil {
		return err
	}
	defer stop()

	var (
		g         errgroup.Group
		blocking  = []dto.TodoSummaryDTO{}
		blockedBy = []dto.TodoSummaryDTO{}
	)
	g.Go(func() error {
		todos, err := m.backend.GetBlockingTodos(ctx, m.todoUUID)
		if err != nil {
			m.logger.Warn("Failed to load blocking todos", "uuid", m.todoUUID, "err", err)
			return err
		}
		blocking = todos
		return nil
	})
	g.Go(func() error {
		todos, err := m.backend.GetBlockedByTodos(ctx, m.todoUUID)
		if err != nil {
			m.logger.Warn("Failed to load blocked-by todos", "uuid", m.todoUUID, "err", err)
			return err
		}
		blockedBy = todos
		return nil
	})
	err = g.Wait()

	if m.ctx.Err() != nil {
		return ErrClosed
	}

	m.mu.Lock()
	m.blocking = orEmpty(blocking)
	m.blockedBy = orEmpty(blockedBy)
	m.loaded = true
	m.mu.Unlock()

	return err
}

// Add makes blockerUUID a blocker of the managed todo and reloads both sets.
// Obvious mistakes are rejected locally without a request.
func (m *Manager) Add(ctx context.Context, blockerUUID string) error {
	if err := m.validate(blockerUUID); err != nil {
		return err
	}

	ctx, stop, err := m.bind(ctx)
	if err != nil {
		return err
	}
	defer stop()

	if err := m.backend.AddDependency(ctx, m.todoUUID, blockerUUID); err != nil {
		return m.fail(err, AddFailedMessage, "blocker", blockerUUID)
	}

	m.banner.Dismiss()
	m.logger.Debug("Dependency added", "uuid", m.todoUUID, "blocker", blockerUUID)
	return m.Load(ctx)
}

// Remove drops blockerUUID from the managed todo's blockers. The local sets
// only change through the reload that follows a successful request.
func (m *Manager) Remove(ctx context.Context, blockerUUID string) error {
	ctx, stop, err := m.bind(ctx)
	if err != nil {
		return err
	}
	defer stop()

	if err := m.backend.RemoveDependency(ctx, m.todoUUID, blockerUUID); err != nil {
		return m.fail(err, RemoveFailedMessage, "blocker", blockerUUID)
	}

	m.banner.Dismiss()
	m.logger.Debug("Dependency removed", "uuid", m.todoUUID, "blocker", blockerUUID)
	return m.Load(ctx)
}

// AvailableTodos filters all down to the candidates for a new blocker.
func (m *Manager) AvailableTodos(all []dto.TodoDTO) []dto.TodoDTO {
	return AvailableTodos(all, m.todoUUID, m.BlockedBy())
}

func (m *Manager) validate(blockerUUID string) error {
	if blockerUUID == m.todoUUID {
		return ErrSelfDependency
	}

	blockedBy := m.BlockedBy()
	for _, b := range blockedBy {
		if b.UUID == blockerUUID {
			return ErrAlreadyBlocked
		}
	}

	var known []dto.TodoDTO
	if m.todos != nil {
		known = m.todos()
	}
	for _, t := range known {
		if t.UUID == blockerUUID && t.Status == models.TodoStatusDone {
			return ErrBlockerDone
		}
	}

	if m.cycleCheck {
		// Edges touching this todo come from the freshly loaded sets; the
		// list may still carry ones removed since it was fetched.
		g := buildGraphAround(known, m.todoUUID, m.Blocking(), blockedBy)
		if g.reaches(blockerUUID, m.todoUUID) {
			return ErrWouldCycle
		}
	}
	return nil
}

// fail records a failed mutation in the banner and returns err.
func (m *Manager) fail(err error, fallback string, keyvals ...interface{}) error {
	if m.ctx.Err() != nil {
		return ErrClosed
	}
	message := apierrors.MessageFrom(err, fallback)
	m.banner.Show(message)
	notify.Error(m.notifier, message)
	m.logger.Error(fallback, append([]interface{}{"uuid", m.todoUUID, "err", err}, keyvals...)...)
	return err
}

// bind ties ctx to the manager's lifetime.
func (m *Manager) bind(ctx context.Context) (context.Context, func(), error) {
	if m.ctx.Err() != nil {
		return nil, nil, ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(m.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}, nil
}

func orEmpty(todos []dto.TodoSummaryDTO) []dto.TodoSummaryDTO {
	if todos == nil {
		return []dto.TodoSummaryDTO{}
	}
	return todos
}
