package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TodoStatus string

const (
	TodoStatusPending    TodoStatus = "pending"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusBlocked    TodoStatus = "blocked"
	TodoStatusDone       TodoStatus = "done"
	TodoStatusCancelled  TodoStatus = "cancelled"
)

// ValidTodoStatuses returns every known status in lane order.
func ValidTodoStatuses() []TodoStatus {
	return []TodoStatus{
		TodoStatusPending,
		TodoStatusInProgress,
		TodoStatusBlocked,
		TodoStatusDone,
		TodoStatusCancelled,
	}
}

// IsValid returns true if the status is a known value.
func (s TodoStatus) IsValid() bool {
	for _, valid := range ValidTodoStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// IsClosed reports whether a todo in this status no longer needs work.
func (s TodoStatus) IsClosed() bool {
	return s == TodoStatusDone || s == TodoStatusCancelled
}

type TodoPriority string

const (
	TodoPriorityLow    TodoPriority = "low"
	TodoPriorityMedium TodoPriority = "medium"
	TodoPriorityHigh   TodoPriority = "high"
	TodoPriorityUrgent TodoPriority = "urgent"
)

// ValidTodoPriorities returns every priority from lowest to highest.
func ValidTodoPriorities() []TodoPriority {
	return []TodoPriority{TodoPriorityLow, TodoPriorityMedium, TodoPriorityHigh, TodoPriorityUrgent}
}

// IsValid returns true if the priority is a known value.
func (p TodoPriority) IsValid() bool {
	return p.Rank() >= 0
}

// Rank returns the ordinal of the priority, -1 when unknown.
func (p TodoPriority) Rank() int {
	for i, valid := range ValidTodoPriorities() {
		if p == valid {
			return i
		}
	}
	return -1
}

type Todo struct {
	UUID        string       `gorm:"primaryKey;type:varchar(36)" json:"uuid"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TodoStatus   `gorm:"type:varchar(20);not null;default:'pending';index:idx_todos_lane,priority:1" json:"status"`
	Priority    TodoPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	OrderIndex  int          `gorm:"not null;default:0;index:idx_todos_lane,priority:2" json:"order_index"`
	DueDate     *time.Time   `gorm:"index" json:"due_date"`
	StartDate   *time.Time   `json:"start_date"`
	CompletedAt *time.Time   `json:"completed_at"`
	ParentUUID  *string      `gorm:"type:varchar(36);index" json:"parent_uuid"`
	IsArchived  bool         `gorm:"not null;default:false;index" json:"is_archived"`
	IsFavorite  bool         `gorm:"not null;default:false" json:"is_favorite"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Subtasks     []Todo        `gorm:"foreignKey:ParentUUID;references:UUID" json:"subtasks,omitempty"`
	Tags         []TodoTag     `gorm:"foreignKey:TodoUUID;references:UUID" json:"tags,omitempty"`
	ProjectLinks []TodoProject `gorm:"foreignKey:TodoUUID;references:UUID" json:"project_links,omitempty"`
}

// BeforeCreate assigns the server-side identity.
func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == "" {
		t.UUID = uuid.NewString()
	}
	return nil
}

type TodoTag struct {
	TodoUUID string `gorm:"primaryKey;type:varchar(36)" json:"todo_uuid"`
	Name     string `gorm:"primaryKey;type:varchar(64);index" json:"name"`
}
