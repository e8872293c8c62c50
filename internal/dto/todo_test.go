package dto

import (
	"testing"
	"time"

	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestTodoDTO_DueBadges(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	tests := []struct {
		name    string
		todo    TodoDTO
		overdue bool
		soon    bool
	}{
		{"no due date", TodoDTO{Status: models.TodoStatusPending}, false, false},
		{"past due", TodoDTO{Status: models.TodoStatusPending, DueDate: at(-time.Hour)}, true, false},
		{"past due but done", TodoDTO{Status: models.TodoStatusDone, DueDate: at(-time.Hour)}, false, false},
		{"due tomorrow", TodoDTO{Status: models.TodoStatusInProgress, DueDate: at(24 * time.Hour)}, false, true},
		{"due in exactly three days", TodoDTO{Status: models.TodoStatusPending, DueDate: at(72 * time.Hour)}, false, true},
		{"due next week", TodoDTO{Status: models.TodoStatusPending, DueDate: at(7 * 24 * time.Hour)}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overdue, tt.todo.IsOverdue(now))
			assert.Equal(t, tt.soon, tt.todo.IsDueSoon(now))
		})
	}
}

func TestTodoDTO_Membership(t *testing.T) {
	todo := TodoDTO{
		Projects:       []ProjectRefDTO{{UUID: "p1", Name: "Home"}},
		Tags:           []string{"Errand"},
		BlockedByTodos: []TodoSummaryDTO{{UUID: "b1"}},
	}

	assert.True(t, todo.HasProject("p1"))
	assert.False(t, todo.HasProject("p2"))
	assert.True(t, todo.HasTag("errand"))
	assert.False(t, todo.HasTag("work"))
	assert.True(t, todo.IsBlockedBy("b1"))
	assert.False(t, todo.IsBlockedBy("b2"))
}

func TestToTodoDTO(t *testing.T) {
	parent := "parent-uuid"
	todo := models.Todo{
		UUID:       "t1",
		Title:      "File taxes",
		Status:     models.TodoStatusBlocked,
		Priority:   models.TodoPriorityUrgent,
		OrderIndex: 2,
		Tags:       []models.TodoTag{{TodoUUID: "t1", Name: "finance"}},
		ProjectLinks: []models.TodoProject{{
			TodoUUID:    "t1",
			ProjectUUID: "p1",
			IsExclusive: true,
			Project:     models.Project{UUID: "p1", Name: "Admin", Color: "#ff0000"},
		}},
		Subtasks: []models.Todo{{UUID: "s1", Title: "Collect receipts", ParentUUID: &parent}},
	}
	blocker := models.Todo{UUID: "b1", Title: "Get W-2", Status: models.TodoStatusPending}

	out := ToTodoDTO(todo, nil, []models.Todo{blocker})

	assert.Equal(t, "t1", out.UUID)
	assert.Equal(t, 2, out.OrderIndex)
	assert.Equal(t, []string{"finance"}, out.Tags)
	assert.Equal(t, []ProjectRefDTO{{UUID: "p1", Name: "Admin", Color: "#ff0000", IsExclusive: true}}, out.Projects)
	assert.Len(t, out.Subtasks, 1)
	assert.Empty(t, out.BlockingTodos)
	assert.Equal(t, []TodoSummaryDTO{{UUID: "b1", Title: "Get W-2", Status: models.TodoStatusPending}}, out.BlockedByTodos)
}
