package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTodoStatus_IsValid(t *testing.T) {
	for _, s := range ValidTodoStatuses() {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, TodoStatus("archived").IsValid())
	assert.False(t, TodoStatus("").IsValid())
}

func TestTodoStatus_IsClosed(t *testing.T) {
	assert.True(t, TodoStatusDone.IsClosed())
	assert.True(t, TodoStatusCancelled.IsClosed())
	assert.False(t, TodoStatusBlocked.IsClosed())
}

func TestTodoPriority_Rank(t *testing.T) {
	assert.Equal(t, 0, TodoPriorityLow.Rank())
	assert.Equal(t, 3, TodoPriorityUrgent.Rank())
	assert.Less(t, TodoPriorityMedium.Rank(), TodoPriorityHigh.Rank())
	assert.Equal(t, -1, TodoPriority("critical").Rank())
	assert.False(t, TodoPriority("critical").IsValid())
}

func TestTodo_BeforeCreateAssignsUUID(t *testing.T) {
	todo := &Todo{Title: "write report"}
	assert.NoError(t, todo.BeforeCreate(nil))
	assert.Len(t, todo.UUID, 36)

	kept := &Todo{UUID: "fixed"}
	assert.NoError(t, kept.BeforeCreate(nil))
	assert.Equal(t, "fixed", kept.UUID)
}
