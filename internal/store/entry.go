package store

import "github.com/ashishacharya123/pkms-todos/internal/dto"

// State tracks whether an entry reflects a confirmed server value.
type State int

const (
	StateCommitted State = iota
	StatePending
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFailed:
		return "failed"
	default:
		return "committed"
	}
}

// Entry is one todo in the local list. Reason is set when State is Failed.
type Entry struct {
	Todo   dto.TodoDTO
	State  State
	Reason string

	deleting bool
}

// snapshot is an entry saved before a mutation so it can be put back.
type snapshot struct {
	entry Entry
	index int
	found bool
}
