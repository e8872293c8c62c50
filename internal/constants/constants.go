package constants

import "time"

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Todo field limits
const (
	MaxTitleLength = 255
	MaxTagLength   = 64
)

// DueSoonWindow is how far ahead a due date counts as "due soon".
const DueSoonWindow = 3 * 24 * time.Hour

// Context keys
const (
	ContextKeyTodo = "todo"
)

// Client defaults
const (
	DefaultAPIURL     = "http://localhost:8080/api/v1"
	DefaultServerAddr = ":8080"
)
