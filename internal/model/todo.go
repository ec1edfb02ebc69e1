package model

import (
	"strings"
	"time"
)

// Priority levels a todo can carry.  The zero-value behaviour for requests
// that omit the field is PriorityMedium.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Todo represents a row in the `todos` table.  Every todo belongs to exactly
// one user via UserID; ownership is enforced by the access policy, not here.
type Todo struct {
	ID          uint64    // todos.id
	TaskContent string    // todos.task_content
	IsCompleted bool      // todos.is_completed
	Priority    string    // todos.priority (low|medium|high)
	UserID      uint64    // todos.user_id (owner)
	CreatedAt   time.Time // todos.created_at
}

// TodoWithOwner pairs a todo with its owner's username for admin listings.
type TodoWithOwner struct {
	Todo
	Username string // owning user's username
}

// NormalizePriority lower-cases and validates a priority value.  An empty
// input falls back to PriorityMedium.  The second return value is false when
// the value is not one of the known levels.
func NormalizePriority(raw string) (string, bool) {
	p := strings.ToLower(strings.TrimSpace(raw))
	switch p {
	case "":
		return PriorityMedium, true
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}
