// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// UserRegisteredEvent is published after a successful registration.  It
// carries enough for downstream consumers (welcome mail, analytics) without
// querying the primary database.  Password material never appears here.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	RegisteredAt string `json:"registered_at"`
}

// TodoCompletedEvent is published when a todo transitions to completed.
type TodoCompletedEvent struct {
	TodoID      uint64 `json:"todo_id"`
	UserID      uint64 `json:"user_id"`
	TaskContent string `json:"task_content"`
	Priority    string `json:"priority"`
	CompletedAt string `json:"completed_at"`
}

// Queue names shared by publisher and consumer.
const (
	UserRegisteredQueue = "user.registered"
	TodoCompletedQueue  = "todo.completed"
)
