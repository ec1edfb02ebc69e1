package model

import "time"

// User represents an application account as stored in the `users` table.
// Each field corresponds to a column in the database.  Handlers define
// separate response types with JSON tags; this struct is used internally
// by the repository and middleware layers.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password; never serialized to clients.
//  IsAdmin      – elevated role flag, false by default.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	IsAdmin      bool      // users.is_admin
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// UserStats augments a user with aggregate todo counts for the admin panel.
type UserStats struct {
	User
	TotalTodos     uint64 // number of todos owned by the user
	CompletedTodos uint64 // number of those marked completed
}
