// Package repository implements data access for users and todos on top of
// database/sql.  Sentinel errors defined here let handlers distinguish
// failure scenarios without inspecting driver-specific error strings.
package repository

import "errors"

// ErrEmailExists is returned when an insert would violate the unique
// constraint on users.email.  Handlers translate it into HTTP 400.
var ErrEmailExists = errors.New("email already registered")

// ErrUsernameExists is returned when an insert would violate the unique
// constraint on users.username.  Handlers translate it into HTTP 400.
var ErrUsernameExists = errors.New("username already taken")
