package auth

import (
	"errors"

	"github.com/iliyamo/todo-list-service/internal/model"
)

// Policy errors surfaced to handlers.  ErrNotAdmin maps to 403 while
// ErrSelfDelete maps to 400; self-deletion is rejected even though the
// general admin check would pass.
var (
	ErrNotAdmin   = errors.New("admin access required")
	ErrSelfDelete = errors.New("cannot delete yourself")
)

// OwnerOrAdmin reports whether u may act on a resource owned by ownerID.
// Owners may act on their own resources; admins may act on anyone's.
func OwnerOrAdmin(u *model.User, ownerID uint64) bool {
	if u == nil {
		return false
	}
	return u.ID == ownerID || u.IsAdmin
}

// AdminOnly reports whether u holds the elevated role.
func AdminOnly(u *model.User) bool {
	return u != nil && u.IsAdmin
}

// CanDeleteUser decides whether actor may delete the account targetID.
// Only admins may delete accounts, and never their own.
func CanDeleteUser(actor *model.User, targetID uint64) error {
	if !AdminOnly(actor) {
		return ErrNotAdmin
	}
	if actor.ID == targetID {
		return ErrSelfDelete
	}
	return nil
}
