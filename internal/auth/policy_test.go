package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/todo-list-service/internal/model"
)

func TestOwnerOrAdmin(t *testing.T) {
	owner := &model.User{ID: 1}
	stranger := &model.User{ID: 2}
	admin := &model.User{ID: 3, IsAdmin: true}

	tests := []struct {
		name    string
		actor   *model.User
		ownerID uint64
		want    bool
	}{
		{"owner may act on own resource", owner, 1, true},
		{"non-owner non-admin is denied", stranger, 1, false},
		{"admin may act on anyone's resource", admin, 1, true},
		{"nil account is denied", nil, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OwnerOrAdmin(tt.actor, tt.ownerID))
		})
	}
}

func TestAdminOnly(t *testing.T) {
	assert.True(t, AdminOnly(&model.User{ID: 1, IsAdmin: true}))
	assert.False(t, AdminOnly(&model.User{ID: 1}))
	assert.False(t, AdminOnly(nil))
}

func TestCanDeleteUser(t *testing.T) {
	admin := &model.User{ID: 3, IsAdmin: true}

	assert.NoError(t, CanDeleteUser(admin, 9))
	// Self-deletion is rejected even though the admin check passes.
	assert.ErrorIs(t, CanDeleteUser(admin, 3), ErrSelfDelete)
	assert.ErrorIs(t, CanDeleteUser(&model.User{ID: 5}, 9), ErrNotAdmin)
	assert.ErrorIs(t, CanDeleteUser(nil, 9), ErrNotAdmin)
}
