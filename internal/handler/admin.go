// Package handler defines HTTP handlers.  This file implements the admin
// panel: user listing with todo statistics, user deletion, global todo
// listing and aggregate stats.  All routes here sit behind Authenticate +
// RequireAdmin; the only extra policy applied in-handler is the
// self-deletion ban.
package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-list-service/internal/auth"
	"github.com/iliyamo/todo-list-service/internal/middleware"
	"github.com/iliyamo/todo-list-service/internal/repository"
)

// AdminHandler bundles the repositories the admin panel reads from.
type AdminHandler struct {
	Users *repository.UserRepo
	Todos *repository.TodoRepo
}

func NewAdminHandler(users *repository.UserRepo, todos *repository.TodoRepo) *AdminHandler {
	return &AdminHandler{Users: users, Todos: todos}
}

type adminUserResp struct {
	ID             uint64 `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	IsAdmin        bool   `json:"is_admin"`
	CreatedAt      string `json:"created_at"`
	TotalTodos     uint64 `json:"total_todos"`
	CompletedTodos uint64 `json:"completed_todos"`
}

type adminTodoResp struct {
	todoResp
	Username string `json:"username"`
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListWithStats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserResp{
			ID:             u.ID,
			Username:       u.Username,
			Email:          u.Email,
			IsAdmin:        u.IsAdmin,
			CreatedAt:      u.CreatedAt.UTC().Format(time.RFC3339),
			TotalTodos:     u.TotalTodos,
			CompletedTodos: u.CompletedTodos,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// DeleteUser handles DELETE /api/admin/users/:id.  An admin may delete any
// account except their own; the target's todos go with it.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token is missing"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := auth.CanDeleteUser(actor, id); err != nil {
		if err == auth.ErrSelfDelete {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot delete yourself"})
		}
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Admin access required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	target, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Users.DeleteWithTodos(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("User %s deleted", target.Username)})
}

// Stats handles GET /api/admin/stats.  The response is cacheable; the
// router wraps this route with the Redis response cache.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	totalUsers, err := h.Users.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalTodos, completed, err := h.Todos.Counts(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_users":     totalUsers,
		"total_todos":     totalTodos,
		"completed_todos": completed,
		"pending_todos":   totalTodos - completed,
	})
}

// ListTodos handles GET /api/admin/todos: every todo in the system with its
// owner's username.
func (h *AdminHandler) ListTodos(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	todos, err := h.Todos.ListAllWithOwner(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminTodoResp, 0, len(todos))
	for _, t := range todos {
		out = append(out, adminTodoResp{todoResp: toTodoResp(t.Todo), Username: t.Username})
	}
	return c.JSON(http.StatusOK, echo.Map{"todos": out})
}
