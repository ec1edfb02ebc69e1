package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-list-service/internal/auth"
	"github.com/iliyamo/todo-list-service/internal/middleware"
	"github.com/iliyamo/todo-list-service/internal/model"
	"github.com/iliyamo/todo-list-service/internal/queue"
	"github.com/iliyamo/todo-list-service/internal/repository"
	publisher "github.com/iliyamo/todo-list-service/internal/service"
)

// TodoHandler implements the owner-scoped todo CRUD endpoints.
type TodoHandler struct {
	Todos *repository.TodoRepo
}

func NewTodoHandler(todos *repository.TodoRepo) *TodoHandler {
	return &TodoHandler{Todos: todos}
}

type createTodoReq struct {
	TaskContent string `json:"task_content"`
	Priority    string `json:"priority"`
}

// updateTodoReq uses pointers so that absent fields are left untouched.
type updateTodoReq struct {
	TaskContent *string `json:"task_content"`
	IsCompleted *bool   `json:"is_completed"`
	Priority    *string `json:"priority"`
}

type todoResp struct {
	ID          uint64 `json:"id"`
	TaskContent string `json:"task_content"`
	IsCompleted bool   `json:"is_completed"`
	Priority    string `json:"priority"`
	UserID      uint64 `json:"user_id"`
	CreatedAt   string `json:"created_at"`
}

func toTodoResp(t model.Todo) todoResp {
	return todoResp{
		ID:          t.ID,
		TaskContent: t.TaskContent,
		IsCompleted: t.IsCompleted,
		Priority:    t.Priority,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// List handles GET /api/todos.  Every caller, admins included, sees only
// their own todos here; the admin panel has its own listing.
func (h *TodoHandler) List(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token is missing"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	todos, err := h.Todos.ListByOwner(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]todoResp, 0, len(todos))
	for _, t := range todos {
		out = append(out, toTodoResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"todos": out})
}

// Create handles POST /api/todos.  The new todo is owned by the caller;
// priority defaults to medium when omitted.
func (h *TodoHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token is missing"})
	}
	var req createTodoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.TaskContent = strings.TrimSpace(req.TaskContent)
	if req.TaskContent == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Task content is required"})
	}
	priority, ok := model.NormalizePriority(req.Priority)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Priority must be low, medium or high"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Todos.Create(ctx, u.ID, req.TaskContent, priority)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create todo failed"})
	}
	return c.JSON(http.StatusCreated, toTodoResp(t))
}

// Update handles PUT /api/todos/:id.  The todo must exist (404) and belong
// to the caller unless the caller is an admin (403).  Fields absent from
// the body keep their stored values.
func (h *TodoHandler) Update(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token is missing"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateTodoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Todos.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Todo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.OwnerOrAdmin(u, t.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Not authorized"})
	}

	wasCompleted := t.IsCompleted
	if req.TaskContent != nil {
		content := strings.TrimSpace(*req.TaskContent)
		if content == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Task content is required"})
		}
		t.TaskContent = content
	}
	if req.IsCompleted != nil {
		t.IsCompleted = *req.IsCompleted
	}
	if req.Priority != nil {
		priority, ok := model.NormalizePriority(*req.Priority)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Priority must be low, medium or high"})
		}
		t.Priority = priority
	}

	if err := h.Todos.Update(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update todo failed"})
	}

	if !wasCompleted && t.IsCompleted {
		ev := queue.TodoCompletedEvent{
			TodoID:      t.ID,
			UserID:      t.UserID,
			TaskContent: t.TaskContent,
			Priority:    t.Priority,
			CompletedAt: time.Now().UTC().Format(time.RFC3339),
		}
		go func() { _ = publisher.PublishTodoCompleted(context.Background(), ev) }()
	}

	return c.JSON(http.StatusOK, toTodoResp(t))
}

// Delete handles DELETE /api/todos/:id with the same visibility rules as
// Update.
func (h *TodoHandler) Delete(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token is missing"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Todos.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Todo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.OwnerOrAdmin(u, t.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Not authorized"})
	}

	if err := h.Todos.DeleteByID(ctx, id); err != nil && err != sql.ErrNoRows {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete todo failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Todo deleted"})
}
