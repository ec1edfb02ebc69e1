package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-list-service/internal/middleware"
	"github.com/iliyamo/todo-list-service/internal/model"
	"github.com/iliyamo/todo-list-service/internal/repository"
)

func newTodoHandler(t *testing.T) (*TodoHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTodoHandler(repository.NewTodoRepo(db)), mock
}

// todoCtx builds an echo context carrying a resolved account, the way the
// Authenticate middleware leaves it for handlers.
func todoCtx(e *echo.Echo, method, path, body string, u *model.User) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if u != nil {
		c.Set(middleware.UserContextKey, u)
	}
	return c, rec
}

func mockTodoRow(mock sqlmock.Sqlmock, id uint64, content string, completed bool, priority string, ownerID uint64) {
	mock.ExpectQuery("SELECT .+ FROM todos WHERE id=").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "task_content", "is_completed", "priority", "user_id", "created_at"}).
			AddRow(id, content, completed, priority, ownerID, time.Now().UTC()))
}

func TestTodoCreate_DefaultPriority(t *testing.T) {
	h, mock := newTodoHandler(t)
	e := echo.New()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO todos (task_content, priority, user_id) VALUES (?,?,?)")).
		WithArgs("buy milk", model.PriorityMedium, uint64(1)).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mockTodoRow(mock, 5, "buy milk", false, model.PriorityMedium, 1)

	c, rec := todoCtx(e, http.MethodPost, "/api/todos", `{"task_content":"buy milk"}`, &model.User{ID: 1})
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"priority":"medium"`)
	assert.Contains(t, rec.Body.String(), `"user_id":1`)
}

func TestTodoCreate_Validation(t *testing.T) {
	h, _ := newTodoHandler(t)
	e := echo.New()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty content", `{"task_content":"  "}`, "Task content is required"},
		{"bad priority", `{"task_content":"x","priority":"urgent"}`, "Priority must be low, medium or high"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := todoCtx(e, http.MethodPost, "/api/todos", tt.body, &model.User{ID: 1})
			require.NoError(t, h.Create(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestTodoList_OwnerScoped(t *testing.T) {
	h, mock := newTodoHandler(t)
	e := echo.New()

	rows := sqlmock.NewRows([]string{"id", "task_content", "is_completed", "priority", "user_id", "created_at"}).
		AddRow(1, "a", false, "medium", 7, time.Now().UTC())
	mock.ExpectQuery("SELECT .+ FROM todos WHERE user_id=").
		WithArgs(uint64(7)).
		WillReturnRows(rows)

	c, rec := todoCtx(e, http.MethodGet, "/api/todos", "", &model.User{ID: 7})
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"task_content":"a"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoUpdate_NotOwner(t *testing.T) {
	h, mock := newTodoHandler(t)
	e := echo.New()

	mockTodoRow(mock, 5, "buy milk", false, "medium", 1)

	c, rec := todoCtx(e, http.MethodPut, "/api/todos/5", `{"is_completed":true}`, &model.User{ID: 2})
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not authorized")
}

func TestTodoUpdate_AdminMayEditAny(t *testing.T) {
	h, mock := newTodoHandler(t)
	e := echo.New()

	mockTodoRow(mock, 5, "buy milk", false, "medium", 1)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE todos SET task_content=?, is_completed=?, priority=? WHERE id=?")).
		WithArgs("buy milk", true, "medium", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := todoCtx(e, http.MethodPut, "/api/todos/5", `{"is_completed":true}`, &model.User{ID: 9, IsAdmin: true})
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_completed":true`)
}

// A PUT that resends the stored values changes no rows in MySQL; the todo
// was just loaded, so the update must still answer 200, not 404.
func TestTodoUpdate_NoOp(t *testing.T) {
	h, mock := newTodoHandler(t)
	e := echo.New()

	mockTodoRow(mock, 5, "buy milk", true, "medium", 1)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE todos SET task_content=?, is_completed=?, priority=? WHERE id=?")).
		WithArgs("buy milk", true, "medium", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := todoCtx(e, http.MethodPut, "/api/todos/5", `{"is_completed":true}`, &model.User{ID: 1})
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_completed":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoUpdate_NotFound(t *testing.T) {
	h, mock := newTodoHandler(t)
	e := echo.New()

	mock.ExpectQuery("SELECT .+ FROM todos WHERE id=").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	c, rec := todoCtx(e, http.MethodPut, "/api/todos/99", `{"is_completed":true}`, &model.User{ID: 1})
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Todo not found")
}

func TestTodoDelete_Owner(t *testing.T) {
	h, mock := newTodoHandler(t)
	e := echo.New()

	mockTodoRow(mock, 5, "buy milk", false, "medium", 1)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM todos WHERE id=?")).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := todoCtx(e, http.MethodDelete, "/api/todos/5", "", &model.User{ID: 1})
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Todo deleted")
}

func TestTodoDelete_NotOwner(t *testing.T) {
	h, mock := newTodoHandler(t)
	e := echo.New()

	mockTodoRow(mock, 5, "buy milk", false, "medium", 1)

	c, rec := todoCtx(e, http.MethodDelete, "/api/todos/5", "", &model.User{ID: 2})
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
