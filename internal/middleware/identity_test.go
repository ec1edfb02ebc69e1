package middleware

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-list-service/internal/auth"
	"github.com/iliyamo/todo-list-service/internal/model"
	"github.com/iliyamo/todo-list-service/internal/repository"
)

// newAuthFixture wires a token issuer and a sqlmock-backed user repo for
// middleware tests.
func newAuthFixture(t *testing.T) (*auth.TokenIssuer, *repository.UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return auth.NewTokenIssuer("test-secret", time.Hour), repository.NewUserRepo(db), mock
}

// runAuthenticated sends a request through Authenticate into a handler
// that records the resolved account.
func runAuthenticated(t *testing.T, issuer *auth.TokenIssuer, users *repository.UserRepo, authHeader string) (*httptest.ResponseRecorder, *model.User) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *model.User
	h := Authenticate(issuer, users)(func(c echo.Context) error {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		seen = u
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, seen
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	issuer, users, _ := newAuthFixture(t)

	rec, _ := runAuthenticated(t, issuer, users, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token is missing")
}

func TestAuthenticate_BadScheme(t *testing.T) {
	issuer, users, _ := newAuthFixture(t)

	rec, _ := runAuthenticated(t, issuer, users, "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token format")
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	issuer, users, _ := newAuthFixture(t)

	rec, _ := runAuthenticated(t, issuer, users, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token is invalid or expired")
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	_, users, _ := newAuthFixture(t)
	expiredIssuer := auth.NewTokenIssuer("test-secret", -time.Second)
	tok, err := expiredIssuer.Issue(1, false)
	require.NoError(t, err)

	// Expired and tampered tokens produce the same external message.
	rec, _ := runAuthenticated(t, expiredIssuer, users, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token is invalid or expired")
}

func TestAuthenticate_DeletedAccount(t *testing.T) {
	issuer, users, mock := newAuthFixture(t)
	tok, err := issuer.Issue(42, false)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(uint64(42)).
		WillReturnError(sql.ErrNoRows)

	rec, _ := runAuthenticated(t, issuer, users, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

// A database outage during the account lookup is an infrastructure
// failure, not a bad credential: the caller gets 500, not 401.
func TestAuthenticate_StoreFailure(t *testing.T) {
	issuer, users, mock := newAuthFixture(t)
	tok, err := issuer.Issue(42, false)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(uint64(42)).
		WillReturnError(errors.New("driver: bad connection"))

	rec, _ := runAuthenticated(t, issuer, users, "Bearer "+tok)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "query failed")
}

func TestAuthenticate_Success(t *testing.T) {
	issuer, users, mock := newAuthFixture(t)
	tok, err := issuer.Issue(42, true)
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "email", "password_hash", "is_admin", "created_at", "updated_at"}).
			AddRow(42, "alice", "a@x.com", "hashed", true, now, now))

	rec, seen := runAuthenticated(t, issuer, users, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, uint64(42), seen.ID)
	assert.Equal(t, "alice", seen.Username)
	assert.True(t, seen.IsAdmin)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		user     *model.User
		wantCode int
	}{
		{"no resolved account", nil, http.StatusUnauthorized},
		{"regular user", &model.User{ID: 1}, http.StatusForbidden},
		{"admin user", &model.User{ID: 1, IsAdmin: true}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.user != nil {
				c.Set(UserContextKey, tt.user)
			}

			h := RequireAdmin()(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			require.NoError(t, h(c))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
