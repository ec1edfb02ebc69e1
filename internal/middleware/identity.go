package middleware // middleware provides shared request processing for handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/todo-list-service/internal/auth"
	"github.com/iliyamo/todo-list-service/internal/model"
	"github.com/iliyamo/todo-list-service/internal/repository"
)

// UserContextKey is where Authenticate stores the resolved account.
const UserContextKey = "currentUser"

// Resolution failures, in the order the checks run.  Every one of them is
// answered with 401; they stay distinct here so tests and logs can tell
// them apart.
var (
	ErrNoCredential   = errors.New("authorization header missing")
	ErrBadScheme      = errors.New("authorization header is not a bearer token")
	ErrBadToken       = errors.New("token failed verification")
	ErrUnknownAccount = errors.New("token references a deleted account")
)

// Authenticate returns an Echo middleware that resolves the caller's
// identity from the Authorization header.  It verifies the bearer token
// with the issuer, loads the referenced account from the store (the single
// database lookup of the resolver) and stashes it in the context for
// handlers to read via CurrentUser.  Credential failures end the request
// with a generic 401; expired and tampered tokens are indistinguishable to
// the client on purpose.  A store failure is not the caller's fault and is
// answered 500 instead.
func Authenticate(issuer *auth.TokenIssuer, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := resolveIdentity(c, issuer, users)
			if err != nil {
				if !credentialFailure(err) {
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": unauthorizedMessage(err)})
			}
			c.Set(UserContextKey, u)
			return next(c)
		}
	}
}

// credentialFailure reports whether err is one of the resolution sentinels,
// as opposed to an infrastructure error from the user store.
func credentialFailure(err error) bool {
	return errors.Is(err, ErrNoCredential) ||
		errors.Is(err, ErrBadScheme) ||
		errors.Is(err, ErrBadToken) ||
		errors.Is(err, ErrUnknownAccount)
}

// resolveIdentity performs the four resolution steps in order and returns
// the loaded account or the first failure encountered.
func resolveIdentity(c echo.Context, issuer *auth.TokenIssuer, users *repository.UserRepo) (*model.User, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return nil, ErrNoCredential
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, ErrBadScheme
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	claims, err := issuer.Verify(raw)
	if err != nil {
		// auth.ErrTokenExpired vs auth.ErrTokenInvalid: kept in the wrapped
		// error for logging, collapsed in the response.
		return nil, errors.Join(ErrBadToken, err)
	}

	u, err := users.GetByID(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownAccount
		}
		return nil, err
	}
	return &u, nil
}

// unauthorizedMessage maps a resolution failure to the short reason string
// sent to the client.  Token failures share one message regardless of cause.
func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoCredential):
		return "Token is missing"
	case errors.Is(err, ErrBadScheme):
		return "Invalid token format"
	case errors.Is(err, ErrUnknownAccount):
		return "User not found"
	default:
		return "Token is invalid or expired"
	}
}

// CurrentUser returns the account resolved by Authenticate for this
// request.  The boolean is false on routes that skipped authentication.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(UserContextKey).(*model.User)
	return u, ok && u != nil
}
