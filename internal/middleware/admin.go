package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-list-service/internal/auth"
)

// RequireAdmin returns a middleware that rejects requests from accounts
// without the admin flag.  It assumes Authenticate already ran; a missing
// account is treated as unauthenticated rather than forbidden.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token is missing"})
			}
			if !auth.AdminOnly(u) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Admin access required"})
			}
			return next(c)
		}
	}
}
