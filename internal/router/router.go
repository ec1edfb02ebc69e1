package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/todo-list-service/internal/auth"
	"github.com/iliyamo/todo-list-service/internal/config"
	"github.com/iliyamo/todo-list-service/internal/handler"
	"github.com/iliyamo/todo-list-service/internal/middleware"
	"github.com/iliyamo/todo-list-service/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers to
// verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI wires the application's API surface:
//
//	/api/register, /api/login      – public, rate limited
//	/api/me, /api/todos...         – any authenticated account
//	/api/admin/...                 – authenticated admins only
//
// Identity resolution happens exactly once per protected request in the
// Authenticate middleware; handlers read the resolved account from the
// context instead of re-checking tokens inline.
func RegisterAPI(
	e *echo.Echo,
	a *handler.AuthHandler,
	t *handler.TodoHandler,
	adm *handler.AdminHandler,
	issuer *auth.TokenIssuer,
	users *repository.UserRepo,
	rdb *redis.Client,
) {
	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	cache := middleware.CacheResponse(config.LoadCacheConfig(), rdb)

	api := e.Group("/api")
	api.POST("/register", a.Register, limiter)
	api.POST("/login", a.Login, limiter)

	// Everything below requires a valid bearer token.
	protected := api.Group("", middleware.Authenticate(issuer, users))
	protected.GET("/me", a.Me)
	protected.GET("/todos", t.List)
	protected.POST("/todos", t.Create)
	protected.PUT("/todos/:id", t.Update)
	protected.DELETE("/todos/:id", t.Delete)

	// Admin panel: same identity resolution plus the role gate.
	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.GET("/users", adm.ListUsers)
	admin.DELETE("/users/:id", adm.DeleteUser)
	admin.GET("/stats", adm.Stats, cache)
	admin.GET("/todos", adm.ListTodos)
}
