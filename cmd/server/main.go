package main // Entry point package

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-list-service/internal/auth"
	"github.com/iliyamo/todo-list-service/internal/config"
	"github.com/iliyamo/todo-list-service/internal/database"
	"github.com/iliyamo/todo-list-service/internal/handler"
	"github.com/iliyamo/todo-list-service/internal/queue"
	"github.com/iliyamo/todo-list-service/internal/repository"
	"github.com/iliyamo/todo-list-service/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	users := repository.NewUserRepo(db)
	todos := repository.NewTodoRepo(db)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	if err := bootstrapAdmin(cfg, users); err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}

	rdb := config.NewRedisClient() // nil disables rate limiting and caching
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	go queue.StartActivityConsumer()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAPI(e,
		handler.NewAuthHandler(cfg, users, issuer),
		handler.NewTodoHandler(todos),
		handler.NewAdminHandler(users, todos),
		issuer, users, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// bootstrapAdmin ensures an admin account exists when ADMIN_EMAIL and
// ADMIN_PASSWORD are configured.  An existing account with that email is
// left untouched, so the password can be changed without the bootstrap
// overwriting it.
func bootstrapAdmin(cfg config.Config, users *repository.UserRepo) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := users.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if err != sql.ErrNoRows {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	if _, err := users.Create(ctx, "admin", cfg.AdminEmail, hash, true); err != nil {
		return err
	}
	log.Printf("created admin account %s", cfg.AdminEmail)
	return nil
}
