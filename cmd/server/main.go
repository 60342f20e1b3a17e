package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/teamnote/auth-service/internal/auth"
	"github.com/teamnote/auth-service/internal/config"
	"github.com/teamnote/auth-service/internal/database"
	"github.com/teamnote/auth-service/internal/handler"
	"github.com/teamnote/auth-service/internal/middleware"
	"github.com/teamnote/auth-service/internal/queue"
	"github.com/teamnote/auth-service/internal/repository"
	"github.com/teamnote/auth-service/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	// All collaborators are built here and passed down explicitly; no
	// package-level singletons.
	users := repository.NewUserRepo(db)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTIssuer,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour)
	svc := auth.NewService(users, hasher, codec)
	h := handler.NewAuthHandler(svc)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Audit consumer for user.registered events. Runs its own reconnect
	// loop for the lifetime of the process.
	go func() {
		if err := queue.StartRegistrationConsumer(); err != nil {
			log.Printf("registration consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, h, svc, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
