package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/soundrop/soundrop/internal/config"
	"github.com/soundrop/soundrop/internal/database"
	"github.com/soundrop/soundrop/internal/handler"
	"github.com/soundrop/soundrop/internal/middleware"
	"github.com/soundrop/soundrop/internal/queue"
	"github.com/soundrop/soundrop/internal/repository"
	"github.com/soundrop/soundrop/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepo(db)
	pubRepo := repository.NewPublicationRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	commentRepo := repository.NewCommentRepo(db)
	likeRepo := repository.NewLikeRepo(db)

	authHandler := handler.NewAuthHandler(cfg, userRepo)
	adminHandler := handler.NewUserAdminHandler(userRepo)
	pubHandler := handler.NewPublicationHandler(pubRepo, genreRepo)
	genreHandler := handler.NewGenreHandler(genreRepo)
	commentHandler := handler.NewCommentHandler(commentRepo)
	likeHandler := handler.NewLikeHandler(likeRepo)

	// Redis is optional: without it the cache and rate limiter become
	// pass-throughs and the API keeps serving.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}
	cacheMW := middleware.ResponseCache(config.LoadCacheConfig(), rdb)
	authMW := middleware.Auth(cfg.JWTSecret, userRepo)

	e := echo.New()
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, authMW)
	router.RegisterUserAdmin(e, adminHandler, authMW)
	router.RegisterPublications(e, pubHandler, authMW, cacheMW)
	router.RegisterGenres(e, genreHandler, authMW, cacheMW)
	router.RegisterComments(e, commentHandler, authMW, cacheMW)
	router.RegisterLikes(e, likeHandler, authMW, cacheMW)

	// Background consumer for publication.created events; it reconnects
	// on broker failures and never stops the server.
	go func() {
		if err := queue.StartPublicationConsumer(); err != nil {
			log.Printf("publication consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
