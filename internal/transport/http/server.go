package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"time"

	"trackshare/internal/config"
	"trackshare/internal/database"
	"trackshare/internal/handler"
	"trackshare/internal/redis"
	"trackshare/internal/repository"
	"trackshare/internal/service"
	"trackshare/internal/session"
	authmw "trackshare/internal/transport/http/middleware"
)

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Connect to Redis (session store)
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)

	// 5. Services
	sessions := session.NewStore(redisClient.Client, time.Duration(cfg.SessionMaxAge)*time.Second)
	mailer := service.NewSMTPMailer(cfg)
	userService := service.NewUserService(userRepo, sessions, mailer)
	followService := service.NewFollowService(followRepo, userRepo)
	postService := service.NewPostService(postRepo, userRepo)
	feedService := service.NewFeedService(postRepo, userRepo)
	newsletterService := service.NewNewsletterService(userRepo, postRepo, mailer)

	// Avatar storage is optional; profile edits still work without it
	mediaService, err := service.NewMediaService(context.Background(), cfg)
	if err != nil {
		log.Printf("[Server] Avatar storage disabled: %v", err)
		mediaService = nil
	}

	// 6. Handlers
	sessionAuth := authmw.NewSessionAuth(sessions, userRepo)
	routerCfg := RouterConfig{
		AuthHandler:   handler.NewAuthHandler(userService, sessions, cfg),
		UserHandler:   handler.NewUserHandler(userService, followService, feedService, mediaService),
		FollowHandler: handler.NewFollowHandler(followService),
		FeedHandler:   handler.NewFeedHandler(feedService),
		PostHandler:   handler.NewPostHandler(postService),
		AdminHandler:  handler.NewAdminHandler(userService, postService, newsletterService),
		SessionAuth:   sessionAuth,
	}

	// 7. Start Server
	router := NewRouter(routerCfg)
	addr := ":" + cfg.ServerPort
	log.Printf("[Server] Listening on %s", addr)

	return stdhttp.ListenAndServe(addr, router)
}
