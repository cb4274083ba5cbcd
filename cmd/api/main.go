package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/domain"
	"taskboard/internal/middleware"
	"taskboard/internal/modules/auth"
	"taskboard/internal/modules/task"
	jwtsvc "taskboard/internal/pkg/jwt"
	"taskboard/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	cfg, err := config.LoadAuthRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.RefreshToken{}, &domain.Task{}); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	j := jwtsvc.New(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.RefreshTTL)

	hub := task.NewHub()
	defer hub.Close()

	authService := auth.NewService(userRepo, tokenRepo, j)
	authHandler := auth.NewHandler(authService, cfg)

	taskService := task.NewService(taskRepo, hub)
	taskHandler := task.NewHandler(taskService)
	wsHandler := task.NewWSHandler(hub, j)

	if cfg.SweepInterval > 0 {
		go sweepExpiredTokens(tokenRepo, cfg.SweepInterval)
	}

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Server is running"})
		})

		// public
		authHandler.RegisterRoutes(api)
		api.GET("/ws/tasks", wsHandler.HandleWebSocket)

		// protected
		protected := api.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			taskHandler.RegisterRoutes(protected)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func sweepExpiredTokens(tokenRepo *repository.RefreshTokenRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		deleted, err := tokenRepo.DeleteExpired(context.Background())
		if err != nil {
			log.Printf("token sweep failed: %v", err)
			continue
		}
		if deleted > 0 {
			log.Printf("token sweep removed %d expired refresh tokens", deleted)
		}
	}
}
