package main

import (
	"context"
	"log"
	"os"

	"taskboard/internal/database"
	"taskboard/internal/repository"
)

// One-shot sweep of expired refresh-token rows, meant to run from cron.
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	tokenRepo := repository.NewRefreshTokenRepository(db)

	deleted, err := tokenRepo.DeleteExpired(context.Background())
	if err != nil {
		log.Fatalf("cleanup refresh_tokens failed: %v", err)
	}

	log.Printf("auth cleanup completed: refresh_tokens=%d", deleted)
}
