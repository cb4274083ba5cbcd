package main

import (
	"log"
	"os"
	"time"

	"taskboard/internal/database"
	"taskboard/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// Seeds a local database with demo accounts and tasks.
//
// Demo credentials: alice@example.com / Passw0rd and bob@example.com / Passw0rd
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "taskboard.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.RefreshToken{},
		&domain.Task{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM tasks")
	db.Exec("DELETE FROM refresh_tokens")
	db.Exec("DELETE FROM users")

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd"), 12)
	if err != nil {
		log.Fatal("bcrypt failed:", err)
	}

	alice := domain.User{Email: "alice@example.com", PasswordHash: string(hash)}
	bob := domain.User{Email: "bob@example.com", PasswordHash: string(hash)}

	for _, u := range []*domain.User{&alice, &bob} {
		if err := db.Create(u).Error; err != nil {
			log.Fatal("user seed failed:", err)
		}
	}

	tomorrow := time.Now().Add(24 * time.Hour)
	lastWeek := time.Now().Add(-7 * 24 * time.Hour)

	tasks := []domain.Task{
		{UserID: alice.ID, Title: "Write project proposal", Description: "First draft for review", Priority: domain.PriorityHigh, DueDate: &tomorrow},
		{UserID: alice.ID, Title: "Book dentist appointment", Priority: domain.PriorityLow},
		{UserID: alice.ID, Title: "Pay electricity bill", Priority: domain.PriorityMedium, DueDate: &lastWeek},
		{UserID: bob.ID, Title: "Review pull requests", Priority: domain.PriorityMedium, Completed: true},
		{UserID: bob.ID, Title: "Plan sprint retro", Priority: domain.PriorityHigh, DueDate: &tomorrow},
	}

	for i := range tasks {
		if err := db.Create(&tasks[i]).Error; err != nil {
			log.Fatal("task seed failed:", err)
		}
	}

	log.Printf("seed completed: users=2 tasks=%d", len(tasks))
}
