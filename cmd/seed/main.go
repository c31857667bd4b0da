package main

import (
	"context"
	"errors"
	"log"
	"os"

	"tunebox/internal/database"
	"tunebox/internal/domain"
	"tunebox/internal/pkg/password"
	"tunebox/internal/repository"
)

// Seeds a demo account for local development.
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = "tunebox.db"
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	users := repository.NewUserRepository(db)
	ctx := context.Background()

	hash, err := password.Hash("demo123")
	if err != nil {
		log.Fatal(err)
	}

	demo := &domain.User{
		Username:     "demo",
		Email:        "demo@tunebox.local",
		PasswordHash: hash,
	}
	if err := users.Create(ctx, demo); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Println("demo user already exists, nothing to do")
			return
		}
		log.Fatal(err)
	}

	log.Printf("seeded demo user id=%d username=%s password=demo123", demo.ID, demo.Username)
}
