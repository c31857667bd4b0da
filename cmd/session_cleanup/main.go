package main

import (
	"context"
	"log"
	"os"

	"tunebox/internal/database"
	"tunebox/internal/repository"
)

// Expired sessions are normally deleted lazily when presented; this job
// sweeps the ones nobody ever presented again.
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	sessions := repository.NewSessionRepository(db)
	deleted, err := sessions.DeleteExpired(context.Background())
	if err != nil {
		log.Fatalf("cleanup sessions failed: %v", err)
	}

	log.Printf("session cleanup completed: sessions=%d", deleted)
}
