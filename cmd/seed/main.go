// seed is a one-shot tool that loads demo users and the source-of-fund
// lookup list into an empty database. Existing rows with the same natural
// keys are left alone.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"procurement-tracker/internal/db"
)

type seedUser struct {
	username string
	fullName string
	division string
	password string
	role     string
}

var users = []seedUser{
	{"admin", "System Administrator", "Administrative Division", "admin1234", "admin"},
	{"jdelacruz", "Juan Dela Cruz", "Finance Division", "user1234", "user"},
	{"msantos", "Maria Santos", "Operations Division", "user1234", "user"},
}

var funds = []struct {
	division, name, description string
}{
	{"Finance Division", "GAA", "General Appropriations Act"},
	{"Finance Division", "Trust Fund", "Receipts held in trust for specific purposes"},
	{"Operations Division", "Income", "Internally generated income"},
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding users...")
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", u.username, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO users (username, full_name, division, password_hash, role, is_active)
			VALUES ($1, $2, $3, $4, $5, true)
			ON CONFLICT (username) DO NOTHING`,
			u.username, u.fullName, u.division, string(hash), u.role)
		if err != nil {
			log.Fatalf("Failed to insert user %s: %v", u.username, err)
		}
	}

	log.Println("Seeding sources of fund...")
	for _, f := range funds {
		_, err = tx.Exec(ctx, `
			INSERT INTO sources_of_fund (division, name, description)
			SELECT $1, $2, $3
			WHERE NOT EXISTS (
				SELECT 1 FROM sources_of_fund WHERE division = $1 AND name = $2
			)`,
			f.division, f.name, f.description)
		if err != nil {
			log.Fatalf("Failed to insert fund %s: %v", f.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed complete.")
}
