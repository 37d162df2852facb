package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/docuforge/docuforge/config"
	"github.com/docuforge/docuforge/pkg/database"
	"github.com/docuforge/docuforge/pkg/store/postgres"
	"github.com/docuforge/docuforge/pkg/testdata"
)

// Seeds the database with fake users and documents for local development.
// Every generated account uses the password "docuforge-dev".
func main() {
	userCount := flag.Int("users", 25, "number of users to create")
	docsPerUser := flag.Int("docs", 4, "documents per user")
	premiumShare := flag.Float64("premium", 0.3, "share of users on the premium plan")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.NewClient(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.Pool); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	users := postgres.NewUserRepository(db.Pool)
	documents := postgres.NewDocumentRepository(db.Pool)
	generator := testdata.NewGenerator(*seed)

	created := 0
	docsCreated := 0
	for i := 0; i < *userCount; i++ {
		u, err := generator.User(*premiumShare)
		if err != nil {
			log.Fatalf("❌ Failed to generate user: %v", err)
		}
		if err := users.Create(ctx, u); err != nil {
			log.Printf("⚠️ Skipping user %s: %v", u.Email, err)
			continue
		}
		created++

		for j := 0; j < *docsPerUser; j++ {
			d, err := generator.Document(u.ID)
			if err != nil {
				log.Fatalf("❌ Failed to generate document: %v", err)
			}
			if err := documents.Create(ctx, d); err != nil {
				log.Printf("⚠️ Skipping document %q: %v", d.Title, err)
				continue
			}
			docsCreated++
		}
	}

	log.Printf("✅ Seeded %d users and %d documents", created, docsCreated)
	log.Printf("🔑 All accounts use the password \"docuforge-dev\"")
}
