// Command seed populates the database with demo profiles and simulated
// transaction history, then rebuilds aggregated profiles from that history.
//
// Usage:
//
//	DATABASE_URL=postgres://... go run ./cmd/seed
//	go run ./cmd/seed -count 100 -ratio 0.3 -seed 42
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/mbd888/fraudguard/internal/profile"
	"github.com/mbd888/fraudguard/internal/simulator"
)

func main() {
	count := flag.Int("count", 50, "transactions to generate per demo user")
	ratio := flag.Float64("ratio", 0.2, "fraction of generated transactions that are fraudulent")
	seed := flag.Int64("seed", 0, "simulator seed (0 uses the current time)")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()

	profiles := profile.NewPostgresStore(db)
	txs := profile.NewPostgresTransactionStore(db)
	if err := profiles.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate profiles: %v", err)
	}
	if err := txs.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate transactions: %v", err)
	}

	sim := simulator.New(*seed)

	for _, p := range profile.SeedProfiles() {
		if err := profiles.Put(ctx, p); err != nil {
			log.Fatalf("Failed to seed profile %s: %v", p.UserID, err)
		}

		history := sim.History(p, *count, *ratio)
		if err := txs.RecordBatch(ctx, history); err != nil {
			log.Fatalf("Failed to seed history for %s: %v", p.UserID, err)
		}

		fraud := 0
		for _, tx := range history {
			if tx.IsFraud {
				fraud++
			}
		}
		log.Printf("Seeded %s: %d transactions (%d fraudulent)", p.UserID, len(history), fraud)
	}

	n, err := profile.NewAggregator(txs, profiles).Rebuild(ctx)
	if err != nil {
		log.Fatalf("Failed to rebuild profiles from history: %v", err)
	}
	log.Printf("Rebuilt %d profile(s) from generated history", n)
}
