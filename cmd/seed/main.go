package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/loganomaly/rcaservice/internal/config"
	"github.com/loganomaly/rcaservice/internal/db"
	"github.com/loganomaly/rcaservice/internal/models"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Connect to database and run migrations first
	if err := db.Connect(cfg.DatabaseURI); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Seeding sample RCA results...")

	score := 0.92
	zScore := 3.4
	ratio := 0.12
	now := time.Now().UTC()

	samples := []models.RcaResult{
		{
			Filename: "payment-gateway.log",
			AppID:    "payments",
			Score:    &score,
			ZScore:   &zScore,
			Status:   "anomalous",
			Events: mustJSON([]map[string]any{
				{"level": "ERROR", "msg": "connection pool exhausted", "source": "pgbouncer"},
				{"level": "FATAL", "msg": "transaction aborted", "source": "payment-worker"},
			}),
			Logdate: now.Add(-2 * time.Hour),
		},
		{
			Filename:        "ingest-node-03.log",
			AppID:           "ingest",
			UndetectedRatio: &ratio,
			Status:          "anomalous",
			Events: mustJSON([]string{
				"disk usage at 97% on /var/lib/ingest",
				"write failed: no space left on device",
			}),
			Logdate: now.Add(-30 * time.Minute),
		},
		{
			Filename: "api-frontend.log",
			AppID:    "frontend",
			Status:   "pending",
			Logdate:  now,
		},
	}

	for _, sample := range samples {
		if err := db.DB.Create(&sample).Error; err != nil {
			log.Printf("Failed to seed %s: %v", sample.Filename, err)
			continue
		}
		log.Printf("Seeded rca result: %s (id=%d)", sample.Filename, sample.ID)
	}

	log.Println("Seeding completed")
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("Failed to marshal seed events: %v", err)
	}
	return data
}
