package main

import (
	"context"
	"log"
	"os"
	"pedestrian-nav-service/internal/adapters/cache"
	"pedestrian-nav-service/internal/platform/db"
	"pedestrian-nav-service/internal/platform/obs"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// dbtool prepares the Postgres route and geocode cache tables.
func main() {
	obs.InitLogging()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Initializing cache schema...")
	if err := cache.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}
