package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/cliptide/backend/internal/config"
	"github.com/cliptide/backend/internal/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus()
	default:
		fmt.Println("Usage: migrate [up|status]")
		fmt.Println("  up     - Run auto-migration against the configured database")
		fmt.Println("  status - Check database connectivity")
		os.Exit(1)
	}
}

func connect() *gorm.DB {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	db, err := database.Connect(database.Config{URL: cfg.DatabaseURL, Verbose: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

func runMigrationsUp() {
	db := connect()
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed")
}

func showStatus() {
	db := connect()
	defer database.Close(db)

	if err := database.Health(db); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	log.Println("Database reachable")
}
