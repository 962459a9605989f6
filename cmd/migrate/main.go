package main

import (
	"flag"
	"log"
	"os"

	"github.com/pageza/platefeed/backend/config"
	"github.com/pageza/platefeed/backend/internal/database"
)

func main() {
	migrationsDir := flag.String("dir", "migrations", "Directory containing SQL migration files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewGorm(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if _, err := os.Stat(*migrationsDir); os.IsNotExist(err) {
		log.Printf("No migrations directory at %s, applying schema directly", *migrationsDir)
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
		log.Println("Schema applied")
		return
	}

	if err := database.RunMigrations(db, *migrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("All migrations applied")
}
