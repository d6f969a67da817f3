package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/AssetDocs/legacylocker/config"
	"github.com/AssetDocs/legacylocker/pkg/database"
)

const usage = `
Legacy Locker - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run all SQL migrations
  status      Show database connection status

Flags:
  -migrations string   Path to migrations directory (default "migrations")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.LoadConfig()
	database.Connect(cfg)

	switch flag.Arg(0) {
	case "up":
		if err := database.ApplyRawMigrations(*migrationsDir); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations applied")
	case "status":
		if err := database.HealthCheck(); err != nil {
			log.Fatalf("Database unreachable: %v", err)
		}
		log.Println("Database connection OK")
	default:
		flag.Usage()
		os.Exit(1)
	}
}
