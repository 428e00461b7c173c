package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/adcrafted/adspace-service/pkg/config"
)

func main() {
	var (
		command = flag.String("cmd", "", "Command to run: up, down, redo, status, version, create")
		name    = flag.String("name", "", "Name for create command")
		migType = flag.String("type", "sql", "Migration type: sql or go")
		verbose = flag.Bool("v", false, "Verbose output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "AdSpace Service Migration Tool (Goose-based)\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  up       - Run all pending migrations\n")
		fmt.Fprintf(os.Stderr, "  down     - Rollback last migration\n")
		fmt.Fprintf(os.Stderr, "  redo     - Redo last migration (down then up)\n")
		fmt.Fprintf(os.Stderr, "  status   - Show migration status\n")
		fmt.Fprintf(os.Stderr, "  version  - Show current migration version\n")
		fmt.Fprintf(os.Stderr, "  create   - Create new migration (requires -name)\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -cmd=up\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -cmd=create -name=add_items_index\n", os.Args[0])
	}

	flag.Parse()

	if *command == "" {
		flag.Usage()
		os.Exit(1)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		dbURL = buildDatabaseURL(cfg)
	}

	if *verbose {
		log.Printf("Connecting to database...")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	goose.SetBaseFS(nil)
	goose.SetDialect("postgres")

	if *verbose {
		goose.SetVerbose(true)
	}

	migrationsDir := "migrations"

	switch *command {
	case "up":
		if err := goose.Up(db, migrationsDir); err != nil {
			log.Fatalf("Failed to run migrations up: %v", err)
		}
		fmt.Println("Migrations completed successfully")

	case "down":
		if err := goose.Down(db, migrationsDir); err != nil {
			log.Fatalf("Failed to run migration down: %v", err)
		}
		fmt.Println("Migration rolled back successfully")

	case "redo":
		if err := goose.Redo(db, migrationsDir); err != nil {
			log.Fatalf("Failed to redo migration: %v", err)
		}
		fmt.Println("Migration redone successfully")

	case "status":
		if err := goose.Status(db, migrationsDir); err != nil {
			log.Fatalf("Failed to get migration status: %v", err)
		}

	case "version":
		version, err := goose.GetDBVersion(db)
		if err != nil {
			log.Fatalf("Failed to get database version: %v", err)
		}
		fmt.Printf("Current database version: %d\n", version)

	case "create":
		if *name == "" {
			log.Fatal("Migration name is required for create command")
		}
		if err := goose.Create(db, migrationsDir, *name, *migType); err != nil {
			log.Fatalf("Failed to create migration: %v", err)
		}
		fmt.Printf("Created %s migration: %s\n", *migType, *name)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		flag.Usage()
		os.Exit(1)
	}
}

// buildDatabaseURL constructs the database URL from configuration
func buildDatabaseURL(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}
