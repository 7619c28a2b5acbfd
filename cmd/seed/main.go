package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"

	"roster/internal/config"
	"roster/internal/domain/models"
	"roster/internal/repository/postgres"
	"roster/internal/schema"
	"roster/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before setup (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't import anything")
	importFile := flag.String("import", "", "Roster dump file to import (replaces the whole collection)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("🏗️  Setting up roster schema (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly || *importFile == "" {
		log.Println("✅ Setup complete")
		return
	}

	log.Printf("📥 Importing roster from %s...", *importFile)
	data, err := os.ReadFile(*importFile)
	if err != nil {
		log.Fatalf("Failed to read roster file: %v", err)
	}
	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Fatalf("Failed to parse roster file: %v", err)
	}

	repo := postgres.NewPeopleRepository(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	})
	personConverter := schema.NewPersonConverter(logger)
	rosterConverter := schema.NewRosterConverter(personConverter, logger)
	rosterService := service.NewRosterService(repo, personConverter, rosterConverter, logger)

	if err := rosterService.ImportAll(ctx, &env); err != nil {
		log.Fatalf("Failed to import roster: %v", err)
	}
	log.Println("✅ Roster imported")
}

func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	createPeople := `
		CREATE TABLE IF NOT EXISTS ` + tables.People + ` (
			wmbid TEXT PRIMARY KEY,
			data JSONB NOT NULL,
			version INTEGER NOT NULL DEFAULT 3
		)
	`
	_, err := pool.Exec(ctx, createPeople)
	return err
}

func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	dropSQL := "DROP TABLE IF EXISTS " + tables.People + " CASCADE"
	if _, err := pool.Exec(ctx, dropSQL); err != nil {
		return err
	}
	log.Printf("  ✓ Dropped %s", tables.People)
	return nil
}
