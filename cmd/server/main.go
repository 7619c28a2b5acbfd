package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"roster/internal/config"
	"roster/internal/domain/repositories"
	"roster/internal/handler"
	"roster/internal/middleware"
	"roster/internal/repository/memory"
	"roster/internal/repository/postgres"
	"roster/internal/schema"
	"roster/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Pick the store backend: Postgres when configured, in-memory otherwise
	var peopleRepo repositories.PeopleRepository
	if cfg.DatabaseURL != "" {
		ctx := context.Background()
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		peopleRepo = postgres.NewPeopleRepository(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		})
		logger.Info("database connected")
	} else {
		peopleRepo = memory.NewPeopleRepository()
		logger.Warn("no DATABASE_URL configured, using in-memory store")
	}

	// Converters
	personConverter := schema.NewPersonConverter(logger)
	rosterConverter := schema.NewRosterConverter(personConverter, logger)

	// Services
	peopleService := service.NewPeopleService(peopleRepo, logger)
	statusService := service.NewStatusService(peopleRepo, logger)
	rosterService := service.NewRosterService(peopleRepo, personConverter, rosterConverter, logger)

	// Handlers
	peopleHandler := handler.NewPeopleHandler(peopleService, statusService, logger)
	rosterHandler := handler.NewRosterHandler(rosterService, logger)

	logger.Info("services initialized")

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", peopleHandler.HealthCheck)

	// Record routes
	mux.HandleFunc("GET /api/people", peopleHandler.ListIDs)
	mux.HandleFunc("POST /api/people", peopleHandler.Create)
	mux.HandleFunc("GET /api/people/{id}", peopleHandler.Get)
	mux.HandleFunc("DELETE /api/people/{id}", peopleHandler.Delete)

	// Path-addressed routes
	mux.HandleFunc("GET /api/people/{id}/key/{path...}", peopleHandler.GetKey)
	mux.HandleFunc("PUT /api/people/{id}/key/{path...}", peopleHandler.SetKey)
	mux.HandleFunc("DELETE /api/people/{id}/key/{path...}", peopleHandler.DeleteKey)

	// Status history
	mux.HandleFunc("POST /api/people/{id}/status", peopleHandler.AppendStatus)

	// Whole-roster dump and import
	mux.HandleFunc("GET /api/roster", rosterHandler.Export)
	mux.HandleFunc("PUT /api/roster", rosterHandler.Import)

	// Middleware chain, innermost first
	var root http.Handler = mux
	root = middleware.RequestLogging(logger)(root)
	root = middleware.Recovery(logger)(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
