// Package main is the entry point for the GEM tuning HTTP server.
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/config"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/database"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/email"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/optimizer"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/repository"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	log.Printf("Connected to %s database", db.Driver)

	emailService := email.New(&cfg.Email)
	log.Printf("Email service initialized with %s provider", cfg.Email.Provider)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	deps := &server.Dependencies{
		Config:       cfg,
		DB:           db,
		UserRepo:     repository.NewSQLUserRepository(db),
		ProfileRepo:  repository.NewSQLProfileRepository(db),
		RunRepo:      repository.NewSQLRunRepository(db),
		EmailService: emailService,
		Engine:       optimizer.New(optimizer.WithLogger(logger)),
	}

	srv := server.New(deps)

	log.Printf("Starting server on port %s", cfg.Server.Port)
	if err := srv.Run(":" + cfg.Server.Port); err != nil {
		log.Printf("Failed to start server: %v", err)
		panic(err) // panic rather than log.Fatalf so the deferred close runs
	}
}
