package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alumniconnect/internal/auth"
	"alumniconnect/internal/config"
	"alumniconnect/internal/db"
	"alumniconnect/internal/directory"
	"alumniconnect/internal/donations"
	"alumniconnect/internal/events"
	"alumniconnect/internal/httpserver"
	"alumniconnect/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel)

	dbConn, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()

	if err := db.RunMigrations(ctx, dbConn, "sql"); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	accountStore := auth.NewPostgresStore(dbConn)
	if cfg.SeedPath != "" {
		if err := auth.SeedFromFile(ctx, accountStore, cfg.SeedPath); err != nil {
			log.Fatalf("seed accounts: %v", err)
		}
	}
	gate := auth.NewGate(accountStore, cfg.JWTSecret)

	eventStore := events.NewPostgresStore(dbConn)
	donationStore := donations.NewPostgresStore(dbConn)
	directoryStore := directory.NewPostgresStore(dbConn)

	handler := httpserver.NewRouter(logger, gate, eventStore, donationStore, directoryStore)
	server := httpserver.New(cfg.HTTPAddr, handler, logger)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
