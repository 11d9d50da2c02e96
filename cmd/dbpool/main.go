package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/guileen/dbpool/admin"
	"github.com/guileen/dbpool/driver"
	"github.com/guileen/dbpool/logger"
	"github.com/guileen/dbpool/pool"
)

func main() {
	startTime := time.Now()
	logger.Info("Starting dbpool server", "startup_time", startTime.Format(time.RFC3339))

	cfg := pool.LoadConfig()
	if len(os.Args) > 1 && os.Args[1][0] != '-' {
		// First argument overrides the backend URL from the environment
		cfg.URL = os.Args[1]
	}
	if cfg.URL == "" {
		logger.Error("No backend URL configured", "hint", "set DBPOOL_URL or pass a URL argument")
		log.Fatal("no backend URL configured")
	}

	logger.Info("Creating connection pool",
		"max_active", cfg.MaxActiveConnections,
		"max_idle", cfg.MaxIdleConnections,
		"ping_enabled", cfg.PingEnabled)
	p := pool.New(driver.NewPgxProvider(), cfg)

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	adminHandler := admin.NewHandler(p)
	adminHandler.RegisterRoutes(r)

	port := ":8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = ":" + envPort
	}

	server := &http.Server{
		Addr:    port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Admin HTTP server listening", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed to start", logger.ErrorField(err), "port", port)
			log.Fatalf("HTTP server failed to start: %v", err)
		}
	}()

	logger.Info("dbpool initialization complete", "init_duration", time.Since(startTime).String())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownStart := time.Now()
	logger.Info("Shutting down dbpool server...")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("HTTP server shutdown failed", logger.ErrorField(err))
		log.Fatalf("HTTP server shutdown failed: %v", err)
	}

	// Tear down every pooled connection before exiting.
	p.ForceCloseAll(context.Background())
	logger.Info("dbpool shutdown complete", "shutdown_duration", time.Since(shutdownStart).String())
}
