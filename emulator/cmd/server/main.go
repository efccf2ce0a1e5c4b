// Package main runs the Trading212/YNAB API emulator server for local
// development and testing.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/emulator/internal/api"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/emulator/internal/store"
)

const (
	defaultPort   = "8080"
	defaultDBPath = "./data/emulator.db"
)

func main() {
	// Setup structured JSON logging.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Get configuration from environment variables.
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	// An empty token accepts any non-empty Authorization header.
	token := os.Getenv("API_TOKEN")

	// Initialize store.
	st, err := store.New(dbPath)
	if err != nil {
		slog.Error("failed to initialize store", "error", err, "db_path", dbPath)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	seeded, err := st.SeedDemo()
	if err != nil {
		slog.Error("failed to seed demo data", "error", err)
		os.Exit(1)
	}
	slog.Info("database initialized", "db_path", dbPath, "seeded_demo_data", seeded)

	r := api.NewRouter(st, token)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	slog.Info("starting API emulator", "addr", addr, "port", port)

	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("shutting down server")
		if err := server.Close(); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
