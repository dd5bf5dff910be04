package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alextreichler/lessonshop/internal/config"
	"github.com/alextreichler/lessonshop/internal/lessonapi"
	"github.com/alextreichler/lessonshop/internal/lessonserver"
	"github.com/alextreichler/lessonshop/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	// Open applies the embedded migrations.
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// A fresh database starts with the default lessons.
	n, err := db.SeedLessons(context.Background(), lessonapi.DefaultLessons)
	if err != nil {
		slog.Error("Failed to seed lessons", "error", err)
		os.Exit(1)
	}
	if n > 0 {
		slog.Info("Seeded lessons", "count", n)
	}

	if err := os.MkdirAll(cfg.ImagesDir, 0o755); err != nil {
		slog.Error("Failed to create images directory", "dir", cfg.ImagesDir, "error", err)
		os.Exit(1)
	}

	h := &lessonserver.Handler{Store: db, ImagesDir: cfg.ImagesDir}
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Lessons API starting", "port", cfg.APIPort, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down lessons API...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Lessons API exited gracefully.")
}
