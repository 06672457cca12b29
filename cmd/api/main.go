package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogging/internal/cache"
	"blogging/internal/config"
	"blogging/internal/database"
	"blogging/internal/logger"
	"blogging/internal/server"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lgr := logger.New(cfg.LogLevel, cfg.LogFormat)
	logger.SetDefault(lgr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		lgr.Error("Failed to connect to database", "error", err.Error())
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		cancel()
		lgr.Error("Failed to run migrations", "error", err.Error())
		os.Exit(1)
	}
	lgr.Info("Connected to database")

	rdb := cache.New(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, lgr)
	cancel()

	srv := server.New(cfg, lgr, server.Deps{DB: db, Cache: rdb}).HTTPServer()

	go func() {
		lgr.Info("API listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lgr.Error("Failed to start server", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lgr.Info("Shutting down API...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lgr.Error("Server forced to shutdown", "error", err.Error())
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			lgr.Warn("Failed to close Redis", "error", err.Error())
		}
	}
	db.Close()

	lgr.Info("API stopped")
}
