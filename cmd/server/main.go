package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/internal/config"
	"github.com/diewo77/go-crm/internal/db"
	"github.com/diewo77/go-crm/internal/policy"
	"github.com/diewo77/go-crm/view"
	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg := config.Load()
	setupLogger(cfg.App)

	dbConn, err := db.Connect(cfg.Database)
	if err != nil {
		fatal("failed to connect to database", err)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn, cfg); err != nil {
			fatal("migration failed", err)
		}
		slog.Info("migrations completed")
		return
	}
	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			fatal("seeding failed", err)
		}
		slog.Info("seeding completed")
		return
	}

	if err := db.Migrate(dbConn, cfg); err != nil {
		fatal("migration failed", err)
	}
	if cfg.App.Seed {
		if err := db.Seed(dbConn); err != nil {
			fatal("seeding failed", err)
		}
	}

	if cfg.App.SessionSecret == "" && !cfg.App.Dev {
		slog.Warn("SESSION_SECRET is not set; sessions use the development key")
	}
	auth.SetSecret(cfg.App.SessionSecret)
	view.SetDevMode(cfg.App.Dev)

	routerCfg := policy.NewRouterConfig(dbConn, cfg.Mail, nil)
	users := routerCfg.Services.Users
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		return users.Exists(ctx, uid)
	})
	if !cfg.Mail.RelayEnabled() {
		slog.Info("SMTP relay disabled; sent mail is stored locally only")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(dbConn, routerCfg),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	slog.Info("server stopped gracefully")
}

// setupLogger installs the default slog logger: text for development, JSON otherwise.
func setupLogger(app config.AppConfig) {
	opts := &slog.HandlerOptions{Level: app.LogLevel}
	var h slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if app.Dev {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
