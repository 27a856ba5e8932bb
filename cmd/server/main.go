package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/diewo77/go-chantiers/internal/config"
	"github.com/diewo77/go-chantiers/internal/db"
	"github.com/diewo77/go-chantiers/internal/logging"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	log := logging.New(cfg.App.LogLevel, cfg.App.LogFormat)
	logging.SetDefault(log)
	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		log.Warn("JWT_SECRET is not set, tokens are signed with the development key")
	}

	conn, err := db.Connect(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(conn, cfg.Database); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		log.Info("migrations completed successfully")
		return
	}
	if *seedOnlyFlag {
		if err := db.Seed(conn); err != nil {
			log.WithError(err).Fatal("seeding failed")
		}
		log.Info("seeding completed successfully")
		return
	}

	if err := db.Migrate(conn, cfg.Database); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	if cfg.Database.Seed {
		if err := db.Seed(conn); err != nil {
			log.WithError(err).Fatal("seeding failed")
		}
	}

	app := NewApp(cfg, conn, log, Outbound{})
	stop := make(chan struct{})
	app.login.StartCleanup(time.Minute, stop)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).WithField("dev", cfg.App.Dev).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped gracefully")
}
