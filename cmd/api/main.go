package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eddostedson/eddo-budg/internal/config"
	"github.com/eddostedson/eddo-budg/internal/events"
	"github.com/eddostedson/eddo-budg/internal/handler"
	"github.com/eddostedson/eddo-budg/internal/logging"
	"github.com/eddostedson/eddo-budg/internal/middleware"
	"github.com/eddostedson/eddo-budg/internal/repository"
	"github.com/eddostedson/eddo-budg/internal/service"
	"github.com/eddostedson/eddo-budg/internal/service/fund"
	"github.com/eddostedson/eddo-budg/internal/service/transfer"
	"github.com/eddostedson/eddo-budg/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("eddo-budg-api", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	publisher := newPublisher(cfg)
	defer publisher.Close()

	userRepo := repository.NewUserRepository(db)
	recetteRepo := repository.NewRecetteRepository(db)
	transfertRepo := repository.NewTransfertRepository(db)
	compteRepo := repository.NewCompteRepository(db)
	fondRepo := repository.NewFondRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	recetteSvc := service.NewRecetteService(recetteRepo, db)
	transferSvc := transfer.NewService(transfertRepo, recetteRepo, db, publisher)
	fundSvc := fund.NewService(fondRepo, compteRepo, db)

	jwtExpiry := time.Duration(cfg.JWTExpiryH) * time.Hour
	authHandler := handler.NewAuthHandler(userRepo, cfg.JWTSecret, jwtExpiry)
	recetteHandler := handler.NewRecetteHandler(recetteSvc)
	transfertHandler := handler.NewTransfertHandler(transferSvc)
	compteHandler := handler.NewCompteHandler(compteRepo)
	fondHandler := handler.NewFondHandler(fundSvc)
	totauxHandler := handler.NewTotauxHandler(recetteRepo, compteRepo)
	healthHandler := handler.NewHealthHandler(db)

	authed := middleware.Auth(cfg.JWTSecret)
	idempotent := middleware.Idempotency(idempotencyRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health/live", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	mux.HandleFunc("POST /api/v1/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	mux.Handle("POST /api/v1/recettes", authed(http.HandlerFunc(recetteHandler.Create)))
	mux.Handle("GET /api/v1/recettes", authed(http.HandlerFunc(recetteHandler.List)))
	mux.Handle("GET /api/v1/recettes/{id}", authed(http.HandlerFunc(recetteHandler.Get)))
	mux.Handle("DELETE /api/v1/recettes/{id}", authed(http.HandlerFunc(recetteHandler.Delete)))
	mux.Handle("POST /api/v1/recettes/{id}/debits", authed(http.HandlerFunc(recetteHandler.Debit)))
	mux.Handle("PATCH /api/v1/recettes/{id}/certification", authed(http.HandlerFunc(recetteHandler.SetCertification)))

	mux.Handle("POST /api/v1/transferts", authed(idempotent(http.HandlerFunc(transfertHandler.Create))))
	mux.Handle("GET /api/v1/transferts", authed(http.HandlerFunc(transfertHandler.List)))
	mux.Handle("GET /api/v1/transferts/{id}", authed(http.HandlerFunc(transfertHandler.Get)))
	mux.Handle("DELETE /api/v1/transferts/{id}", authed(http.HandlerFunc(transfertHandler.Reverse)))

	mux.Handle("POST /api/v1/comptes", authed(http.HandlerFunc(compteHandler.Create)))
	mux.Handle("GET /api/v1/comptes", authed(http.HandlerFunc(compteHandler.List)))
	mux.Handle("PATCH /api/v1/comptes/{id}/exclusion", authed(http.HandlerFunc(compteHandler.SetExclusion)))

	mux.Handle("POST /api/v1/fonds", authed(http.HandlerFunc(fondHandler.Allocate)))
	mux.Handle("GET /api/v1/fonds", authed(http.HandlerFunc(fondHandler.ListAvailable)))
	mux.Handle("GET /api/v1/fonds/{id}", authed(http.HandlerFunc(fondHandler.Get)))
	mux.Handle("GET /api/v1/fonds/{id}/mouvements", authed(http.HandlerFunc(fondHandler.Movements)))
	mux.Handle("POST /api/v1/fonds/{id}/mouvements", authed(http.HandlerFunc(fondHandler.ApplyMovement)))

	mux.Handle("GET /api/v1/totaux", authed(http.HandlerFunc(totauxHandler.Get)))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	stop := make(chan struct{})
	go cleanIdempotencyCache(idempotencyRepo, stop)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	close(stop)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		slog.Info("event publishing disabled")
		return events.NopPublisher{}
	}

	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsExchange, cfg.EventsRoutingKey)
	if err != nil {
		slog.Warn("amqp unavailable, events disabled", "error", err)
		return events.NopPublisher{}
	}
	slog.Info("event publishing enabled", "exchange", cfg.EventsExchange)
	return p
}

func cleanIdempotencyCache(repo *repository.IdempotencyRepository, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := repo.CleanExpired(ctx)
			cancel()
			if err != nil {
				slog.Error("idempotency cache cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("idempotency cache cleaned", "removed", n)
			}
		}
	}
}
