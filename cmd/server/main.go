// Command server runs the catalog backend HTTP API.
//
// Startup order: load .env (optional), load config, configure logging and
// tracing, open the database, wire routes, then serve until SIGINT/SIGTERM
// with a graceful drain.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-catalog-backend/internal/config"
	httpapi "github.com/go-catalog-backend/internal/http"
	"github.com/go-catalog-backend/internal/mail"
	"github.com/go-catalog-backend/internal/observability"
	"github.com/go-catalog-backend/internal/repo"
	"github.com/go-catalog-backend/internal/sysutil"
	"github.com/go-catalog-backend/internal/verification"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// @title        Catalog Backend API
// @version      1.0
// @description  Product catalog and verified contact submission API.
// @BasePath     /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, reading from environment")
	}

	cfg := config.MustLoad()

	// Logging
	zerolog.TimeFieldFormat = time.RFC3339
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	// Tracing
	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	// Database
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	// Outgoing mail
	mailer, err := mail.NewSMTPMailer(cfg.Mail)
	if err != nil {
		log.Fatal().Err(err).Msg("smtp mailer setup failed")
	}

	// Pending verification store (in-memory, TTL-bounded)
	pendingStore := verification.NewStore(cfg.Verification.TTL)

	// HTTP
	r := gin.New()
	httpapi.RegisterRoutes(r, db, pendingStore, mailer, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	log.Info().Msg("server stopped")
}
