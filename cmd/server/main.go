// Command server runs the certificate backend HTTP API.
//
// Startup order matters: configuration, logging, tracing, database, external
// collaborators (blob store, SMTP relay, SMS gateway), then the router and a
// gracefully stoppable HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-certificate-backend/internal/cert"
	"github.com/tbourn/go-certificate-backend/internal/config"
	httpapi "github.com/tbourn/go-certificate-backend/internal/http"
	"github.com/tbourn/go-certificate-backend/internal/notify"
	"github.com/tbourn/go-certificate-backend/internal/observability"
	"github.com/tbourn/go-certificate-backend/internal/repo"
	"github.com/tbourn/go-certificate-backend/internal/services"
	"github.com/tbourn/go-certificate-backend/internal/storage"
	"github.com/tbourn/go-certificate-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Optional .env for local development; real deployments use the environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database failed")
	}

	store, err := storage.NewMinioStore(ctx, cfg.Blob)
	if err != nil {
		log.Fatal().Err(err).Str("endpoint", cfg.Blob.Endpoint).Msg("blob store unavailable")
	}

	fulfillSvc := services.NewFulfillmentService(
		db,
		cert.NewPDFRenderer(cfg.Cert.AssetDir, cfg.Cert.Issuer),
		store,
		notify.NewEmailSender(cfg.SMTP),
		notify.NewSMSSender(cfg.SMS),
	)
	fulfillSvc.LinkTTL = cfg.Blob.LinkTTL

	r := gin.New()
	httpapi.RegisterRoutes(r, db, fulfillSvc, cfg)

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
		log.Info().Str("version", version).Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
