package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/therapyassist/dashboard-go/internal/config"
	"github.com/therapyassist/dashboard-go/internal/jobs"
	"github.com/therapyassist/dashboard-go/internal/mockapi"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.LoadMock()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	backend := mockapi.New(mockapi.Config{
		JWTSecret:              cfg.JWTSecret,
		AdminAccessCode:        cfg.AdminAccessCode,
		TokenTTL:               cfg.TokenTTL(),
		LoginAttemptsPerMinute: cfg.LoginAttemptsPerMinute,
	})

	if cfg.SeedDemo {
		if _, err := backend.SeedUser("Demo User", "demo", "demo123"); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo user")
		}
		backend.SeedVRUser("Demo Headset", "headset@example.com")
		log.Info().Str("username", "demo").Msg("seeded demo users")
	}

	cleanupJob := jobs.NewCleanupJob(config.MockCleanupInterval,
		jobs.CleanupTask{Name: "admin credentials", Purge: backend.PurgeExpiredAdmins},
	)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	routes := backend.Routes()
	handler := chimiddleware.Timeout(config.ServerRequestTimeout)(routes)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("prefix", mockapi.APIPrefix).Msg("starting mock backend")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
