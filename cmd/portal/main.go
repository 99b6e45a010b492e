package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartclinic/clinic-portal/internal/config"
	"github.com/smartclinic/clinic-portal/internal/scheduling"
	"github.com/smartclinic/clinic-portal/internal/session"
	"github.com/smartclinic/clinic-portal/internal/web"
)

const version = "0.1.0"

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "clinic-portal").Logger()
	log.Info().Msg("portal starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	if cfg.Env == "dev" {
		log = log.Level(zerolog.DebugLevel)
	}
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Str("scheduling_api", cfg.SchedulingAPIURL).Msg("configured")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Redis (ambient session store)
	rdb, err := session.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	sessions := session.NewRedisStore(rdb, cfg.SessionTTL)
	client := scheduling.NewClient(cfg.SchedulingAPIURL, cfg.UpstreamTimeout)

	router := web.NewRouter(web.RouterConfig{
		API:       client,
		Upstream:  client,
		Sessions:  sessions,
		Redis:     rdb,
		Env:       cfg.Env,
		Version:   version,
		RateLimit: cfg.RateLimit,
		Logger:    log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down portal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
