package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/smartclinic/clinic-portal/internal/session"
)

type RouterConfig struct {
	API       SchedulingAPI
	Upstream  Pinger
	Sessions  session.Store
	Redis     *redis.Client
	Env       string
	Version   string
	RateLimit int
	Logger    zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}

	// Health endpoints
	health := NewHealthHandler(cfg.Upstream, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Portal views and actions
	h := NewHandlers(cfg.API, cfg.Sessions, cfg.Logger)
	r.Get("/", h.Directory)
	r.Post("/doctors", h.SaveDoctor)
	r.Post("/doctors/{id}/delete", h.DeleteDoctor)
	r.Get("/dashboard", h.Dashboard)
	r.Post("/book/{id}", h.Book)

	return r
}
