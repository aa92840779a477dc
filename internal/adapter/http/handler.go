package httpadapter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"socialbooster/internal/config/configs"
	"socialbooster/internal/core/port"
)

// Pinger reports whether the backing store is reachable. *sql.DB
// satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// It holds the campaign use case and a logger for structured logging.
// Routes are registered on a chi.Router.
type Handler struct {
	svc    port.CampaignUseCase
	db     Pinger
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes and middleware configured.
func NewHandler(svc port.CampaignUseCase, db Pinger, cfg configs.HTTP, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, db: db, logger: logger}
	r := chi.NewRouter()

	r.Use(requestIDHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(cfg))
	r.Use(allowedHosts(cfg.AllowedHosts))
	r.Use(middleware.StripSlashes)

	r.Get("/healthz", h.handleHealth)

	r.Route("/api/campaigns", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/stats", h.handleStats)
		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Patch("/", h.handlePatch)
			r.Delete("/", h.handleDelete)
			r.Get("/convert_budget", h.handleConvertBudget)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func corsHandler(cfg configs.HTTP) func(http.Handler) http.Handler {
	origins := cfg.CORSOrigins
	if cfg.CORSAllowAll {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error("health check failed", slog.Any("error", err))
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
