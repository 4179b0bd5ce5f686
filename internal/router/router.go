package router

import (
	"net/http"

	"serverrewards/internal/handler"
	"serverrewards/internal/metrics"
	"serverrewards/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	PlayerHandler  *handler.PlayerHandler
	PointsHandler  *handler.PointsHandler
	AdminHandler   *handler.AdminHandler
	AuthMiddleware func(http.Handler) http.Handler
	RateLimiter    *middleware.RateLimiter
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(metrics.InstrumentHandler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	r.Handle("/metrics", metrics.Handler())
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
		r.Get("/api/v1/ready", cfg.Handler.Ready)
	}

	// AUTHENTICATED routes
	r.Group(func(r chi.Router) {
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if cfg.PlayerHandler != nil {
				r.Route("/players/{user_id}", func(r chi.Router) {
					r.Post("/connect", cfg.PlayerHandler.Connect)
					r.Post("/disconnect", cfg.PlayerHandler.Disconnect)
					r.Group(func(r chi.Router) {
						if cfg.RateLimiter != nil {
							r.Use(cfg.RateLimiter.Middleware)
						}
						r.Post("/commands", cfg.PlayerHandler.Command)
					})
				})
			}

			if cfg.PointsHandler != nil {
				r.Route("/points/{user_id}", func(r chi.Router) {
					r.Get("/", cfg.PointsHandler.Get)
					r.Post("/add", cfg.PointsHandler.Add)
					r.Post("/take", cfg.PointsHandler.Take)
				})
			}

			if cfg.AdminHandler != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Post("/points", cfg.AdminHandler.Points)
					r.Get("/stats", cfg.AdminHandler.GetStats)
					r.Post("/save", cfg.AdminHandler.Save)
					r.Post("/migrate", cfg.AdminHandler.Migrate)

					r.Route("/sellable/{shortname}", func(r chi.Router) {
						r.Get("/", cfg.AdminHandler.GetSellable)
						r.Put("/price", cfg.AdminHandler.SetSellPrice)
						r.Put("/multiplier", cfg.AdminHandler.SetSkinMultiplier)
					})

					r.Get("/npcs", cfg.AdminHandler.ListNpcs)
					r.Route("/npcs/{npc_id}", func(r chi.Router) {
						r.Post("/", cfg.AdminHandler.AddNpc)
						r.Delete("/", cfg.AdminHandler.RemoveNpc)
						r.Put("/name", cfg.AdminHandler.SetNpcName)
						r.Post("/navigation/{category}", cfg.AdminHandler.ToggleNpcNavigation)
						r.Post("/custom", cfg.AdminHandler.ToggleNpcCustom)
					})
				})
			}
		})
	})

	return r
}
