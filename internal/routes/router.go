package routes

import (
	"net/http"

	"infinite-experiment/bouncer/internal/api"
	"infinite-experiment/bouncer/internal/common"
	"infinite-experiment/bouncer/internal/logging"
	"infinite-experiment/bouncer/internal/metrics"
	"infinite-experiment/bouncer/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

type Options struct {
	AllowedOrigins []string
	Signer         *common.TokenSigner
	Metrics        *metrics.MetricsRegistry
}

// RegisterRoutes builds the ops HTTP router.
func RegisterRoutes(deps *api.Dependencies, opts Options) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(opts.Metrics))
	r.Use(middleware.RateLimitMiddleware(common.NewKeyedLimiter(rate.Limit(5), 20, "127.0.0.1", "::1")))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	handlers := api.NewHandlers(deps)

	r.Get("/healthCheck", handlers.HealthCheckHandler())
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(opts.Signer))
		r.Get("/records/{userID}", handlers.RecordHandler())
		r.Get("/stats", handlers.StatsHandler())
	})

	logging.Info("Router initialized", "origins", origins)
	return r
}
