package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-waba-webhooks/internal/config"
	"github.com/go-waba-webhooks/internal/transport/http/handler"
	appmiddleware "github.com/go-waba-webhooks/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// background work of the rate limiter.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", appmiddleware.SignatureHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	webhookRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.WebhookRateLimit), cfg.WebhookRateBurst)

	healthH := handler.NewHealthHandler()
	webhookH := handler.NewWebhookHandler(deps.Dispatcher, cfg.WebhookVerifyToken)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Route("/webhook", func(r chi.Router) {
			r.Use(webhookRL.Limit)
			r.Get("/", webhookH.Verify)
			r.With(appmiddleware.Signature(cfg.AppSecret)).Post("/", webhookH.Receive)
		})
	})

	return r
}
