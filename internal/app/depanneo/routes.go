package depanneo

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/depanneo/backend/internal/config"
	"github.com/depanneo/backend/internal/http-server/handlers/auth/login"
	"github.com/depanneo/backend/internal/http-server/handlers/auth/register"
	"github.com/depanneo/backend/internal/http-server/handlers/health"
	"github.com/depanneo/backend/internal/http-server/handlers/payment/webhook"
	"github.com/depanneo/backend/internal/http-server/handlers/request/cancel"
	"github.com/depanneo/backend/internal/http-server/handlers/request/complete"
	"github.com/depanneo/backend/internal/http-server/handlers/request/create"
	"github.com/depanneo/backend/internal/http-server/handlers/request/list"
	"github.com/depanneo/backend/internal/http-server/handlers/request/read"
	"github.com/depanneo/backend/internal/http-server/handlers/request/respond"
	"github.com/depanneo/backend/internal/http-server/handlers/request/responsestatus"
	"github.com/depanneo/backend/internal/http-server/handlers/request/selectrepairer"
	substatus "github.com/depanneo/backend/internal/http-server/handlers/subscription/status"
	"github.com/depanneo/backend/internal/http-server/mware"
	authservice "github.com/depanneo/backend/internal/services/auth"
	requestservice "github.com/depanneo/backend/internal/services/request"
	subscriptionservice "github.com/depanneo/backend/internal/services/subscription"
)

// RegisterRoutes mounts every endpoint of the service.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	jwtMaker mware.JWTMaker,
	authService *authservice.Service,
	requestService *requestservice.Service,
	subscriptionService *subscriptionservice.Service,
) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints.
		r.Post("/register", register.New(logger, authService))
		r.Post("/login", login.New(logger, authService))

		// Read endpoints: anonymous viewers are allowed and get the
		// masked projection.
		r.Group(func(r chi.Router) {
			r.Use(mware.OptionalAuthMiddleware(jwtMaker, authService, logger))
			r.Get("/requests", list.New(logger, requestService))
			r.Get("/requests/{id}", read.New(logger, requestService))
		})

		// Lifecycle endpoints: authentication required.
		r.Group(func(r chi.Router) {
			r.Use(mware.JWTMiddleware(jwtMaker, authService, logger))
			r.Use(mware.RateLimitMiddleware(logger))
			r.Post("/requests", create.New(logger, requestService))
			r.Get("/requests/mine", list.Mine(logger, requestService))
			r.Post("/requests/{id}/cancel", cancel.New(logger, requestService))
			r.Post("/requests/{id}/complete", complete.New(logger, requestService))
			r.Post("/requests/{id}/responses", respond.New(logger, requestService))
			r.Post("/requests/{id}/select", selectrepairer.New(logger, requestService))
			r.Post("/requests/{id}/responses/{responseID}/status", responsestatus.New(logger, requestService))
			r.Get("/subscription/status", substatus.New(logger, subscriptionService))
		})

		// Webhook endpoint, authenticated by shared secret.
		r.Post("/payments/webhook", webhook.New(logger, subscriptionService, cfg.WebhookSecret))
	})

	r.Get("/health", health.New())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
