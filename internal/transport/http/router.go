// http собирает HTTP API Paleta: chi-роутер, мидлвары, пробы и /metrics.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/paleta/internal/metrics"
	"github.com/pribylovaa/paleta/internal/transport/http/handlers"
	"github.com/pribylovaa/paleta/internal/transport/http/middleware"
)

// BasePath — префикс версии REST API.
const BasePath = "/api/v1"

// Service — всё, что роутер требует от сервисного слоя.
type Service interface {
	handlers.Service
	middleware.Verifier
	Ready(ctx context.Context) error
}

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	Metrics *metrics.Metrics
	// Gatherer — источник для /metrics; nil отключает эндпойнт.
	Gatherer prometheus.Gatherer
	// Ready — флаг готовности процесса; nil означает "готов всегда".
	Ready *atomic.Bool
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Внешний -> внутренний. RequestID до Logging, чтобы логгер получил request_id;
	// Recover внутри Logging, чтобы 500 после паники попал в лог запроса.
	root.Use(
		middleware.RequestID(),
		middleware.Logging(opts.Logger),
		middleware.Recover(),
		middleware.Metrics(opts.Metrics),
	)

	root.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil && !opts.Ready.Load() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := svc.Ready(ctx); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Gatherer != nil {
		root.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	api := chi.NewRouter()
	if opts.Timeout > 0 {
		api.Use(middleware.Timeout(opts.Timeout))
	}
	registerRoutes(api, handlers.New(svc), middleware.RequireUser(svc))
	root.Mount(BasePath, api)

	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, auth middleware.Middleware) {
	// auth
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
	r.Post("/auth/logout", h.Logout)
	r.Post("/auth/password/forgot", h.ForgotPassword)
	r.Post("/auth/password/reset", h.ResetPassword)

	// Защищённые маршруты.
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Get("/users/me", h.Me)

		r.Get("/palettes", h.ListPalettes)
		r.Post("/palettes", h.CreatePalette)
		r.Patch("/palettes/{id}", h.UpdatePalette)
		r.Delete("/palettes/{id}", h.DeletePalette)
	})
}
