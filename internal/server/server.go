// Package server assembles the HTTP surface: Connect services, health and
// metrics endpoints, CORS and request logging.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/idempotency"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/pkg/api"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Expenses api.ExpenseServiceHandler
	Users    api.UserServiceHandler
	Groups   api.GroupServiceHandler

	JWT     *auth.JWTManager
	Metrics *metrics.Metrics
	// Idempotency is optional; without it Idempotency-Key headers are ignored.
	Idempotency idempotency.Store
	Logger      *slog.Logger

	CORSOrigins []string
}

// NewHandler returns the root handler, wrapped with h2c so Connect clients
// can use HTTP/2 without TLS.
func NewHandler(d Deps) http.Handler {
	interceptors := []connect.Interceptor{
		middleware.RequireAuth(d.JWT),
		middleware.LoggingInterceptor(d.Logger),
		middleware.MetricsInterceptor(d.Metrics),
	}
	if d.Idempotency != nil {
		interceptors = append(interceptors, middleware.IdempotencyInterceptor(d.Idempotency, d.Logger))
	}
	opts := connect.WithInterceptors(interceptors...)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(d.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Authorization",
			"Content-Type",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			api.IdempotencyKeyHeader,
		},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", d.Metrics.Handler())

	r.Mount(api.NewExpenseServiceHandler(d.Expenses, opts))
	r.Mount(api.NewUserServiceHandler(d.Users, opts))
	r.Mount(api.NewGroupServiceHandler(d.Groups, opts))

	return h2c.NewHandler(r, &http2.Server{})
}

// requestLogger logs every HTTP request once it completes.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "Request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
