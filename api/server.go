/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. zap logger: Structured request logging
  4. CORS:       Cross-origin requests for the admin frontend
  5. Auth:       JWT bearer on mutating routes (when a secret is set)

ROUTE GROUPS:
  /api/employees/*   Employee records, declarations, fiscal summaries
  /api/payslips/*    Payslip runs and downloads
  /api/policies/*    Statutory policy management
  /api/tax, /api/reconcile, /api/fiscal/year   Direct calculators

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: JWT middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions carries the deployment-specific router settings.
type RouterOptions struct {
	JWTSecret   string
	CORSOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	auth := RequireAuth(opts.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.With(auth).Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/payslips", h.ListPayslips)
			r.Get("/{id}/fiscal", h.FiscalSummary)

			r.Route("/{id}/declarations/{year}", func(r chi.Router) {
				r.Get("/", h.GetDeclaration)
				r.With(auth).Put("/", h.SaveDeclaration)
				r.With(auth).Post("/lock", h.LockDeclaration)
			})
		})

		r.Route("/payslips", func(r chi.Router) {
			r.Post("/compute", h.ComputePayslip)
			r.With(auth).Post("/", h.FinalizePayslip)
			r.Get("/{id}", h.GetPayslip)
			r.Get("/{id}/pdf", h.GetPayslipPDF)
		})

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.With(auth).Post("/", h.CreatePolicy)
			r.Get("/{id}", h.GetPolicy)
		})

		r.Post("/tax", h.ComputeTax)
		r.Post("/reconcile", h.Reconcile)
		r.Get("/fiscal/year", h.GetFiscalYear)
	})

	return r
}

// requestLogger logs each request with its status and latency.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
