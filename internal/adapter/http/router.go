package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/estateledger/internal/adapter/http/handler"
	"github.com/iho/estateledger/internal/adapter/http/middleware"
	"github.com/iho/estateledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler  *handler.PartyHandler
	ClientHandler   *handler.PartyHandler
	SupplierHandler *handler.PartyHandler
	AgentHandler    *handler.PartyHandler

	TransactionHandler *handler.TransactionHandler
	SaleHandler        *handler.SaleHandler
	InvoiceHandler     *handler.InvoiceHandler
	ExpenseHandler     *handler.ExpenseHandler

	ReportHandler *handler.ReportHandler
	HealthHandler *handler.HealthHandler

	// Optional.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Metrics          middleware.RequestObserver
	MetricsHandler   http.Handler

	Logger zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Route("/accounts", partyRoutes(cfg.AccountHandler))
		r.Route("/clients", partyRoutes(cfg.ClientHandler))
		r.Route("/suppliers", partyRoutes(cfg.SupplierHandler))
		r.Route("/agents", partyRoutes(cfg.AgentHandler))

		r.Route("/transactions", eventRoutes(cfg.TransactionHandler))
		r.Route("/sales", eventRoutes(cfg.SaleHandler))
		r.Route("/invoices", eventRoutes(cfg.InvoiceHandler))
		r.Route("/expenses", eventRoutes(cfg.ExpenseHandler))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/totals", cfg.ReportHandler.Totals)
			r.Get("/income-statement", cfg.ReportHandler.IncomeStatement)
			r.Get("/reconciliation", cfg.ReportHandler.Reconciliation)
		})
	})

	return r
}

func partyRoutes(h *handler.PartyHandler) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Post("/{id}/archive", h.Archive)
		r.Get("/{id}/reconcile", h.Reconcile)
	}
}

func eventRoutes[In, E any](h *handler.EventHandler[In, E]) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Post("/{id}/archive", h.Archive)
	}
}
