// Package http exposes the dashboards as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"avrora/internal/config"
	"avrora/internal/log"
	"avrora/internal/services"
	"avrora/internal/sheets"
)

// Server wires the reporting services behind a JSON API with method
// guards and per-request timeouts.
type Server struct {
	http.Server

	cfg    *config.Config
	logger *log.Logger

	pnl        *services.PNLService
	sales      *services.SalesService
	fixedCosts *services.FixedCostService
	catalog    *services.CatalogService

	invalidator sheets.Invalidator

	requestTimeout time.Duration
}

// NewServer configures the routes and returns a ready-to-run server.
func NewServer(cfg *config.Config, reader sheets.WorkbookReader, invalidator sheets.Invalidator, logger *log.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		cfg:            cfg,
		logger:         logger,
		pnl:            services.NewPNLService(reader),
		sales:          services.NewSalesService(reader),
		fixedCosts:     services.NewFixedCostService(reader),
		catalog:        services.NewCatalogService(reader),
		invalidator:    invalidator,
		requestTimeout: cfg.FetchTimeout + 5*time.Second,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/api/pnl", s.withContext(s.requireMethod(http.MethodGet, s.handlePNL)))
	mux.HandleFunc("/api/pnl/months", s.withContext(s.requireMethod(http.MethodGet, s.handleMonths)))
	mux.HandleFunc("/api/sales", s.withContext(s.requireMethod(http.MethodGet, s.handleSales)))
	mux.HandleFunc("/api/sheets", s.withContext(s.requireMethod(http.MethodGet, s.handleSheets)))
	mux.HandleFunc("/api/fixedcosts", s.withContext(s.requireMethod(http.MethodGet, s.handleFixedCosts)))
	mux.HandleFunc("/api/catalog", s.withContext(s.requireMethod(http.MethodGet, s.handleCatalog)))
	mux.HandleFunc("/api/scenario/breakeven", s.requireMethod(http.MethodPost, s.handleBreakEven))
	mux.HandleFunc("/api/scenario/profit", s.requireMethod(http.MethodPost, s.handleProfit))
	mux.HandleFunc("/api/cart/quote", s.requireMethod(http.MethodPost, s.handleCartQuote))
	mux.HandleFunc("/api/refresh", s.requireMethod(http.MethodPost, s.handleRefresh))
	return s
}

// withContext bounds data-fetching handlers so a stalled upstream
// cannot hold the connection open indefinitely.
func (s *Server) withContext(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next(w, r)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
