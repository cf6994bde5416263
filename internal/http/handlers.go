package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"avrora/internal/scenario"
	"avrora/internal/schema"
	"avrora/internal/services"
	"avrora/internal/sheets"
)

// errorBody is the uniform error payload.
type errorBody struct {
	Error string `json:"error"`
	Sheet string `json:"sheet,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeDataError maps the pipeline error taxonomy onto HTTP statuses:
// unreachable spreadsheets are an upstream failure, unrecognizable
// sheet layouts are an unprocessable source.
func (s *Server) writeDataError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *schema.MissingFieldsError
	switch {
	case errors.Is(err, sheets.ErrFetchFailed):
		s.logger.ErrorContext(r.Context(), "fetch failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "data unavailable")
	case errors.As(err, &missing):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error: missing.Error(),
			Sheet: missing.Sheet,
		})
	default:
		s.logger.ErrorContext(r.Context(), "report failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// source resolves the ?source= parameter to a spreadsheet id.
func (s *Server) source(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := s.cfg.SourceID(r.URL.Query().Get("source"))
	if !ok {
		writeError(w, http.StatusBadRequest, "no source given and no default spreadsheet configured")
		return "", false
	}
	return id, true
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	id, ok := s.source(w, r)
	if !ok {
		return
	}
	months, err := s.pnl.Months(r.Context(), id)
	if err != nil {
		s.writeDataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"months": months})
}

func (s *Server) handlePNL(w http.ResponseWriter, r *http.Request) {
	id, ok := s.source(w, r)
	if !ok {
		return
	}
	month := r.URL.Query().Get("month")
	if month == "" {
		months, err := s.pnl.Months(r.Context(), id)
		if err != nil {
			s.writeDataError(w, r, err)
			return
		}
		month = months[len(months)-1]
	}
	report, err := s.pnl.Report(r.Context(), id, month)
	if err != nil {
		s.writeDataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	id, ok := s.source(w, r)
	if !ok {
		return
	}
	names, err := s.sales.Sheets(r.Context(), id)
	if err != nil {
		s.writeDataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sheets": names})
}

func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	id, ok := s.source(w, r)
	if !ok {
		return
	}
	sheet := r.URL.Query().Get("sheet")
	if sheet == "" {
		names, err := s.sales.Sheets(r.Context(), id)
		if err != nil {
			s.writeDataError(w, r, err)
			return
		}
		// Like the month default, preselect the most recent period.
		sheet = names[len(names)-1]
	}
	var report *services.SalesReport
	var err error
	if manager := r.URL.Query().Get("manager"); manager != "" {
		report, err = s.sales.Manager(r.Context(), id, sheet, manager)
	} else {
		report, err = s.sales.Report(r.Context(), id, sheet)
	}
	if err != nil {
		s.writeDataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleFixedCosts(w http.ResponseWriter, r *http.Request) {
	id, ok := s.source(w, r)
	if !ok {
		return
	}
	costs, err := s.fixedCosts.Load(r.Context(), id, r.URL.Query().Get("sheet"))
	if err != nil {
		s.writeDataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, costs)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	id, ok := s.source(w, r)
	if !ok {
		return
	}
	items, err := s.catalog.Items(r.Context(), id, r.URL.Query().Get("sheet"))
	if err != nil {
		s.writeDataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"categories": services.Categories(items),
	})
}

func (s *Server) handleBreakEven(w http.ResponseWriter, r *http.Request) {
	var params scenario.Params
	if !decodeBody(w, r, &params) {
		return
	}
	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scenario.Evaluate(params))
}

// profitRequest is a break-even parameter set plus a target revenue.
type profitRequest struct {
	scenario.Params
	Revenue float64 `json:"revenue"`
}

func (s *Server) handleProfit(w http.ResponseWriter, r *http.Request) {
	var req profitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Revenue < 0 {
		writeError(w, http.StatusBadRequest, "revenue must not be negative")
		return
	}
	writeJSON(w, http.StatusOK, scenario.ProfitAt(req.Revenue, req.Params))
}

// cartQuoteRequest prices a composed cart. A nil commissions object
// means the business defaults; an explicit all-zero one is honored.
type cartQuoteRequest struct {
	Items        []scenario.CartItem   `json:"items"`
	TargetMarkup float64               `json:"target_markup"`
	FinalPrice   float64               `json:"final_price"`
	Commissions  *scenario.Commissions `json:"commissions"`
}

func (s *Server) handleCartQuote(w http.ResponseWriter, r *http.Request) {
	var req cartQuoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}
	if req.TargetMarkup <= 0 {
		writeError(w, http.StatusBadRequest, "target markup must be positive")
		return
	}
	commissions := scenario.DefaultCommissions()
	if req.Commissions != nil {
		commissions = *req.Commissions
	}
	if err := commissions.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cart := scenario.NewCart()
	for _, item := range req.Items {
		cart.Add(item)
	}
	writeJSON(w, http.StatusOK, scenario.QuoteCart(cart, req.TargetMarkup, req.FinalPrice, commissions))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		s.invalidator.InvalidateAll()
		s.logger.InfoContext(r.Context(), "cache cleared")
		writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
		return
	}
	// SourceID resolves every non-empty source: a configured city name
	// or a raw spreadsheet id.
	id, _ := s.cfg.SourceID(source)
	s.invalidator.Invalidate(id)
	s.logger.InfoContext(r.Context(), "cache invalidated", "source", source)
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed", "source": source})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}
