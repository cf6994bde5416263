package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"avrora/internal/config"
	"avrora/internal/log"
	"avrora/internal/services"
	"avrora/internal/sheets"
	"avrora/internal/sheets/memory"
	"avrora/internal/workbook"
)

type fakeInvalidator struct {
	sources []string
	all     int
}

func (f *fakeInvalidator) Invalidate(sourceID string) { f.sources = append(f.sources, sourceID) }
func (f *fakeInvalidator) InvalidateAll()             { f.all++ }

func testServer(t *testing.T, store *memory.Store) (*Server, *fakeInvalidator) {
	t.Helper()
	cfg := &config.Config{
		Port:                 "8080",
		DefaultSpreadsheetID: "default-src",
		Cities:               map[string]string{"Алматы": "almaty-src"},
		FetchTimeout:         5 * time.Second,
		CacheTTL:             time.Minute,
		CacheMaxEntries:      4,
		LogLevel:             "error",
	}
	inv := &fakeInvalidator{}
	logger := log.New(log.Config{Component: "http"})
	return NewServer(cfg, store, inv, logger), inv
}

func dashboardWorkbook() *workbook.Workbook {
	return &workbook.Workbook{Sheets: []workbook.Sheet{
		{Name: services.SheetExpenses, Rows: [][]string{
			{"Дата", "Категория", "Сумма"},
			{"05.03.2026", "Цветы", "100 000"},
		}},
		{Name: services.SheetMonthlySales, Rows: [][]string{
			{"Месяц", "Сумма"},
			{"Март", "300 000"},
		}},
		{Name: "Март 2026", Rows: [][]string{
			{"Дата", "Имя менеджера", "Лидов", "Оформлены", "Итого"},
			{"01.03.2026", "Анна", "10", "5", "150 000"},
		}},
	}}
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	store := memory.New()
	s, _ := testServer(t, store)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPNLEndpoint(t *testing.T) {
	store := memory.New()
	store.Put("default-src", dashboardWorkbook())
	s, _ := testServer(t, store)

	rec := do(t, s, http.MethodGet, "/api/pnl?month=Март", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var report services.PNLReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Revenue != 300000 || report.Expenses != 100000 {
		t.Fatalf("report = %+v", report)
	}

	// Without a month the latest listed month is used.
	rec = do(t, s, http.MethodGet, "/api/pnl", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestPNLMonthsEndpoint(t *testing.T) {
	store := memory.New()
	store.Put("default-src", dashboardWorkbook())
	s, _ := testServer(t, store)

	rec := do(t, s, http.MethodGet, "/api/pnl/months", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body["months"]) != 1 || body["months"][0] != "Март" {
		t.Fatalf("months = %v", body)
	}
}

func TestSalesEndpoint(t *testing.T) {
	store := memory.New()
	store.Put("almaty-src", dashboardWorkbook())
	s, _ := testServer(t, store)

	query := url.Values{"source": {"Алматы"}, "sheet": {"Март 2026"}}
	rec := do(t, s, http.MethodGet, "/api/sales?"+query.Encode(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var report services.SalesReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Team.Revenue != 150000 {
		t.Fatalf("report = %+v", report)
	}

	query.Set("manager", "Анна")
	rec = do(t, s, http.MethodGet, "/api/sales?"+query.Encode(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("drilldown status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestSalesEndpointDefaultsToLatestSheet(t *testing.T) {
	store := memory.New()
	store.Put("default-src", &workbook.Workbook{Sheets: []workbook.Sheet{
		{Name: "Февраль 2026", Rows: [][]string{
			{"Дата", "Имя менеджера", "Лидов", "Оформлены", "Итого"},
			{"01.02.2026", "Анна", "10", "5", "90 000"},
		}},
		{Name: "Март 2026", Rows: [][]string{
			{"Дата", "Имя менеджера", "Лидов", "Оформлены", "Итого"},
			{"01.03.2026", "Анна", "10", "5", "150 000"},
		}},
	}})
	s, _ := testServer(t, store)

	rec := do(t, s, http.MethodGet, "/api/sales", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var report services.SalesReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Sheet != "Март 2026" {
		t.Fatalf("default sheet = %q, want the most recent one", report.Sheet)
	}
}

func TestSheetsEndpoint(t *testing.T) {
	store := memory.New()
	store.Put("default-src", dashboardWorkbook())
	s, _ := testServer(t, store)

	rec := do(t, s, http.MethodGet, "/api/sheets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body["sheets"]) != 1 || body["sheets"][0] != "Март 2026" {
		t.Fatalf("sheets = %v", body)
	}
}

func TestFetchFailureMapsTo502(t *testing.T) {
	store := memory.New()
	store.Fail("default-src", fmt.Errorf("export: %w", sheets.ErrFetchFailed))
	s, _ := testServer(t, store)

	rec := do(t, s, http.MethodGet, "/api/pnl?month=Март", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "data unavailable") {
		t.Fatalf("body = %s", rec.Body)
	}
}

func TestSchemaErrorMapsTo422(t *testing.T) {
	store := memory.New()
	store.Put("default-src", &workbook.Workbook{Sheets: []workbook.Sheet{
		{Name: "Март 2026", Rows: [][]string{{"Дата", "Имя менеджера"}}},
	}})
	s, _ := testServer(t, store)

	rec := do(t, s, http.MethodGet, "/api/sales?"+url.Values{"sheet": {"Март 2026"}}.Encode(), "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Sheet != "Март 2026" {
		t.Fatalf("body = %+v", body)
	}
}

func TestBreakEvenEndpoint(t *testing.T) {
	store := memory.New()
	s, _ := testServer(t, store)

	rec := do(t, s, http.MethodPost, "/api/scenario/breakeven", `{
		"fixed_costs": 100000,
		"unit_price": 15000,
		"markup": 2.2,
		"variable_cost_per_unit": 1000,
		"commissions": {"kaspi": 2, "florist": 2, "manager": 2, "tax": 2}
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result["infeasible"] != false {
		t.Fatalf("result = %v", result)
	}

	rec = do(t, s, http.MethodPost, "/api/scenario/breakeven", `{"unit_price": 0, "markup": 2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/scenario/breakeven", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBreakEvenCommissionDefaults(t *testing.T) {
	store := memory.New()
	s, _ := testServer(t, store)

	// No commissions in the body: the business defaults apply.
	rec := do(t, s, http.MethodPost, "/api/scenario/breakeven", `{
		"fixed_costs": 100000,
		"unit_price": 15000,
		"markup": 2.2
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := result["commission_per_unit"].(float64); got != 15000*7.95/100 {
		t.Fatalf("default commission per unit = %v", got)
	}

	// An explicit all-zero object is a commission-free model.
	rec = do(t, s, http.MethodPost, "/api/scenario/breakeven", `{
		"fixed_costs": 100000,
		"unit_price": 15000,
		"markup": 2.2,
		"commissions": {"kaspi": 0, "florist": 0, "manager": 0, "tax": 0}
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := result["commission_per_unit"].(float64); got != 0 {
		t.Fatalf("zero commissions must cost nothing, got %v", got)
	}
}

func TestProfitEndpoint(t *testing.T) {
	store := memory.New()
	s, _ := testServer(t, store)

	rec := do(t, s, http.MethodPost, "/api/scenario/profit", `{
		"revenue": 900000,
		"fixed_costs": 100000,
		"unit_price": 15000,
		"markup": 2.2
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var profit map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &profit); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profit["revenue"].(float64) != 900000 {
		t.Fatalf("profit = %v", profit)
	}
}

func TestCartQuoteEndpoint(t *testing.T) {
	store := memory.New()
	s, _ := testServer(t, store)

	rec := do(t, s, http.MethodPost, "/api/cart/quote", `{
		"items": [
			{"name": "Роза", "quantity": 11, "unit_cost": 800, "unit_base_price": 2000},
			{"name": "Упаковка", "quantity": 1, "unit_cost": 1200, "unit_base_price": 2000}
	    ],
		"target_markup": 2.5,
		"final_price": 30000
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var quote map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if quote["material_cost"].(float64) != 10000 {
		t.Fatalf("quote = %v", quote)
	}
	if quote["commission_cost"].(float64) != 30000*7.95/100 {
		t.Fatalf("default commissions expected: %v", quote)
	}

	rec = do(t, s, http.MethodPost, "/api/cart/quote", `{
		"items": [{"name": "Роза", "quantity": 1, "unit_cost": 10000, "unit_base_price": 10000}],
		"target_markup": 2.5,
		"final_price": 30000,
		"commissions": {"kaspi": 0, "florist": 0, "manager": 0, "tax": 0}
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if quote["commission_cost"].(float64) != 0 {
		t.Fatalf("zero commissions must cost nothing: %v", quote)
	}

	rec = do(t, s, http.MethodPost, "/api/cart/quote", `{"items": [], "target_markup": 2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	store := memory.New()
	s, inv := testServer(t, store)

	rec := do(t, s, http.MethodPost, "/api/refresh?source=Алматы", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(inv.sources) != 1 || inv.sources[0] != "almaty-src" {
		t.Fatalf("invalidated = %v", inv.sources)
	}

	rec = do(t, s, http.MethodPost, "/api/refresh", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if inv.all != 1 {
		t.Fatalf("invalidate all = %d", inv.all)
	}

	// A raw spreadsheet id passes through unresolved.
	rec = do(t, s, http.MethodPost, "/api/refresh?source=raw-id", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(inv.sources) != 2 || inv.sources[1] != "raw-id" {
		t.Fatalf("invalidated = %v", inv.sources)
	}

	rec = do(t, s, http.MethodGet, "/api/refresh", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
