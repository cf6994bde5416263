// Package services consolidates the per-dashboard fetch → normalize →
// aggregate pipelines onto the shared core. Each service is a thin
// consumer supplying its synonym table, grouping key and sort order;
// presentation stays outside.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"avrora/internal/core"
	"avrora/internal/schema"
	"avrora/internal/sheets"
	"avrora/internal/workbook"
)

// Sheet names of the P&L workbook.
const (
	SheetExpenses     = "Лист1"
	SheetAdSpend      = "Таргет"
	SheetMonthlySales = "Продажи по месяцам"

	// AdSpendCategory is the fixed dimension for ad-spend rows; the
	// source sheet has no category column.
	AdSpendCategory = "Таргет"
)

// Diagnostics carries the softened-degradation counters for one
// report, so data-quality issues stay visible without failing the run.
type Diagnostics struct {
	DefaultedCells int `json:"defaulted_cells"`
	NullDates      int `json:"null_dates"`
	DroppedRows    int `json:"dropped_rows"`
}

func (d *Diagnostics) add(s core.Stats) {
	d.DefaultedCells += s.DefaultedCells
	d.NullDates += s.NullDates
	d.DroppedRows += s.Dropped
}

// CategoryTotal is one slice of the expense structure chart.
type CategoryTotal struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	AmountText string  `json:"amount_text"`
}

// DetailRow is one line of a drill-down table.
type DetailRow struct {
	Date       string  `json:"date"`
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	AmountText string  `json:"amount_text"`
}

// PNLReport is the month view: KPI cards, category structure and the
// two detail tables.
type PNLReport struct {
	Month string `json:"month"`

	Revenue   float64 `json:"revenue"`
	Expenses  float64 `json:"expenses"`
	NetProfit float64 `json:"net_profit"`

	RevenueText   string `json:"revenue_text"`
	ExpensesText  string `json:"expenses_text"`
	NetProfitText string `json:"net_profit_text"`

	Categories  []CategoryTotal `json:"categories"`   // descending by amount
	ExpenseRows []DetailRow     `json:"expense_rows"` // date descending
	AdSpendRows []DetailRow     `json:"ad_spend_rows"`

	Diagnostics Diagnostics `json:"diagnostics"`
}

// PNLService builds the profit & loss report.
type PNLService struct {
	reader sheets.WorkbookReader
}

func NewPNLService(reader sheets.WorkbookReader) *PNLService {
	return &PNLService{reader: reader}
}

// Months lists the selectable months from the sales-by-month sheet, in
// sheet order, blanks dropped.
func (s *PNLService) Months(ctx context.Context, sourceID string) ([]string, error) {
	salesRows, _, err := s.salesRows(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var months []string
	for _, r := range salesRows {
		m := r.Dimension
		if m == "" || m == core.DefaultDimension || strings.EqualFold(m, "nan") {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	if len(months) == 0 {
		return nil, fmt.Errorf("sheet %q: no months found", SheetMonthlySales)
	}
	return months, nil
}

// Report builds the P&L view for one month. The sales sheet is
// required; expense and ad-spend sheets are optional and simply
// contribute nothing when absent.
func (s *PNLService) Report(ctx context.Context, sourceID, month string) (*PNLReport, error) {
	wb, err := s.reader.Workbook(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	report := &PNLReport{Month: month}

	salesRows, salesStats, err := s.salesRowsFrom(wb)
	if err != nil {
		return nil, err
	}
	report.Diagnostics.add(salesStats)

	var expenseRows, adRows []core.Row
	if sheet, ok := wb.Sheet(SheetExpenses); ok {
		rows, stats, err := normalizeExpenseSheet(sheet.Name, sheet.Header(), sheet.Data(), "")
		if err != nil {
			return nil, err
		}
		expenseRows = rows
		report.Diagnostics.add(stats)
	} else {
		slog.InfoContext(ctx, "expense sheet absent", "source", sourceID, "sheet", SheetExpenses)
	}
	if sheet, ok := wb.Sheet(SheetAdSpend); ok {
		rows, stats, err := normalizeExpenseSheet(sheet.Name, sheet.Header(), sheet.Data(), AdSpendCategory)
		if err != nil {
			return nil, err
		}
		adRows = rows
		report.Diagnostics.add(stats)
	}

	expenseRows = core.FilterPeriod(expenseRows, month)
	adRows = core.FilterPeriod(adRows, month)

	// Regular and ad-spend rows form one logical expense set: a union,
	// never a merge.
	combined := core.Union(expenseRows, adRows)

	report.Revenue = core.SumAmount(core.FilterDimension(salesRows, month))
	report.Expenses = core.SumAmount(combined)
	report.NetProfit = report.Revenue - report.Expenses
	report.RevenueText = core.FormatAmount(report.Revenue)
	report.ExpensesText = core.FormatAmount(report.Expenses)
	report.NetProfitText = core.FormatAmount(report.NetProfit)

	groups := core.GroupByDimension(combined)
	report.Categories = make([]CategoryTotal, 0, len(groups))
	for _, g := range groups {
		report.Categories = append(report.Categories, CategoryTotal{
			Name:       g.Key,
			Amount:     g.Sum,
			AmountText: core.FormatAmount(g.Sum),
		})
	}
	sort.SliceStable(report.Categories, func(i, j int) bool {
		return report.Categories[i].Amount > report.Categories[j].Amount
	})

	report.ExpenseRows = detailRows(expenseRows)
	report.AdSpendRows = detailRows(adRows)
	return report, nil
}

// salesRows fetches and normalizes the sales-by-month sheet. The month
// label is the row dimension so the generic filters apply.
func (s *PNLService) salesRows(ctx context.Context, sourceID string) ([]core.Row, core.Stats, error) {
	wb, err := s.reader.Workbook(ctx, sourceID)
	if err != nil {
		return nil, core.Stats{}, err
	}
	return s.salesRowsFrom(wb)
}

func (s *PNLService) salesRowsFrom(wb *workbook.Workbook) ([]core.Row, core.Stats, error) {
	sheet, ok := wb.Sheet(SheetMonthlySales)
	if !ok {
		return nil, core.Stats{}, &schema.MissingFieldsError{
			Sheet:  SheetMonthlySales,
			Fields: []core.Field{core.FieldMonth, core.FieldAmount},
		}
	}
	m := schema.Resolve(sheet.Header(), schema.MonthlySales())
	if err := schema.CheckRequired(sheet.Name, m, core.FieldMonth, core.FieldAmount); err != nil {
		return nil, core.Stats{}, err
	}
	columns := m.Columns()
	// The month column doubles as the dimension.
	columns[core.FieldCategory] = columns[core.FieldMonth]
	rows, stats := core.Normalize(sheet.Data(), columns, core.RowSpec{
		Dimension: core.FieldCategory,
		Amount:    core.FieldAmount,
	})
	return rows, stats, nil
}

func normalizeExpenseSheet(name string, header []string, data [][]string, fixedCategory string) ([]core.Row, core.Stats, error) {
	m := schema.Resolve(header, schema.Expenses())
	if err := schema.CheckRequired(name, m, core.FieldDate, core.FieldAmount); err != nil {
		return nil, core.Stats{}, err
	}
	rows, stats := core.Normalize(data, m.Columns(), core.RowSpec{
		Dimension:      core.FieldCategory,
		Amount:         core.FieldAmount,
		FixedDimension: fixedCategory,
	})
	return rows, stats, nil
}

func detailRows(rows []core.Row) []DetailRow {
	sorted := make([]core.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date.Time)
	})
	out := make([]DetailRow, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, DetailRow{
			Date:       r.Date.Display(),
			Category:   r.Dimension,
			Amount:     r.Amount,
			AmountText: core.FormatAmount(r.Amount),
		})
	}
	return out
}
