package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"avrora/internal/core"
	"avrora/internal/schema"
	"avrora/internal/sheets"
)

// TeamKPI is the top row of the sales dashboard.
type TeamKPI struct {
	Revenue       float64 `json:"revenue"`
	RevenueText   string  `json:"revenue_text"`
	Leads         float64 `json:"leads"`
	Orders        float64 `json:"orders"`
	ConversionPct float64 `json:"conversion_pct"`
	AvgCheck      float64 `json:"avg_check"`
	AvgCheckText  string  `json:"avg_check_text"`
}

// ManagerStat is one manager's aggregate line.
type ManagerStat struct {
	Name          string  `json:"name"`
	Revenue       float64 `json:"revenue"`
	RevenueText   string  `json:"revenue_text"`
	Leads         float64 `json:"leads"`
	Orders        float64 `json:"orders"`
	ConversionPct float64 `json:"conversion_pct"`
	AvgCheck      float64 `json:"avg_check"`
	Shifts        int     `json:"shifts"`
	PerShift      float64 `json:"per_shift"`
	PerShiftText  string  `json:"per_shift_text"`
}

// DailyPoint is one day of the revenue dynamics chart.
type DailyPoint struct {
	Day     string  `json:"day"` // 2006-01-02, chart friendly
	Revenue float64 `json:"revenue"`
	Leads   float64 `json:"leads"`
	Orders  float64 `json:"orders"`
}

// SalesReport is the full analytics view for one period sheet.
type SalesReport struct {
	Sheet       string        `json:"sheet"`
	Team        TeamKPI       `json:"team"`
	Managers    []ManagerStat `json:"managers"` // descending by per-shift revenue
	Daily       []DailyPoint  `json:"daily"`    // ascending by day
	Diagnostics Diagnostics   `json:"diagnostics"`
}

// SalesService builds manager performance analytics from the daily
// sales log workbook.
type SalesService struct {
	reader sheets.WorkbookReader
}

func NewSalesService(reader sheets.WorkbookReader) *SalesService {
	return &SalesService{reader: reader}
}

// Sheets lists the period sheets worth reporting on: current-year
// sheets first, offline logs excluded. When the naming convention is
// not in use, anything that is not an untouched default sheet
// qualifies.
func (s *SalesService) Sheets(ctx context.Context, sourceID string) ([]string, error) {
	wb, err := s.reader.Workbook(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	names := wb.Names()

	var eligible []string
	for _, n := range names {
		lower := strings.ToLower(n)
		if strings.Contains(n, "2026") && !strings.Contains(lower, "оффлайн") {
			eligible = append(eligible, n)
		}
	}
	if len(eligible) > 0 {
		return eligible, nil
	}
	for _, n := range names {
		if !strings.Contains(strings.ToLower(n), "sheet") {
			eligible = append(eligible, n)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("workbook has no period sheets")
	}
	return eligible, nil
}

// Report builds the analytics for one period sheet.
func (s *SalesService) Report(ctx context.Context, sourceID, sheetName string) (*SalesReport, error) {
	rows, stats, err := s.rows(ctx, sourceID, sheetName)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{Sheet: sheetName}
	report.Diagnostics.add(stats)

	revenue := core.SumAmount(rows)
	leads := core.SumMetric(rows, string(core.FieldLeads))
	orders := core.SumMetric(rows, string(core.FieldOrders))
	report.Team = TeamKPI{
		Revenue:       revenue,
		RevenueText:   core.FormatAmount(revenue),
		Leads:         leads,
		Orders:        orders,
		ConversionPct: core.Ratio(orders, leads) * 100,
		AvgCheck:      core.Ratio(revenue, orders),
	}
	report.Team.AvgCheckText = core.FormatAmount(report.Team.AvgCheck)

	for _, g := range core.GroupByDimension(rows) {
		st := managerStat(g)
		report.Managers = append(report.Managers, st)
	}
	sort.SliceStable(report.Managers, func(i, j int) bool {
		return report.Managers[i].PerShift > report.Managers[j].PerShift
	})

	daily := core.GroupByDay(rows)
	sort.SliceStable(daily, func(i, j int) bool { return daily[i].Key < daily[j].Key })
	report.Daily = make([]DailyPoint, 0, len(daily))
	for _, d := range daily {
		report.Daily = append(report.Daily, DailyPoint{
			Day:     d.Key,
			Revenue: d.Sum,
			Leads:   d.Metrics[string(core.FieldLeads)],
			Orders:  d.Metrics[string(core.FieldOrders)],
		})
	}
	return report, nil
}

// Manager builds the drill-down for a single manager: their aggregate
// line plus their personal daily series.
func (s *SalesService) Manager(ctx context.Context, sourceID, sheetName, manager string) (*SalesReport, error) {
	rows, stats, err := s.rows(ctx, sourceID, sheetName)
	if err != nil {
		return nil, err
	}
	rows = core.FilterDimension(rows, manager)
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: no rows for manager %q", sheetName, manager)
	}

	report := &SalesReport{Sheet: sheetName}
	report.Diagnostics.add(stats)
	for _, g := range core.GroupByDimension(rows) {
		report.Managers = append(report.Managers, managerStat(g))
	}
	daily := core.GroupByDay(rows)
	sort.SliceStable(daily, func(i, j int) bool { return daily[i].Key < daily[j].Key })
	for _, d := range daily {
		report.Daily = append(report.Daily, DailyPoint{
			Day:     d.Key,
			Revenue: d.Sum,
			Leads:   d.Metrics[string(core.FieldLeads)],
			Orders:  d.Metrics[string(core.FieldOrders)],
		})
	}
	report.Team = TeamKPI{
		Revenue: core.SumAmount(rows),
		Leads:   core.SumMetric(rows, string(core.FieldLeads)),
		Orders:  core.SumMetric(rows, string(core.FieldOrders)),
	}
	report.Team.ConversionPct = core.Ratio(report.Team.Orders, report.Team.Leads) * 100
	report.Team.AvgCheck = core.Ratio(report.Team.Revenue, report.Team.Orders)
	report.Team.RevenueText = core.FormatAmount(report.Team.Revenue)
	report.Team.AvgCheckText = core.FormatAmount(report.Team.AvgCheck)
	return report, nil
}

func (s *SalesService) rows(ctx context.Context, sourceID, sheetName string) ([]core.Row, core.Stats, error) {
	wb, err := s.reader.Workbook(ctx, sourceID)
	if err != nil {
		return nil, core.Stats{}, err
	}
	sheet, ok := wb.Sheet(sheetName)
	if !ok {
		return nil, core.Stats{}, fmt.Errorf("sheet %q not found", sheetName)
	}
	m := schema.Resolve(sheet.Header(), schema.ManagerSales())
	if err := schema.CheckRequired(sheet.Name, m,
		core.FieldManager, core.FieldLeads, core.FieldOrders, core.FieldRevenue, core.FieldDate); err != nil {
		return nil, core.Stats{}, err
	}
	rows, stats := core.Normalize(sheet.Data(), m.Columns(), core.RowSpec{
		Dimension:        core.FieldManager,
		Amount:           core.FieldRevenue,
		Metrics:          []core.Field{core.FieldLeads, core.FieldOrders},
		RequireDimension: true,
		RequireDate:      true,
	})
	return rows, stats, nil
}

// managerStat derives the per-manager ratios. A shift is a distinct
// day the manager has at least one row on.
func managerStat(g core.AggregateRow) ManagerStat {
	leads := g.Metrics[string(core.FieldLeads)]
	orders := g.Metrics[string(core.FieldOrders)]
	st := ManagerStat{
		Name:          g.Key,
		Revenue:       g.Sum,
		RevenueText:   core.FormatAmount(g.Sum),
		Leads:         leads,
		Orders:        orders,
		ConversionPct: core.Ratio(orders, leads) * 100,
		AvgCheck:      core.Ratio(g.Sum, orders),
		Shifts:        g.DistinctDays,
		PerShift:      g.AvgPerDay(),
	}
	st.PerShiftText = core.FormatAmount(st.PerShift)
	return st
}
