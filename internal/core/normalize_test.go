package core

import (
	"testing"
	"time"
)

func TestParseDateDayFirst(t *testing.T) {
	d := ParseDate("01.03.2026")
	if !d.Valid() {
		t.Fatalf("expected valid date")
	}
	if d.Month() != time.March || d.Day() != 1 || d.Year() != 2026 {
		t.Fatalf("day-first parse wrong: got %v", d.Time)
	}
	if d.MonthName() != "Март" {
		t.Fatalf("period label = %q, want Март", d.MonthName())
	}

	if ParseDate("99.99.9999").Valid() {
		t.Fatalf("expected null date for 99.99.9999")
	}
	if ParseDate("").Valid() {
		t.Fatalf("expected null date for empty cell")
	}
	if ParseDate("не дата").Valid() {
		t.Fatalf("expected null date for garbage")
	}

	iso := ParseDate("2026-03-01")
	if !iso.Valid() || iso.Month() != time.March {
		t.Fatalf("ISO date should parse: %v", iso.Time)
	}
}

func expenseColumns() map[Field]int {
	return map[Field]int{FieldDate: 0, FieldCategory: 1, FieldAmount: 2}
}

func TestNormalizeExpenses(t *testing.T) {
	rows := [][]string{
		{"01.03.2026", "Цветы", "1 200,50"},
		{"99.99.9999", "Аренда", "300000"},
		{"02.03.2026", "", "500"},
		{"03.03.2026", "Упаковка", "мусор"},
		{"", "", ""},
	}
	spec := RowSpec{Dimension: FieldCategory, Amount: FieldAmount}
	got, stats := Normalize(rows, expenseColumns(), spec)

	if len(got) != 4 || stats.Rows != 4 {
		t.Fatalf("expected 4 rows (blank skipped), got %d", len(got))
	}
	if got[0].Amount != 1200.50 || got[0].Period != "Март" {
		t.Fatalf("row 0 normalized wrong: %+v", got[0])
	}
	if got[1].Date.Valid() {
		t.Fatalf("bad date should be null")
	}
	if got[1].Period != "" || got[1].Amount != 300000 {
		t.Fatalf("null-date row keeps amount but no period: %+v", got[1])
	}
	if got[2].Dimension != DefaultDimension {
		t.Fatalf("missing dimension should fall back to sentinel, got %q", got[2].Dimension)
	}
	if got[3].Amount != 0 {
		t.Fatalf("unparsable amount must default to zero")
	}
	if stats.NullDates != 1 || stats.DefaultedCells != 1 {
		t.Fatalf("stats wrong: %+v", stats)
	}

	// Null-date row is present in dimension grouping but absent from
	// period grouping.
	byCat := GroupByDimension(got)
	var catTotal float64
	for _, g := range byCat {
		catTotal += g.Sum
	}
	if catTotal != 1200.50+300000+500 {
		t.Fatalf("category totals should include null-date rows: %v", catTotal)
	}
	for _, g := range GroupByPeriod(got) {
		if g.Key == "" {
			t.Fatalf("period grouping must exclude null dates")
		}
	}
}

func TestNormalizeRequireAndFixedDimension(t *testing.T) {
	columns := map[Field]int{
		FieldDate:    0,
		FieldManager: 1,
		FieldRevenue: 2,
		FieldLeads:   3,
		FieldOrders:  4,
	}
	rows := [][]string{
		{"01.02.2026", "Айгерим", "45000", "12", "5"},
		{"01.02.2026", "", "9000", "3", "1"},    // no manager: dropped
		{"zzz", "Дана", "15000", "4", "2"},      // no date: dropped
		{"02.02.2026", "Айгерим", "30000", "", "2"},
	}
	spec := RowSpec{
		Dimension:        FieldManager,
		Amount:           FieldRevenue,
		Metrics:          []Field{FieldLeads, FieldOrders},
		RequireDimension: true,
		RequireDate:      true,
	}
	got, stats := Normalize(rows, columns, spec)
	if len(got) != 2 || stats.Dropped != 2 {
		t.Fatalf("expected 2 kept / 2 dropped, got %d / %d", len(got), stats.Dropped)
	}
	if got[0].Metric("leads") != 12 || got[0].Metric("orders") != 5 {
		t.Fatalf("metrics not carried: %+v", got[0].Metrics)
	}
	if stats.DefaultedCells != 1 {
		t.Fatalf("empty leads cell should count as defaulted, stats=%+v", stats)
	}

	fixed, _ := Normalize([][]string{{"05.02.2026", "", "2500"}},
		map[Field]int{FieldDate: 0, FieldAmount: 2},
		RowSpec{Amount: FieldAmount, FixedDimension: "Таргет"})
	if len(fixed) != 1 || fixed[0].Dimension != "Таргет" {
		t.Fatalf("fixed dimension not applied: %+v", fixed)
	}
}
