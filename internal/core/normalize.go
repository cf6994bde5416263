package core

import (
	"strings"
	"time"
)

// dateLayouts is tried in order; day-first layouts come before
// anything ambiguous so "01.03.2026" is the 1st of March.
var dateLayouts = []string{
	"02.01.2006",
	"02/01/2006",
	"02-01-2006",
	"2.1.2006",
	"2/1/2006",
	"2-1-2006",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2006-01-02 15:04:05",
	"01-02-06 15:04:05", // excelize default rendering of date cells
	"01-02-06",
}

// ParseDate parses a cell with a day-first convention. A null Date is
// returned on failure; the row survives and is only excluded from
// date-keyed grouping.
func ParseDate(cell string) Date {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, cell, time.UTC); err == nil {
			return Date{Time: t}
		}
	}
	return Date{}
}

// RowSpec tells the normalizer how to read one sheet family: which
// canonical field is the grouping dimension, which one carries the
// amount, and which secondary metrics to pull along.
type RowSpec struct {
	Dimension Field
	Amount    Field
	Metrics   []Field

	// FixedDimension overrides the dimension for sheets that are a
	// single logical category, e.g. the ad-spend sheet.
	FixedDimension string

	// RequireDimension drops rows with an empty dimension instead of
	// substituting DefaultDimension. RequireDate drops rows whose date
	// failed to parse. The manager report uses both; expense reports
	// keep everything.
	RequireDimension bool
	RequireDate      bool
}

// Stats summarizes the degradations applied while normalizing one
// sheet. Individual cells are never surfaced (deliberate softening);
// the counts are, so callers can display a data-quality hint.
type Stats struct {
	Rows           int // rows emitted
	Dropped        int // rows removed by RequireDimension/RequireDate
	NullDates      int // emitted rows whose date failed to parse
	DefaultedCells int // numeric cells coerced to zero
}

// Normalize converts raw sheet rows into canonical rows using the
// resolved column indexes. Cells out of a short row's range read as
// empty. The returned slice is rebuilt on every call and never mutated
// afterwards.
func Normalize(rows [][]string, columns map[Field]int, spec RowSpec) ([]Row, Stats) {
	out := make([]Row, 0, len(rows))
	var stats Stats

	dateIdx := index(columns, FieldDate)
	dimIdx := index(columns, spec.Dimension)
	amountIdx := index(columns, spec.Amount)

	for _, raw := range rows {
		if blankRow(raw) {
			continue
		}

		row := Row{}

		row.Date = ParseDate(cellAt(raw, dateIdx))
		row.Period = row.Date.MonthName()
		if !row.Date.Valid() {
			if spec.RequireDate {
				stats.Dropped++
				continue
			}
			// Sheets without a date column are dateless on purpose and
			// do not degrade the quality counters.
			if dateIdx >= 0 {
				stats.NullDates++
			}
		}

		dim := strings.TrimSpace(cellAt(raw, dimIdx))
		switch {
		case spec.FixedDimension != "":
			dim = spec.FixedDimension
		case dim == "":
			if spec.RequireDimension {
				stats.Dropped++
				continue
			}
			dim = DefaultDimension
		}
		row.Dimension = dim

		if amountIdx >= 0 {
			outc := ParseAmount(cellAt(raw, amountIdx))
			row.Amount = outc.Value
			if outc.Defaulted {
				stats.DefaultedCells++
			}
		}

		if len(spec.Metrics) > 0 {
			row.Metrics = make(map[string]float64, len(spec.Metrics))
			for _, f := range spec.Metrics {
				outc := ParseAmount(cellAt(raw, index(columns, f)))
				row.Metrics[string(f)] = outc.Value
				if outc.Defaulted {
					stats.DefaultedCells++
				}
			}
		}

		out = append(out, row)
		stats.Rows++
	}
	return out, stats
}

func index(columns map[Field]int, f Field) int {
	if f == "" {
		return -1
	}
	if i, ok := columns[f]; ok {
		return i
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
