package core

// AggregateRow is the result of grouping canonical rows by one key.
// Groups come back in first-seen order; presentation decides sorting.
type AggregateRow struct {
	Key          string
	Sum          float64
	Count        int
	DistinctDays int
	Metrics      map[string]float64 // summed secondary metrics
}

// AvgPerDay returns the per-distinct-day average with the uniform
// zero-denominator rule.
func (a AggregateRow) AvgPerDay() float64 {
	return Ratio(a.Sum, float64(a.DistinctDays))
}

// Ratio divides with the canonical zero-state: when the denominator is
// not positive the ratio is 0, never NaN, Inf or an error.
func Ratio(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return 0
}

// Union concatenates independently normalized row sets into one
// logical set before grouping. Rows never merge across sources.
func Union(sets ...[]Row) []Row {
	var n int
	for _, s := range sets {
		n += len(s)
	}
	out := make([]Row, 0, n)
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// SumAmount totals the amount over a row set.
func SumAmount(rows []Row) float64 {
	var sum float64
	for _, r := range rows {
		sum += r.Amount
	}
	return sum
}

// SumMetric totals a named secondary metric over a row set.
func SumMetric(rows []Row, name string) float64 {
	var sum float64
	for _, r := range rows {
		sum += r.Metric(name)
	}
	return sum
}

// DistinctDays counts unique parsed dates in a row set.
func DistinctDays(rows []Row) int {
	seen := map[string]struct{}{}
	for _, r := range rows {
		if k := r.Date.Key(); k != "" {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

// GroupByDimension groups rows by exact dimension value.
func GroupByDimension(rows []Row) []AggregateRow {
	return groupBy(rows, func(r Row) (string, bool) {
		return r.Dimension, true
	})
}

// GroupByPeriod groups rows by month label; rows with a null date have
// no period and are excluded.
func GroupByPeriod(rows []Row) []AggregateRow {
	return groupBy(rows, func(r Row) (string, bool) {
		return r.Period, r.Period != ""
	})
}

// GroupByDay groups rows by calendar day; null dates are excluded.
func GroupByDay(rows []Row) []AggregateRow {
	return groupBy(rows, func(r Row) (string, bool) {
		k := r.Date.Key()
		return k, k != ""
	})
}

func groupBy(rows []Row, key func(Row) (string, bool)) []AggregateRow {
	byKey := map[string]int{}
	out := make([]AggregateRow, 0)
	days := map[string]map[string]struct{}{}

	for _, r := range rows {
		k, ok := key(r)
		if !ok {
			continue
		}
		idx, seen := byKey[k]
		if !seen {
			idx = len(out)
			byKey[k] = idx
			out = append(out, AggregateRow{Key: k})
			days[k] = map[string]struct{}{}
		}
		g := &out[idx]
		g.Sum += r.Amount
		g.Count++
		if dk := r.Date.Key(); dk != "" {
			days[k][dk] = struct{}{}
		}
		for name, v := range r.Metrics {
			if g.Metrics == nil {
				g.Metrics = map[string]float64{}
			}
			g.Metrics[name] += v
		}
	}
	for i := range out {
		out[i].DistinctDays = len(days[out[i].Key])
	}
	return out
}

// FilterPeriod keeps rows whose period label matches exactly.
func FilterPeriod(rows []Row, period string) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Period == period {
			out = append(out, r)
		}
	}
	return out
}

// FilterDimension keeps rows with the exact dimension value.
func FilterDimension(rows []Row, dim string) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Dimension == dim {
			out = append(out, r)
		}
	}
	return out
}
