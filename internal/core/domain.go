// Package core holds the normalized data model shared by every report:
// canonical fields, validated dates, amount parsing and the aggregation
// primitives that the dashboard services are built on.
package core

import "time"

// Field is a canonical column name that all source header variants are
// mapped onto before normalization.
type Field string

const (
	FieldDate      Field = "date"
	FieldMonth     Field = "month"
	FieldAmount    Field = "amount"
	FieldCategory  Field = "category"
	FieldManager   Field = "manager"
	FieldLeads     Field = "leads"
	FieldOrders    Field = "orders"
	FieldRevenue   Field = "revenue"
	FieldName      Field = "name"
	FieldCost      Field = "cost"
	FieldBasePrice Field = "base_price"
)

// DefaultDimension is substituted when a row carries no category or
// manager value. Rows are never dropped for a missing dimension.
const DefaultDimension = "Uncategorized"

// Date is a calendar date with a null state. The zero value is null;
// rows keep their null date and are simply skipped by date-keyed
// grouping.
type Date struct {
	time.Time
}

// NewDate builds a valid date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Valid reports whether the date was parsed successfully.
func (d Date) Valid() bool { return !d.IsZero() }

// Key returns a stable day key for distinct-day counting, empty for
// null dates.
func (d Date) Key() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// Display renders the date the way the source spreadsheets do.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02.01.2006")
}

// monthNames is the fixed period-label table, indexed by time.Month.
var monthNames = [13]string{
	"",
	"Январь", "Февраль", "Март", "Апрель",
	"Май", "Июнь", "Июль", "Август",
	"Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// MonthName returns the localized month name for 1-12, empty otherwise.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m]
}

// MonthName returns the period label for the date, empty when null.
func (d Date) MonthName() string {
	if d.IsZero() {
		return ""
	}
	return MonthName(d.Month())
}

// Row is the canonical normalized unit every sheet is reduced to.
// Amount is always finite; unparsable cells become zero and are
// counted by the normalizer instead of being surfaced per cell.
type Row struct {
	Date      Date
	Period    string // month name derived from Date, empty when Date is null
	Dimension string // category or manager
	Amount    float64
	Metrics   map[string]float64 // secondary numeric fields (leads, orders)
}

// Metric returns a named secondary metric, zero when absent.
func (r Row) Metric(name string) float64 {
	if r.Metrics == nil {
		return 0
	}
	return r.Metrics[name]
}
