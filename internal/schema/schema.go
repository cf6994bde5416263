// Package schema maps the loose header labels found in the source
// spreadsheets onto the canonical field set. Matching is data-driven:
// each sheet family declares an ordered synonym table instead of
// scattering substring checks through the reports.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"avrora/internal/core"
)

// Rule binds one canonical field to the lower-cased substrings that
// identify it in a header label.
type Rule struct {
	Field      core.Field
	Substrings []string
}

// Table is an ordered synonym table. Order matters: the first rule
// whose substring appears in a header claims that header.
type Table []Rule

// Mapping is the resolved assignment of source headers to canonical
// fields for one sheet.
type Mapping struct {
	byLabel map[string]core.Field
	index   map[core.Field]int
}

// Resolve matches every header against the table. A header matches at
// most one field (first rule wins); a header matching nothing stays
// unmapped. When several headers match the same field the leftmost
// column is used.
func Resolve(header []string, table Table) Mapping {
	m := Mapping{
		byLabel: make(map[string]core.Field, len(header)),
		index:   make(map[core.Field]int, len(table)),
	}
	for i, label := range header {
		low := strings.ToLower(strings.TrimSpace(label))
		if low == "" {
			continue
		}
		for _, rule := range table {
			if !matches(low, rule.Substrings) {
				continue
			}
			m.byLabel[label] = rule.Field
			if _, taken := m.index[rule.Field]; !taken {
				m.index[rule.Field] = i
			}
			break
		}
	}
	return m
}

func matches(lowLabel string, substrings []string) bool {
	for _, s := range substrings {
		if strings.Contains(lowLabel, s) {
			return true
		}
	}
	return false
}

// Field returns the canonical field a source label resolved to.
func (m Mapping) Field(label string) (core.Field, bool) {
	f, ok := m.byLabel[label]
	return f, ok
}

// Index returns the column index backing a canonical field, -1 when
// the field was not found in the header.
func (m Mapping) Index(f core.Field) int {
	if i, ok := m.index[f]; ok {
		return i
	}
	return -1
}

// Columns returns the field → column-index view the normalizer
// consumes.
func (m Mapping) Columns() map[core.Field]int {
	out := make(map[core.Field]int, len(m.index))
	for f, i := range m.index {
		out[f] = i
	}
	return out
}

// MissingRequired lists required fields absent from the mapping,
// sorted for stable error messages.
func (m Mapping) MissingRequired(required ...core.Field) []core.Field {
	var missing []core.Field
	for _, f := range required {
		if _, ok := m.index[f]; !ok {
			missing = append(missing, f)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// MissingFieldsError is the per-sheet schema failure: the sheet cannot
// be reported on, but other sheets proceed.
type MissingFieldsError struct {
	Sheet  string
	Fields []core.Field
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("sheet %q: missing required columns: %s", e.Sheet, strings.Join(names, ", "))
}

// CheckRequired returns a MissingFieldsError when any required field
// is unresolved.
func CheckRequired(sheet string, m Mapping, required ...core.Field) error {
	if missing := m.MissingRequired(required...); len(missing) > 0 {
		return &MissingFieldsError{Sheet: sheet, Fields: missing}
	}
	return nil
}

// Expenses matches the expense and ad-spend sheets. The ad-spend
// amount header is "Сумма в тенге", which the plain "сумма" synonym
// also covers.
func Expenses() Table {
	return Table{
		{Field: core.FieldDate, Substrings: []string{"дата"}},
		{Field: core.FieldCategory, Substrings: []string{"категория"}},
		{Field: core.FieldAmount, Substrings: []string{"сумма"}},
	}
}

// MonthlySales matches the sales-by-month summary sheet.
func MonthlySales() Table {
	return Table{
		{Field: core.FieldMonth, Substrings: []string{"месяц"}},
		{Field: core.FieldAmount, Substrings: []string{"сумма"}},
	}
}

// ManagerSales matches the per-city manager performance sheets. Rule
// order mirrors the header quirk that "итого лидов" style labels must
// resolve as leads, not revenue.
func ManagerSales() Table {
	return Table{
		{Field: core.FieldManager, Substrings: []string{"имя менеджера", "менеджер"}},
		{Field: core.FieldLeads, Substrings: []string{"лидов", "лиды"}},
		{Field: core.FieldOrders, Substrings: []string{"оформлены", "заказ"}},
		{Field: core.FieldRevenue, Substrings: []string{"итого", "выручка"}},
		{Field: core.FieldDate, Substrings: []string{"дата"}},
	}
}

// PriceList matches the product catalog sheet used by the markup
// calculator. The cost rule precedes the price rule so a combined
// header resolves as cost.
func PriceList() Table {
	return Table{
		{Field: core.FieldName, Substrings: []string{"название", "наименование"}},
		{Field: core.FieldCategory, Substrings: []string{"категория"}},
		{Field: core.FieldCost, Substrings: []string{"себестоимость"}},
		{Field: core.FieldBasePrice, Substrings: []string{"цена"}},
	}
}
