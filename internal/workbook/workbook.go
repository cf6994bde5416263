// Package workbook decodes fetched spreadsheet bytes into an ordered,
// string-typed view of sheets and rows. Everything downstream works on
// this shape regardless of which transport produced it.
package workbook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is one named table. The first row is treated as the header.
type Sheet struct {
	Name string
	Rows [][]string
}

// Header returns the label row, nil for an empty sheet.
func (s *Sheet) Header() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	return s.Rows[0]
}

// Data returns the rows after the header.
func (s *Sheet) Data() [][]string {
	if len(s.Rows) <= 1 {
		return nil
	}
	return s.Rows[1:]
}

// Workbook is the decoded document, sheets in file order.
type Workbook struct {
	Sheets []Sheet
}

// Decode parses xlsx bytes. Cell values come back as the displayed
// strings, which is what the normalizer expects.
func Decode(b []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

// Sheet finds a sheet by name, falling back to a case-insensitive
// trimmed match for sloppily named tabs.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i], true
		}
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for i := range w.Sheets {
		if strings.ToLower(strings.TrimSpace(w.Sheets[i].Name)) == want {
			return &w.Sheets[i], true
		}
	}
	return nil, false
}

// First returns the leading sheet, nil for an empty workbook.
func (w *Workbook) First() *Sheet {
	if len(w.Sheets) == 0 {
		return nil
	}
	return &w.Sheets[0]
}

// Names lists the sheet names in file order.
func (w *Workbook) Names() []string {
	out := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		out[i] = s.Name
	}
	return out
}
