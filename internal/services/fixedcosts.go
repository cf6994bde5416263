package services

import (
	"context"
	"fmt"
	"strings"

	"avrora/internal/core"
	"avrora/internal/sheets"
)

// Fixed-cost extraction reads by position, not by header: the source
// sheet is a free-form planning table with the item name in the first
// column and the monthly amount in the fifth.
const (
	fixedCostNameCol   = 0
	fixedCostAmountCol = 4

	// Rows at or below this amount are section labels, percentages or
	// stray numbers, not monthly cost lines.
	fixedCostFloor = 100
)

// FixedCost is one monthly cost line.
type FixedCost struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	AmountText string  `json:"amount_text"`
}

// FixedCosts is the extracted cost structure used to seed the
// break-even simulator.
type FixedCosts struct {
	Items     []FixedCost `json:"items"`
	Total     float64     `json:"total"`
	TotalText string      `json:"total_text"`
}

// FixedCostService extracts monthly fixed costs from the planning
// workbook.
type FixedCostService struct {
	reader sheets.WorkbookReader
}

func NewFixedCostService(reader sheets.WorkbookReader) *FixedCostService {
	return &FixedCostService{reader: reader}
}

// Load reads the named sheet, or the first sheet when name is empty.
// Cells that do not parse strictly as numbers are skipped, as are
// amounts at or below the floor.
func (s *FixedCostService) Load(ctx context.Context, sourceID, sheetName string) (*FixedCosts, error) {
	wb, err := s.reader.Workbook(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	if sheetName == "" {
		sheet := wb.First()
		if sheet == nil {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		rows = sheet.Rows
	} else {
		sheet, ok := wb.Sheet(sheetName)
		if !ok {
			return nil, fmt.Errorf("sheet %q not found", sheetName)
		}
		rows = sheet.Rows
	}

	out := &FixedCosts{}
	for _, raw := range rows {
		if len(raw) <= fixedCostAmountCol {
			continue
		}
		name := strings.TrimSpace(raw[fixedCostNameCol])
		if name == "" {
			continue
		}
		outc := core.ParseAmount(raw[fixedCostAmountCol])
		if outc.Defaulted || outc.Value <= fixedCostFloor {
			continue
		}
		out.Items = append(out.Items, FixedCost{
			Name:       name,
			Amount:     outc.Value,
			AmountText: core.FormatAmount(outc.Value),
		})
		out.Total += outc.Value
	}
	out.TotalText = core.FormatAmount(out.Total)
	return out, nil
}
