package services

import (
	"context"
	"fmt"
	"strings"

	"avrora/internal/core"
	"avrora/internal/schema"
	"avrora/internal/sheets"
)

// PriceItem is one catalog position: material cost plus the standing
// base price used to pre-fill the cart calculator.
type PriceItem struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Cost      float64 `json:"cost"`
	BasePrice float64 `json:"base_price"`
}

// CatalogService reads the price-list workbook for the cart
// calculator.
type CatalogService struct {
	reader sheets.WorkbookReader
}

func NewCatalogService(reader sheets.WorkbookReader) *CatalogService {
	return &CatalogService{reader: reader}
}

// Items reads the named sheet, or the first sheet when name is empty.
// Rows without a name are skipped; costs and prices parse leniently.
func (s *CatalogService) Items(ctx context.Context, sourceID, sheetName string) ([]PriceItem, error) {
	wb, err := s.reader.Workbook(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	var name string
	var header []string
	var data [][]string
	if sheetName == "" {
		sheet := wb.First()
		if sheet == nil {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		name, header, data = sheet.Name, sheet.Header(), sheet.Data()
	} else {
		sheet, ok := wb.Sheet(sheetName)
		if !ok {
			return nil, fmt.Errorf("sheet %q not found", sheetName)
		}
		name, header, data = sheet.Name, sheet.Header(), sheet.Data()
	}

	m := schema.Resolve(header, schema.PriceList())
	if err := schema.CheckRequired(name, m, core.FieldName, core.FieldCost); err != nil {
		return nil, err
	}

	nameIdx := m.Index(core.FieldName)
	categoryIdx := m.Index(core.FieldCategory)
	costIdx := m.Index(core.FieldCost)
	priceIdx := m.Index(core.FieldBasePrice)

	var items []PriceItem
	for _, raw := range data {
		itemName := strings.TrimSpace(cell(raw, nameIdx))
		if itemName == "" {
			continue
		}
		item := PriceItem{
			Name:     itemName,
			Category: strings.TrimSpace(cell(raw, categoryIdx)),
			Cost:     core.ParseAmount(cell(raw, costIdx)).Value,
		}
		if priceIdx >= 0 {
			item.BasePrice = core.ParseAmount(cell(raw, priceIdx)).Value
		}
		items = append(items, item)
	}
	return items, nil
}

// Categories lists distinct categories in catalog order.
func Categories(items []PriceItem) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, it := range items {
		c := it.Category
		if c == "" {
			c = core.DefaultDimension
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ByCategory filters the catalog to one category.
func ByCategory(items []PriceItem, category string) []PriceItem {
	var out []PriceItem
	for _, it := range items {
		c := it.Category
		if c == "" {
			c = core.DefaultDimension
		}
		if c == category {
			out = append(out, it)
		}
	}
	return out
}

// Find looks an item up by exact name.
func Find(items []PriceItem, name string) (PriceItem, bool) {
	for _, it := range items {
		if it.Name == name {
			return it, true
		}
	}
	return PriceItem{}, false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
