package infra

import (
	"fmt"
	"time"

	"diplomsklad/internal/model"

	"github.com/xuri/excelize/v2"
)

const stockSheet = "Stock"

var stockHeaders = []string{"ID", "Barcode", "Name", "SKU", "Quantity", "Location", "Status", "Updated"}

// BuildStockWorkbook lays out one row per item. locations resolves
// location ids to display codes; unknown ids render empty.
func BuildStockWorkbook(items []model.Item, locations map[uint]model.Location) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", stockSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, h := range stockHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(stockSheet, cell, h); err != nil {
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(stockHeaders), 1)
	if err := f.SetCellStyle(stockSheet, "A1", lastHeader, bold); err != nil {
		return nil, err
	}

	total := 0
	for i, it := range items {
		row := i + 2
		sku := ""
		if it.SKU != nil {
			sku = *it.SKU
		}
		loc := ""
		if it.LocationID != nil {
			if l, ok := locations[*it.LocationID]; ok {
				loc = l.Code
			}
		}
		values := []any{it.ID, it.Barcode, it.Name, sku, it.Quantity, loc, it.Status, it.UpdatedAt.UTC().Format(time.RFC3339)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(stockSheet, cell, v); err != nil {
				return nil, err
			}
		}
		total += it.Quantity
	}

	totalRow := len(items) + 2
	_ = f.SetCellValue(stockSheet, fmt.Sprintf("D%d", totalRow), "Total")
	_ = f.SetCellValue(stockSheet, fmt.Sprintf("E%d", totalRow), total)
	_ = f.SetCellStyle(stockSheet, fmt.Sprintf("D%d", totalRow), fmt.Sprintf("E%d", totalRow), bold)

	return f, nil
}
