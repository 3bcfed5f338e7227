// Package export renders line items as spreadsheets.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/zombor/receipt-items/internal/itemize"
)

// SheetName is the worksheet holding the items
const SheetName = "Items"

// ContentTypeXLSX is the MIME type of ItemsXLSX output
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"Name", "Weight", "Unit", "Count"}

// ItemsXLSX writes one row per item under a header row. Every value is
// stored as text so counts like "02" keep their leading zero.
func ItemsXLSX(items []itemize.LineItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	for i, item := range items {
		row := i + 2
		for col, v := range []string{item.Name, item.Weight, item.Unit, item.Quantity} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellStr(SheetName, cell, v); err != nil {
				return nil, fmt.Errorf("writing %s: %w", cell, err)
			}
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 32) // name
	_ = f.SetColWidth(SheetName, "B", "D", 10)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
