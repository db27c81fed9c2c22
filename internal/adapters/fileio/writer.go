// internal/adapters/fileio/writer.go
package fileio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/stockledger/internal/core/ports"
)

// ExportHeaders are the inventory export columns in order
var ExportHeaders = []string{"Product Name", "SKU", "Type", "Unit Cost", "Quantity", "Available", "Damaged"}

// ExportRow renders one snapshot as export cells. The product's cost wins over
// the snapshot's last received cost.
func ExportRow(v ports.SnapshotView) []string {
	cost := v.UnitCost
	if v.ProductCost != nil {
		cost = *v.ProductCost
	}
	return []string{
		v.ProductName,
		v.ProductSKU,
		string(v.ProductType),
		formatCost(cost),
		strconv.Itoa(v.Quantity),
		strconv.Itoa(v.AvailableQty),
		strconv.Itoa(v.DamagedQty),
	}
}

func formatCost(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// WriteCSV writes the inventory export as CSV
func WriteCSV(w io.Writer, views []ports.SnapshotView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeaders); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, v := range views {
		if err := cw.Write(ExportRow(v)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the inventory export as a one-sheet workbook
func WriteXLSX(w io.Writer, views []ports.SnapshotView) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		return fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range ExportHeaders {
		cell := headerRow.AddCell()
		cell.Value = h
		cell.GetStyle().Font.Bold = true
	}

	for _, v := range views {
		row := sheet.AddRow()
		cells := ExportRow(v)
		row.AddCell().SetString(cells[0])
		row.AddCell().SetString(cells[1])
		row.AddCell().SetString(cells[2])
		row.AddCell().SetString(cells[3])
		row.AddCell().SetInt(v.Quantity)
		row.AddCell().SetInt(v.AvailableQty)
		row.AddCell().SetInt(v.DamagedQty)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

// Write renders the export in format, csv or xlsx.
func Write(format string, w io.Writer, views []ports.SnapshotView) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, views)
	case FormatXLSX:
		return WriteXLSX(w, views)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ContentType returns the MIME type of an export format.
func ContentType(format string) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}
