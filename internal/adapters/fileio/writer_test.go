// internal/adapters/fileio/writer_test.go
package fileio_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/stockledger/internal/adapters/fileio"
	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

func exportViews() []ports.SnapshotView {
	productCost := decimal.RequireFromString("19.5")
	return []ports.SnapshotView{
		{
			InventorySnapshot: domain.InventorySnapshot{
				ID: uuid.New(), Quantity: 5, AvailableQty: 4, DamagedQty: 1,
				UnitCost: decimal.RequireFromString("12"),
			},
			ProductName: "Phone", ProductSKU: "PH-1", ProductType: domain.ProductSerialized,
			ProductCost: &productCost,
		},
		{
			InventorySnapshot: domain.InventorySnapshot{
				ID: uuid.New(), Quantity: 10, AvailableQty: 10,
				UnitCost: decimal.RequireFromString("1.255"),
			},
			ProductName: "Cable", ProductType: domain.ProductStandard,
		},
	}
}

func TestExportRow(t *testing.T) {
	views := exportViews()
	assert.Equal(t, []string{"Phone", "PH-1", "SERIALIZED", "19.50", "5", "4", "1"}, fileio.ExportRow(views[0]))
	assert.Equal(t, []string{"Cable", "", "STANDARD", "1.26", "10", "10", "0"}, fileio.ExportRow(views[1]))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, fileio.WriteCSV(&buf, exportViews()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Product Name", "SKU", "Type", "Unit Cost", "Quantity", "Available", "Damaged"}, records[0])
	assert.Equal(t, "Phone", records[1][0])
	assert.Equal(t, "10", records[2][4])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, fileio.WriteCSV(&buf, nil))
	assert.Equal(t, "Product Name,SKU,Type,Unit Cost,Quantity,Available,Damaged\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, fileio.WriteXLSX(&buf, exportViews()))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := file.Sheet["Inventory"]
	require.True(t, ok)
	assert.Equal(t, 3, sheet.MaxRow)

	header, err := sheet.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Product Name", header.Value)

	qty, err := sheet.Cell(1, 4)
	require.NoError(t, err)
	assert.Equal(t, "5", qty.Value)

	// the workbook reads back as an import file
	rows, err := fileio.ReadXLSX(buf.Bytes(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Cable", rows[1].Values[domain.ColumnProductName])
	assert.Equal(t, "STANDARD", rows[1].Values[domain.ColumnProductType])
}

func TestWrite_Dispatch(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{name: "csv", format: fileio.FormatCSV},
		{name: "xlsx", format: fileio.FormatXLSX},
		{name: "pdf_not_supported", format: fileio.FormatPDF, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := fileio.Write(tt.format, &buf, exportViews())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, buf.Len())
		})
	}

	assert.Equal(t, "text/csv", fileio.ContentType(fileio.FormatCSV))
}
