// internal/adapters/fileio/reader.go
package fileio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/stockledger/internal/core/domain"
)

// ErrNoHeader is returned when a file has no recognizable header row.
var ErrNoHeader = errors.New("missing product_name header")

// headerAliases maps normalized header text to import columns
var headerAliases = map[string]string{
	"product_name":       domain.ColumnProductName,
	"product":            domain.ColumnProductName,
	"name":               domain.ColumnProductName,
	"item":               domain.ColumnProductName,
	"sku":                domain.ColumnSKU,
	"unit_cost":          domain.ColumnUnitCost,
	"cost":               domain.ColumnUnitCost,
	"price":              domain.ColumnUnitCost,
	"quantity":           domain.ColumnQuantity,
	"qty":                domain.ColumnQuantity,
	"product_type":       domain.ColumnProductType,
	"type":               domain.ColumnProductType,
	"barcode_or_serials": domain.ColumnIdentifiers,
	"barcode":            domain.ColumnIdentifiers,
	"serials":            domain.ColumnIdentifiers,
	"serial_numbers":     domain.ColumnIdentifiers,
	"identifiers":        domain.ColumnIdentifiers,
	"notes":              domain.ColumnNotes,
}

// NormalizeHeader maps a header cell to its import column, or "" when unknown.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(h)
	return headerAliases[h]
}

// header resolves column positions; unknown columns are ignored.
func header(cells []string) (map[int]string, error) {
	cols := make(map[int]string, len(cells))
	found := false
	for i, c := range cells {
		if name := NormalizeHeader(c); name != "" {
			cols[i] = name
			found = found || name == domain.ColumnProductName
		}
	}
	if !found {
		return nil, ErrNoHeader
	}
	return cols, nil
}

func rowValues(cols map[int]string, cells []string) (map[string]string, bool) {
	values := make(map[string]string, len(cols))
	blank := true
	for i, name := range cols {
		if i < len(cells) {
			v := strings.TrimSpace(cells[i])
			values[name] = v
			if v != "" {
				blank = false
			}
		}
	}
	return values, blank
}

// ReadCSV reads an import file. Line numbers are 1-based file lines, so the
// first data row is line 2. Blank rows are skipped; maxRows of 0 means no limit.
func ReadCSV(r io.Reader, maxRows int) ([]domain.RawImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols, err := header(first)
	if err != nil {
		return nil, err
	}

	var rows []domain.RawImportRow
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}
		values, blank := rowValues(cols, record)
		if blank {
			continue
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return nil, fmt.Errorf("file exceeds the limit of %d rows", maxRows)
		}
		rows = append(rows, domain.RawImportRow{Line: line, Values: values})
	}
	return rows, nil
}

// ReadXLSX reads the first sheet of a workbook with the same rules as ReadCSV.
func ReadXLSX(data []byte, maxRows int) ([]domain.RawImportRow, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, ErrNoHeader
	}
	sheet := file.Sheets[0]

	var (
		rows  []domain.RawImportRow
		cols  map[int]string
		line  int
		limit = errors.New("row limit")
	)
	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		line++
		cells := make([]string, sheet.MaxCol)
		for i := range cells {
			if c := r.GetCell(i); c != nil {
				cells[i] = c.String()
			}
		}

		if cols == nil {
			var err error
			cols, err = header(cells)
			return err
		}
		values, blank := rowValues(cols, cells)
		if blank {
			return nil
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return limit
		}
		rows = append(rows, domain.RawImportRow{Line: line, Values: values})
		return nil
	})
	if errors.Is(err, limit) {
		return nil, fmt.Errorf("file exceeds the limit of %d rows", maxRows)
	}
	if err != nil {
		return nil, err
	}
	if cols == nil {
		return nil, ErrNoHeader
	}
	return rows, nil
}

// Read dispatches on the upload format: csv, xlsx or pdf.
func Read(format string, data []byte, maxRows int) ([]domain.RawImportRow, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ReadCSV(bytes.NewReader(data), maxRows)
	case FormatXLSX:
		return ReadXLSX(data, maxRows)
	case FormatPDF:
		return ReadManifest(bytes.NewReader(data), int64(len(data)), maxRows)
	default:
		return nil, fmt.Errorf("unsupported import format %q", format)
	}
}

// Upload formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)
