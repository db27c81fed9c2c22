// internal/core/domain/import_row.go
package domain

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Import column names
const (
	ColumnProductName = "product_name"
	ColumnSKU         = "sku"
	ColumnUnitCost    = "unit_cost"
	ColumnQuantity    = "quantity"
	ColumnProductType = "product_type"
	ColumnIdentifiers = "barcode_or_serials"
	ColumnNotes       = "notes"
)

// RawImportRow is one row as read from a file, keyed by normalized column name
type RawImportRow struct {
	Line   int
	Values map[string]string
}

// ImportRow is one parsed row of a bulk import file
type ImportRow struct {
	Line        int              `json:"line"`
	ProductName string           `json:"product_name"`
	SKU         string           `json:"sku,omitempty"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Quantity    int              `json:"quantity"`
	ProductType ProductType      `json:"product_type"`
	Identifiers []string         `json:"identifiers,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

// ParseImportRow converts raw column values into an import row. Serials are only
// split for SERIALIZED and BATCH rows; when any are present the quantity is the
// identifier count.
func ParseImportRow(line int, raw map[string]string) (ImportRow, error) {
	get := func(col string) string {
		return strings.TrimSpace(raw[col])
	}

	row := ImportRow{
		Line:        line,
		ProductName: get(ColumnProductName),
		SKU:         get(ColumnSKU),
		Notes:       get(ColumnNotes),
	}
	if row.ProductName == "" {
		return row, NewValidationError("line %d: product_name is required", line)
	}

	productType, err := ParseProductType(get(ColumnProductType))
	if err != nil {
		return row, NewValidationError("line %d: %s", line, err.Error())
	}
	row.ProductType = productType

	if q := get(ColumnQuantity); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return row, NewValidationError("line %d: invalid quantity %q", line, q)
		}
		row.Quantity = n
	}

	if c := get(ColumnUnitCost); c != "" {
		cost, err := parseCurrency(c)
		if err != nil {
			return row, NewValidationError("line %d: invalid unit_cost %q", line, c)
		}
		row.UnitCost = &cost
	}

	if productType != ProductStandard {
		row.Identifiers = SplitIdentifiers(get(ColumnIdentifiers))
	}
	if productType == ProductSerialized && len(row.Identifiers) > 0 {
		row.Quantity = len(row.Identifiers)
	}

	return row, nil
}

func parseCurrency(val string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(val, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return decimal.NewFromString(strings.TrimSpace(cleaned))
}

// Import row outcomes
const (
	RowCommitted = "committed"
	RowFailed    = "failed"
)

// ImportRowResult is the outcome of one row
type ImportRowResult struct {
	Line          int        `json:"line"`
	ProductName   string     `json:"product_name,omitempty"`
	Status        string     `json:"status"`
	ErrorKind     ErrorKind  `json:"error_kind,omitempty"`
	Error         string     `json:"error,omitempty"`
	ProductID     *uuid.UUID `json:"product_id,omitempty"`
	LedgerEntryID *uuid.UUID `json:"ledger_entry_id,omitempty"`
}

// ImportReport is the per-row breakdown of a bulk import
type ImportReport struct {
	JobID     string            `json:"job_id,omitempty"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Rows      []ImportRowResult `json:"rows"`
}

// Add records a row outcome and updates the counters.
func (r *ImportReport) Add(res ImportRowResult) {
	r.Rows = append(r.Rows, res)
	r.Total++
	if res.Status == RowCommitted {
		r.Succeeded++
	} else {
		r.Failed++
	}
}

// SortRows orders the row results by file line.
func (r *ImportReport) SortRows() {
	slices.SortStableFunc(r.Rows, func(a, b ImportRowResult) int {
		return cmp.Compare(a.Line, b.Line)
	})
}

// FailRow records a row that could not be applied.
func (r *ImportReport) FailRow(line int, name string, err error) {
	r.Add(ImportRowResult{
		Line:        line,
		ProductName: name,
		Status:      RowFailed,
		ErrorKind:   KindOf(err),
		Error:       err.Error(),
	})
}

// ImportJobStatus is the state of an asynchronous import
type ImportJobStatus string

// Import job status constants
const (
	JobQueued              ImportJobStatus = "queued"
	JobProcessing          ImportJobStatus = "processing"
	JobCompleted           ImportJobStatus = "completed"
	JobCompletedWithErrors ImportJobStatus = "completed_with_errors"
	JobFailed              ImportJobStatus = "failed"
)

// ImportJob tracks an uploaded file through the import worker
type ImportJob struct {
	ID          uuid.UUID       `json:"id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ClientID    uuid.UUID       `json:"client_id"`
	Source      string          `json:"source"`
	FileKey     string          `json:"file_key"`
	Status      ImportJobStatus `json:"status"`
	Report      *ImportReport   `json:"report,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// StatusFor picks the final job status from a report.
func (r *ImportReport) StatusFor() ImportJobStatus {
	if r.Failed > 0 {
		return JobCompletedWithErrors
	}
	return JobCompleted
}
