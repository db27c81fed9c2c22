package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stockledger/internal/core/domain"
)

func TestParseImportRow(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]string
		check   func(t *testing.T, row domain.ImportRow)
		wantErr error
	}{
		{
			name: "type_defaults_to_standard",
			raw: map[string]string{
				"product_name":       "Mug",
				"quantity":           "12",
				"barcode_or_serials": "IGNORED-1,IGNORED-2",
			},
			check: func(t *testing.T, row domain.ImportRow) {
				assert.Equal(t, domain.ProductStandard, row.ProductType)
				assert.Equal(t, 12, row.Quantity)
				assert.Empty(t, row.Identifiers)
			},
		},
		{
			name: "serials_override_quantity",
			raw: map[string]string{
				"product_name":       "Phone",
				"product_type":       "serialized",
				"quantity":           "1",
				"barcode_or_serials": "IMEI1; IMEI2\nIMEI3",
				"unit_cost":          "$1,199.00",
			},
			check: func(t *testing.T, row domain.ImportRow) {
				assert.Equal(t, domain.ProductSerialized, row.ProductType)
				assert.Equal(t, 3, row.Quantity)
				assert.Equal(t, []string{"IMEI1", "IMEI2", "IMEI3"}, row.Identifiers)
				require.NotNil(t, row.UnitCost)
				assert.Equal(t, "1199", row.UnitCost.String())
			},
		},
		{
			name: "serialized_without_serials_keeps_quantity",
			raw: map[string]string{
				"product_name": "Legacy Router",
				"product_type": "SERIALIZED",
				"quantity":     "4",
			},
			check: func(t *testing.T, row domain.ImportRow) {
				assert.Equal(t, 4, row.Quantity)
				assert.Empty(t, row.Identifiers)
			},
		},
		{
			name: "batch_keeps_codes_for_policy",
			raw: map[string]string{
				"product_name":       "Screws",
				"product_type":       "BATCH",
				"quantity":           "500",
				"barcode_or_serials": "LOT-1",
			},
			check: func(t *testing.T, row domain.ImportRow) {
				assert.Equal(t, 500, row.Quantity)
				assert.Equal(t, []string{"LOT-1"}, row.Identifiers)
			},
		},
		{
			name:    "missing_name",
			raw:     map[string]string{"quantity": "1"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "bad_quantity",
			raw:     map[string]string{"product_name": "Mug", "quantity": "many"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "bad_type",
			raw:     map[string]string{"product_name": "Mug", "product_type": "LIQUID"},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := domain.ParseImportRow(7, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 7, row.Line)
			tt.check(t, row)
		})
	}
}

func TestImportReport_Counts(t *testing.T) {
	var report domain.ImportReport
	report.Add(domain.ImportRowResult{Line: 1, Status: domain.RowCommitted})
	report.FailRow(2, "Phone", domain.NewDuplicateIdentifierError("SN-1"))

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, domain.KindDuplicateIdentifier, report.Rows[1].ErrorKind)
}

func TestScanSession_Scan(t *testing.T) {
	s := domain.NewScanSession(testKey(), "", "picker")

	require.NoError(t, s.Scan("LOT-1"))
	require.NoError(t, s.Scan(" LOT-1 "))
	err := s.Scan("LOT-2")

	assert.ErrorIs(t, err, domain.ErrMultiBarcodeBatch)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, "LOT-1", s.Barcode)
	assert.Equal(t, []string{"LOT-1", "LOT-1"}, s.Scans())
	assert.Equal(t, domain.MovementIn, s.Direction)

	require.NoError(t, s.Finish(domain.SessionClosed))
	assert.ErrorIs(t, s.Scan("LOT-1"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, s.Finish(domain.SessionCommitted), domain.ErrInvalidTransition)
}
