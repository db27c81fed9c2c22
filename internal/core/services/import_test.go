// internal/core/services/import_test.go
package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
	"github.com/ammerola/stockledger/internal/core/services"
	"github.com/ammerola/stockledger/test/helpers"
)

func serializedRows(n int) []domain.RawImportRow {
	rows := make([]domain.RawImportRow, n)
	for i := range rows {
		rows[i] = domain.RawImportRow{
			Line: i + 1,
			Values: map[string]string{
				domain.ColumnProductName: fmt.Sprintf("Router %d", i+1),
				domain.ColumnSKU:         fmt.Sprintf("RT-%d", i+1),
				domain.ColumnUnitCost:    "$1,250.00",
				domain.ColumnProductType: "serialized",
				domain.ColumnIdentifiers: fmt.Sprintf("IMP-%03d", i+1),
			},
		}
	}
	return rows
}

func (f *fixture) target() ports.ImportTarget {
	return ports.ImportTarget{WarehouseID: f.warehouseID, ClientID: f.clientID, CreatedBy: "importer"}
}

func TestImportService_ReportFollowsFileOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewImportService(f.store, f.engine, f.registry, helpers.TestLogger())

	rows := serializedRows(4)
	rows[2].Values[domain.ColumnProductName] = ""
	rows[3].Values[domain.ColumnQuantity] = "many"
	rows[3].Values[domain.ColumnIdentifiers] = ""
	rows[3].Values[domain.ColumnProductType] = "standard"

	report, err := svc.Import(ctx, f.target(), rows)
	require.NoError(t, err)

	lines := make([]int, 0, len(report.Rows))
	for _, row := range report.Rows {
		lines = append(lines, row.Line)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, lines)
	assert.Equal(t, domain.RowCommitted, report.Rows[0].Status)
	assert.Equal(t, domain.RowFailed, report.Rows[2].Status)
	assert.Equal(t, domain.KindValidation, report.Rows[2].ErrorKind)
	assert.Equal(t, domain.RowFailed, report.Rows[3].Status)
	assert.Equal(t, 2, report.Succeeded)
}

func TestImportService_PartialSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewImportService(f.store, f.engine, f.registry, helpers.TestLogger())

	existing := f.product(t, domain.ProductSerialized, "Existing Router")
	f.stockIn(t, existing, 1, "IMP-004")
	before := f.store.LedgerLen()

	report, err := svc.Import(ctx, f.target(), serializedRows(10))
	require.NoError(t, err)

	assert.Equal(t, 10, report.Total)
	assert.Equal(t, 9, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, domain.JobCompletedWithErrors, report.StatusFor())
	assert.Equal(t, before+9, f.store.LedgerLen())

	for _, row := range report.Rows {
		if row.Line == 4 {
			assert.Equal(t, domain.RowFailed, row.Status)
			assert.Equal(t, domain.KindDuplicateIdentifier, row.ErrorKind)
			assert.Nil(t, row.LedgerEntryID)
			continue
		}
		assert.Equal(t, domain.RowCommitted, row.Status, "line %d", row.Line)
		require.NotNil(t, row.ProductID)
		require.NotNil(t, row.LedgerEntryID)
	}

	statuses := f.identifierStatus(t, "IMP-001", "IMP-004", "IMP-010")
	assert.Equal(t, domain.IdentifierInStock, statuses["IMP-001"])
	assert.Equal(t, domain.IdentifierInStock, statuses["IMP-010"])
	owner, err := f.registry.Lookup(ctx, f.warehouseID, "IMP-004")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, owner.ProductID)

	entry, err := f.store.Repositories().Ledger.FindByID(ctx, *report.Rows[0].LedgerEntryID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubtypeImport, entry.MovementSubtype)
	require.NotNil(t, entry.UnitCost)
	assert.Equal(t, "1250", entry.UnitCost.String())
}

func TestImportService_RowFailures(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]string
		wantKind domain.ErrorKind
	}{
		{
			name:     "missing_product_name",
			values:   map[string]string{domain.ColumnQuantity: "3"},
			wantKind: domain.KindValidation,
		},
		{
			name:     "bad_quantity",
			values:   map[string]string{domain.ColumnProductName: "Widget", domain.ColumnQuantity: "three"},
			wantKind: domain.KindValidation,
		},
		{
			name:     "bad_unit_cost",
			values:   map[string]string{domain.ColumnProductName: "Widget", domain.ColumnQuantity: "1", domain.ColumnUnitCost: "cheap"},
			wantKind: domain.KindValidation,
		},
		{
			name:     "standard_without_quantity",
			values:   map[string]string{domain.ColumnProductName: "Widget"},
			wantKind: domain.KindValidation,
		},
		{
			name: "batch_with_two_codes",
			values: map[string]string{
				domain.ColumnProductName: "Crate",
				domain.ColumnProductType: "BATCH",
				domain.ColumnIdentifiers: "LOT-1, LOT-2",
			},
			wantKind: domain.KindMultiBarcodeBatch,
		},
		{
			name: "repeated_serial_in_row",
			values: map[string]string{
				domain.ColumnProductName: "Phone",
				domain.ColumnProductType: "SERIALIZED",
				domain.ColumnIdentifiers: "SN-1;SN-1",
			},
			wantKind: domain.KindDuplicateIdentifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			svc := services.NewImportService(f.store, f.engine, f.registry, helpers.TestLogger())

			report, err := svc.Import(ctx, f.target(), []domain.RawImportRow{
				{Line: 1, Values: tt.values},
				{Line: 2, Values: map[string]string{domain.ColumnProductName: "Good Row", domain.ColumnQuantity: "2"}},
			})
			require.NoError(t, err)

			require.Len(t, report.Rows, 2)
			assert.Equal(t, 1, report.Succeeded)
			var failed *domain.ImportRowResult
			for i := range report.Rows {
				if report.Rows[i].Line == 1 {
					failed = &report.Rows[i]
				}
			}
			require.NotNil(t, failed)
			assert.Equal(t, domain.RowFailed, failed.Status)
			assert.Equal(t, tt.wantKind, failed.ErrorKind)
			assert.Equal(t, 1, f.store.LedgerLen())
		})
	}
}

func TestImportService_ExistingProductTypeMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewImportService(f.store, f.engine, f.registry, helpers.TestLogger())
	f.product(t, domain.ProductStandard, "Widget")

	report, err := svc.Import(ctx, f.target(), []domain.RawImportRow{{
		Line: 1,
		Values: map[string]string{
			domain.ColumnProductName: "Widget",
			domain.ColumnProductType: "SERIALIZED",
			domain.ColumnIdentifiers: "SN-1",
		},
	}})
	require.NoError(t, err)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, domain.KindValidation, report.Rows[0].ErrorKind)
}

func TestImportService_ReusesExistingProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewImportService(f.store, f.engine, f.registry, helpers.TestLogger())
	widget := f.product(t, domain.ProductStandard, "Widget")

	report, err := svc.Import(ctx, f.target(), []domain.RawImportRow{
		{Line: 1, Values: map[string]string{domain.ColumnProductName: "widget", domain.ColumnQuantity: "4"}},
	})
	require.NoError(t, err)

	require.Equal(t, 1, report.Succeeded)
	assert.Equal(t, widget.ID, *report.Rows[0].ProductID)
	assert.Equal(t, 4, f.snapshot(t, widget).AvailableQty)
}

func TestImportService_RequiresTarget(t *testing.T) {
	f := newFixture(t)
	svc := services.NewImportService(f.store, f.engine, f.registry, helpers.TestLogger())

	_, err := svc.Import(context.Background(), ports.ImportTarget{WarehouseID: f.warehouseID}, serializedRows(1))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestImportService_Jobs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewImportService(f.store, f.engine, f.registry, helpers.TestLogger())

	t.Run("run_stores_report", func(t *testing.T) {
		job := &domain.ImportJob{WarehouseID: f.warehouseID, ClientID: f.clientID, Source: "csv", FileKey: "imports/a.csv"}
		require.NoError(t, svc.CreateJob(ctx, job))
		assert.NotEqual(t, uuid.Nil, job.ID)
		assert.Equal(t, domain.JobQueued, job.Status)

		rows := serializedRows(3)
		rows[2].Values[domain.ColumnQuantity] = "x"
		report, err := svc.RunJob(ctx, job.ID, rows)
		require.NoError(t, err)
		assert.Equal(t, job.ID.String(), report.JobID)

		stored, err := svc.GetJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobCompletedWithErrors, stored.Status)
		require.NotNil(t, stored.Report)
		assert.Equal(t, 2, stored.Report.Succeeded)
		assert.Equal(t, 1, stored.Report.Failed)
	})

	t.Run("fail_records_cause", func(t *testing.T) {
		job := &domain.ImportJob{WarehouseID: f.warehouseID, ClientID: f.clientID, Source: "pdf"}
		require.NoError(t, svc.CreateJob(ctx, job))

		require.NoError(t, svc.FailJob(ctx, job.ID, errors.New("unreadable pdf")))

		stored, err := svc.GetJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobFailed, stored.Status)
		assert.Equal(t, "unreadable pdf", stored.Error)
	})

	t.Run("create_requires_target", func(t *testing.T) {
		err := svc.CreateJob(ctx, &domain.ImportJob{Source: "csv"})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown_job", func(t *testing.T) {
		_, err := svc.RunJob(ctx, uuid.New(), nil)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
