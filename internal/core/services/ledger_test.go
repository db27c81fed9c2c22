// internal/core/services/ledger_test.go
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
	"github.com/ammerola/stockledger/internal/core/services"
	"github.com/ammerola/stockledger/test/helpers"
)

func TestLedgerService_Query(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewLedgerService(f.store, helpers.TestLogger())
	widget := f.product(t, domain.ProductStandard, "Widget")
	gadget := f.product(t, domain.ProductStandard, "Gadget")
	f.stockIn(t, widget, 5)
	f.stockIn(t, gadget, 1)
	dispatch, err := f.engine.ApplyMovement(ctx, domain.Dispatch{MovementLine: line(widget, 2)})
	require.NoError(t, err)

	t.Run("newest_first", func(t *testing.T) {
		page, err := svc.Query(ctx, ports.LedgerQuery{WarehouseID: &f.warehouseID})
		require.NoError(t, err)

		require.Len(t, page.Items, 3)
		assert.Equal(t, dispatch.Entry.ID, page.Items[0].ID)
		assert.Equal(t, "Widget", page.Items[0].ProductName)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 50, page.PageSize)
	})

	t.Run("filters", func(t *testing.T) {
		tests := []struct {
			name  string
			query ports.LedgerQuery
			want  int
		}{
			{name: "by_product", query: ports.LedgerQuery{ProductID: &widget.ID}, want: 2},
			{name: "by_subtype", query: ports.LedgerQuery{Subtype: domain.SubtypeDispatch}, want: 1},
			{name: "other_warehouse", query: ports.LedgerQuery{WarehouseID: ptr(uuid.New())}, want: 0},
			{name: "future_window", query: ports.LedgerQuery{From: ptr(time.Now().Add(time.Hour))}, want: 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				page, err := svc.Query(ctx, tt.query)
				require.NoError(t, err)
				assert.Len(t, page.Items, tt.want)
				assert.Equal(t, int64(tt.want), page.TotalCount)
			})
		}
	})

	t.Run("reversed_window", func(t *testing.T) {
		now := time.Now()
		_, err := svc.Query(ctx, ports.LedgerQuery{From: &now, To: ptr(now.Add(-time.Hour))})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("get", func(t *testing.T) {
		entry, err := svc.Get(ctx, dispatch.Entry.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MovementOut, entry.MovementType)

		_, err = svc.Get(ctx, uuid.New())
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func ptr[T any](v T) *T {
	return &v
}
