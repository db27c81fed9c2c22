package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stockledger/internal/core/domain"
)

func TestMovementRequest_ToMovement(t *testing.T) {
	base := func() domain.MovementRequest {
		return domain.MovementRequest{
			WarehouseID: uuid.New(),
			ProductID:   uuid.New(),
			ClientID:    uuid.New(),
			Quantity:    2,
			Notes:       "dock 4",
		}
	}
	returnID := uuid.New()
	dest := uuid.New()

	tests := []struct {
		name          string
		mutate        func(*domain.MovementRequest)
		wantDirection domain.MovementType
		wantSubtype   domain.MovementSubtype
		wantCondition domain.ItemCondition
		check         func(t *testing.T, m domain.Movement)
		wantErr       error
	}{
		{
			name: "stock_in_damaged",
			mutate: func(r *domain.MovementRequest) {
				r.Subtype = domain.SubtypeStockIn
				r.Condition = "damaged"
			},
			wantDirection: domain.MovementIn,
			wantSubtype:   domain.SubtypeStockIn,
			wantCondition: domain.ConditionDamaged,
		},
		{
			name: "stock_in_carries_unit_cost",
			mutate: func(r *domain.MovementRequest) {
				r.Subtype = domain.SubtypeStockIn
				c := decimal.RequireFromString("3.20")
				r.UnitCost = &c
			},
			wantDirection: domain.MovementIn,
			wantSubtype:   domain.SubtypeStockIn,
			wantCondition: domain.ConditionGood,
			check: func(t *testing.T, m domain.Movement) {
				require.NotNil(t, domain.UnitCostOf(m))
				assert.Equal(t, "3.2", domain.UnitCostOf(m).String())
			},
		},
		{
			name: "dispatch_infers_out",
			mutate: func(r *domain.MovementRequest) {
				r.Subtype = "dispatch"
			},
			wantDirection: domain.MovementOut,
			wantSubtype:   domain.SubtypeDispatch,
			wantCondition: domain.ConditionGood,
		},
		{
			name: "dispatch_marked_in_is_rejected",
			mutate: func(r *domain.MovementRequest) {
				r.Subtype = domain.SubtypeDispatch
				r.MovementType = domain.MovementIn
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "return_links_request",
			mutate: func(r *domain.MovementRequest) {
				r.Subtype = domain.SubtypeReturn
				r.ReturnID = &returnID
			},
			wantDirection: domain.MovementIn,
			wantSubtype:   domain.SubtypeReturn,
			wantCondition: domain.ConditionGood,
			check: func(t *testing.T, m domain.Movement) {
				ret, ok := m.(domain.Return)
				require.True(t, ok)
				assert.Equal(t, returnID, ret.ReturnID)
			},
		},
		{
			name: "transfer_out",
			mutate: func(r *domain.MovementRequest) {
				r.Subtype = domain.SubtypeTransfer
				r.MovementType = domain.MovementOut
				r.CounterpartWarehouseID = &dest
			},
			wantDirection: domain.MovementOut,
			wantSubtype:   domain.SubtypeTransfer,
			wantCondition: domain.ConditionGood,
			check: func(t *testing.T, m domain.Movement) {
				out, ok := m.(domain.TransferOut)
				require.True(t, ok)
				assert.Equal(t, dest, out.DestinationWarehouseID)
			},
		},
		{
			name: "transfer_requires_direction",
			mutate: func(r *domain.MovementRequest) {
				r.Subtype = domain.SubtypeTransfer
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "unknown_subtype",
			mutate: func(r *domain.MovementRequest) {
				r.Subtype = "TELEPORT"
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "missing_product",
			mutate: func(r *domain.MovementRequest) {
				r.Subtype = domain.SubtypeStockIn
				r.ProductID = uuid.Nil
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "unknown_condition",
			mutate: func(r *domain.MovementRequest) {
				r.Subtype = domain.SubtypeStockIn
				r.Condition = "soggy"
			},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(&req)

			m, err := req.ToMovement()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantDirection, m.Direction())
			assert.Equal(t, tt.wantSubtype, m.Subtype())
			assert.Equal(t, tt.wantCondition, m.Condition())
			assert.Equal(t, req.Quantity, m.Line().Quantity)
			assert.Equal(t, req.ProductID, m.Line().Key.ProductID)
			if tt.check != nil {
				tt.check(t, m)
			}
		})
	}
}

func TestNewLedgerEntry(t *testing.T) {
	key := testKey()
	returnID := uuid.New()
	m := domain.Return{
		MovementLine:  domain.MovementLine{Key: key, Quantity: 2, Notes: "rma", CreatedBy: "inspector"},
		ItemCondition: domain.ConditionDamaged,
		ReturnID:      returnID,
	}

	e := domain.NewLedgerEntry(m, domain.PolicyResult{Quantity: 2, Identifiers: []string{"A", "B"}})

	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, key, e.Key())
	assert.Equal(t, domain.MovementIn, e.MovementType)
	assert.Equal(t, domain.SubtypeReturn, e.MovementSubtype)
	assert.Equal(t, domain.ConditionDamaged, e.ItemCondition)
	assert.Equal(t, []string{"A", "B"}, e.UniqueIdentifiers)
	require.NotNil(t, e.ReferenceID)
	assert.Equal(t, returnID, *e.ReferenceID)
	assert.NoError(t, e.Validate())

	out := domain.NewLedgerEntry(domain.Dispatch{MovementLine: domain.MovementLine{Key: key, Quantity: 1}},
		domain.PolicyResult{Quantity: 1})
	assert.Empty(t, out.ItemCondition, "OUT entries carry no condition")
}

func TestWithIdentifiers(t *testing.T) {
	m := domain.Import{MovementLine: domain.MovementLine{Quantity: 5}, Row: 3}

	got := domain.WithIdentifiers(m, 2, []string{"X", "Y"})

	imp, ok := got.(domain.Import)
	require.True(t, ok)
	assert.Equal(t, 2, imp.Quantity)
	assert.Equal(t, []string{"X", "Y"}, imp.Identifiers)
	assert.Equal(t, 3, imp.Row)
	assert.Equal(t, 5, m.Quantity, "original is untouched")
}
