// internal/core/services/scan_test.go
package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/ammerola/stockledger/internal/adapters/redis_adapter"
	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
	"github.com/ammerola/stockledger/internal/core/services"
	"github.com/ammerola/stockledger/test/helpers"
)

func newScanService(t *testing.T, f *fixture) (*services.ScanService, *redis_a.ScanSessionStore) {
	t.Helper()
	rdb := helpers.SetupTestRedis(t)
	logger := helpers.TestLogger()
	sessions := redis_a.NewScanSessionStore(redis_a.NewCache(rdb.Client, time.Minute, logger), 30*time.Minute)
	return services.NewScanService(f.store, sessions, f.engine, logger), sessions
}

func TestScanService_BatchSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, sessions := newScanService(t, f)
	crate := f.product(t, domain.ProductBatch, "Crate")

	session, err := svc.Open(ctx, ports.OpenSessionRequest{
		WarehouseID: f.warehouseID,
		ProductID:   crate.ID,
		ClientID:    f.clientID,
		CreatedBy:   "scanner",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MovementIn, session.Direction)

	_, err = svc.Scan(ctx, session.ID, "LOT-42")
	require.NoError(t, err)
	scanned, err := svc.Scan(ctx, session.ID, "LOT-42")
	require.NoError(t, err)
	assert.Equal(t, 2, scanned.Count)

	_, err = svc.Scan(ctx, session.ID, "LOT-43")
	require.ErrorIs(t, err, domain.ErrMultiBarcodeBatch)

	stored, err := sessions.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Count)
	assert.Equal(t, "LOT-42", stored.Barcode)
	assert.Equal(t, 0, f.store.LedgerLen())

	res, err := svc.Commit(ctx, session.ID, "dock 3")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Entry.Quantity)
	assert.Equal(t, "LOT-42", res.Entry.BatchCode)
	assert.Equal(t, domain.SubtypeStockIn, res.Entry.MovementSubtype)
	assert.Equal(t, 2, res.Snapshot.AvailableQty)

	_, err = svc.Commit(ctx, session.ID, "")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 1, f.store.LedgerLen())

	require.NoError(t, svc.Close(ctx, session.ID))
	_, err = svc.Scan(ctx, session.ID, "LOT-42")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanService_OutboundSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newScanService(t, f)
	crate := f.product(t, domain.ProductBatch, "Crate")
	f.stockIn(t, crate, 5, "LOT-9")

	session, err := svc.Open(ctx, ports.OpenSessionRequest{
		WarehouseID: f.warehouseID,
		ProductID:   crate.ID,
		ClientID:    f.clientID,
		Direction:   domain.MovementOut,
	})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = svc.Scan(ctx, session.ID, "LOT-9")
		require.NoError(t, err)
	}

	res, err := svc.Commit(ctx, session.ID, "")
	require.NoError(t, err)

	assert.Equal(t, domain.SubtypeDispatch, res.Entry.MovementSubtype)
	assert.Equal(t, 2, res.Snapshot.AvailableQty)
}

func TestScanService_Open(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newScanService(t, f)
	widget := f.product(t, domain.ProductStandard, "Widget")
	crate := f.product(t, domain.ProductBatch, "Crate")

	tests := []struct {
		name    string
		req     ports.OpenSessionRequest
		wantErr error
	}{
		{
			name:    "standard_product",
			req:     ports.OpenSessionRequest{WarehouseID: f.warehouseID, ProductID: widget.ID, ClientID: f.clientID},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown_product",
			req:     ports.OpenSessionRequest{WarehouseID: f.warehouseID, ProductID: uuid.New(), ClientID: f.clientID},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "wrong_warehouse",
			req:     ports.OpenSessionRequest{WarehouseID: uuid.New(), ProductID: crate.ID, ClientID: f.clientID},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown_direction",
			req:     ports.OpenSessionRequest{WarehouseID: f.warehouseID, ProductID: crate.ID, ClientID: f.clientID, Direction: "SIDEWAYS"},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Open(ctx, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestScanService_CommitEmptySession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newScanService(t, f)
	crate := f.product(t, domain.ProductBatch, "Crate")

	session, err := svc.Open(ctx, ports.OpenSessionRequest{WarehouseID: f.warehouseID, ProductID: crate.ID, ClientID: f.clientID})
	require.NoError(t, err)

	_, err = svc.Commit(ctx, session.ID, "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

// committedSaveFails loses every write that marks a session committed.
type committedSaveFails struct {
	*redis_a.ScanSessionStore
}

func (s committedSaveFails) SaveSession(ctx context.Context, session *domain.ScanSession) error {
	if session.Status == domain.SessionCommitted {
		return errors.New("redis: connection refused")
	}
	return s.ScanSessionStore.SaveSession(ctx, session)
}

func openScannedSession(t *testing.T, svc *services.ScanService, f *fixture, crate *domain.Product, scans int) *domain.ScanSession {
	t.Helper()
	ctx := context.Background()
	session, err := svc.Open(ctx, ports.OpenSessionRequest{WarehouseID: f.warehouseID, ProductID: crate.ID, ClientID: f.clientID})
	require.NoError(t, err)
	for i := 0; i < scans; i++ {
		_, err = svc.Scan(ctx, session.ID, "LOT-1")
		require.NoError(t, err)
	}
	return session
}

func TestScanService_CommitRetryAfterSaveFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, sessions := newScanService(t, f)
	svc := services.NewScanService(f.store, committedSaveFails{sessions}, f.engine, helpers.TestLogger())
	crate := f.product(t, domain.ProductBatch, "Crate")
	session := openScannedSession(t, svc, f, crate, 3)

	first, err := svc.Commit(ctx, session.ID, "")
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	stored, err := sessions.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, domain.SessionOpen, stored.Status)

	retry, err := svc.Commit(ctx, session.ID, "")
	require.NoError(t, err)
	assert.True(t, retry.Replayed)
	assert.Equal(t, first.Entry.ID, retry.Entry.ID)
	require.NotNil(t, retry.Entry.ReferenceID)
	assert.Equal(t, session.ID, *retry.Entry.ReferenceID)

	assert.Equal(t, 1, f.store.LedgerLen())
	assert.Equal(t, 3, f.snapshot(t, crate).Quantity)
	f.requireConsistent(t, crate)
}

func TestScanService_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newScanService(t, f)
	crate := f.product(t, domain.ProductBatch, "Crate")
	session := openScannedSession(t, svc, f, crate, 2)

	const workers = 4
	var wg sync.WaitGroup
	results := make([]*ports.MovementResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Commit(ctx, session.ID, "")
		}(i)
	}
	wg.Wait()

	var applied int
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			// a commit that loaded the session after it was marked committed
			require.ErrorIs(t, errs[i], domain.ErrInvalidTransition)
			continue
		}
		if !results[i].Replayed {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, f.store.LedgerLen())
	assert.Equal(t, 2, f.snapshot(t, crate).Quantity)
}
