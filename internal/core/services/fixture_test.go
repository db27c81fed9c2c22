// internal/core/services/fixture_test.go
package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stockledger/internal/adapters/memory"
	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
	"github.com/ammerola/stockledger/internal/core/services"
	"github.com/ammerola/stockledger/test/helpers"
)

type fixture struct {
	store    *memory.Store
	registry *services.IdentifierRegistry
	engine   *services.ReconciliationEngine
	products *services.ProductService

	warehouseID uuid.UUID
	clientID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := helpers.TestLogger()
	store := memory.NewStore()
	registry := services.NewIdentifierRegistry(store, logger)
	engine := services.NewReconciliationEngine(store, registry, nil, logger)
	return &fixture{
		store:       store,
		registry:    registry,
		engine:      engine,
		products:    services.NewProductService(store, engine, logger),
		warehouseID: uuid.New(),
		clientID:    uuid.New(),
	}
}

// product stores a product of the given type in the fixture's warehouse.
func (f *fixture) product(t *testing.T, productType domain.ProductType, name string) *domain.Product {
	t.Helper()
	p := helpers.CreateTestProduct(func(p *domain.Product) {
		p.WarehouseID = f.warehouseID
		p.ClientID = f.clientID
		p.Type = productType
		p.Name = name
		p.SKU = ""
	})
	require.NoError(t, f.store.Repositories().Products.Create(context.Background(), p))
	return p
}

func line(p *domain.Product, quantity int, identifiers ...string) domain.MovementLine {
	return domain.MovementLine{Key: p.Key(), Quantity: quantity, Identifiers: identifiers, CreatedBy: "tester"}
}

func (f *fixture) stockIn(t *testing.T, p *domain.Product, quantity int, identifiers ...string) *ports.MovementResult {
	t.Helper()
	res, err := f.engine.ApplyMovement(context.Background(), domain.StockIn{MovementLine: line(p, quantity, identifiers...)})
	require.NoError(t, err)
	return res
}

func (f *fixture) snapshot(t *testing.T, p *domain.Product) *domain.InventorySnapshot {
	t.Helper()
	snap, err := f.store.Repositories().Snapshots.Get(context.Background(), p.Key())
	require.NoError(t, err)
	return snap
}

func (f *fixture) identifierStatus(t *testing.T, serials ...string) map[string]domain.IdentifierStatus {
	t.Helper()
	found, err := f.store.Repositories().Identifiers.FindBySerials(context.Background(), f.warehouseID, serials)
	require.NoError(t, err)
	out := make(map[string]domain.IdentifierStatus, len(found))
	for _, id := range found {
		out[id.SerialNumber] = id.Status
	}
	return out
}

// requireConsistent checks that replaying the ledger reproduces the stored snapshot.
func (f *fixture) requireConsistent(t *testing.T, p *domain.Product) {
	t.Helper()
	entries, err := f.store.Repositories().Ledger.ListByKey(context.Background(), p.Key())
	require.NoError(t, err)
	derived, err := domain.Replay(p.Key(), entries)
	require.NoError(t, err)
	stored := f.snapshot(t, p)
	require.NotNil(t, stored)
	require.True(t, stored.SameCounts(derived), "stored %+v, replayed %+v", stored, derived)
}
