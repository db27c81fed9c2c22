//go:build integration
// +build integration

package db_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/stockledger/internal/adapters/db"
	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
	"github.com/ammerola/stockledger/internal/core/services"
	"github.com/ammerola/stockledger/test/helpers"
)

type StoreSuite struct {
	suite.Suite
	testDB *helpers.TestDB
	store  *db.Store
	engine *services.ReconciliationEngine
	ctx    context.Context
}

func TestStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.store = db.NewStore(s.testDB.Database, helpers.TestLogger())
	registry := services.NewIdentifierRegistry(s.store, helpers.TestLogger())
	s.engine = services.NewReconciliationEngine(s.store, registry, nil, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *StoreSuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *StoreSuite) createProduct(overrides ...func(*domain.Product)) *domain.Product {
	p := helpers.CreateTestProduct(overrides...)
	s.Require().NoError(s.store.Repositories().Products.Create(s.ctx, p))
	return p
}

func (s *StoreSuite) TestProductRoundTrip() {
	p := s.createProduct(func(p *domain.Product) { p.SKU = "RT-1" })

	found, err := s.store.Repositories().Products.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(p.Name, found.Name)
	s.True(p.UnitCost.Equal(*found.UnitCost))

	byIdentity, err := s.store.Repositories().Products.FindByIdentity(s.ctx, p.WarehouseID, p.ClientID, "rt-1", "")
	s.Require().NoError(err)
	s.Require().NotNil(byIdentity)
	s.Equal(p.ID, byIdentity.ID)

	missing, err := s.store.Repositories().Products.FindByID(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(missing)
}

func (s *StoreSuite) TestDuplicateSKURejected() {
	p := s.createProduct()
	dup := helpers.CreateTestProduct(func(d *domain.Product) {
		d.WarehouseID, d.ClientID, d.SKU = p.WarehouseID, p.ClientID, p.SKU
	})

	err := s.store.Repositories().Products.Create(s.ctx, dup)
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *StoreSuite) TestStockInAndDispatch() {
	p := s.createProduct()
	key := p.Key()
	cost := decimal.NewFromInt(3)

	_, err := s.engine.ApplyMovement(s.ctx, domain.StockIn{
		MovementLine: domain.MovementLine{Key: key, Quantity: 10},
		UnitCost:     &cost,
	})
	s.Require().NoError(err)

	res, err := s.engine.ApplyMovement(s.ctx, domain.Dispatch{MovementLine: domain.MovementLine{Key: key, Quantity: 4}})
	s.Require().NoError(err)
	s.Equal(6, res.Snapshot.Quantity)
	s.Equal(6, res.Snapshot.AvailableQty)
	s.Greater(res.Entry.Sequence, int64(0))

	_, err = s.engine.ApplyMovement(s.ctx, domain.Dispatch{MovementLine: domain.MovementLine{Key: key, Quantity: 7}})
	s.ErrorIs(err, domain.ErrInsufficientStock)

	snap, err := s.store.Repositories().Snapshots.Get(s.ctx, key)
	s.Require().NoError(err)
	s.Equal(6, snap.Quantity)
	s.True(snap.UnitCost.Equal(cost))

	entries, err := s.store.Repositories().Ledger.ListByKey(s.ctx, key)
	s.Require().NoError(err)
	s.Len(entries, 2)
}

func (s *StoreSuite) TestSerializedLifecycle() {
	p := s.createProduct(func(p *domain.Product) { p.Type = domain.ProductSerialized })
	key := p.Key()
	serials := helpers.Serials("SN", 3)

	_, err := s.engine.ApplyMovement(s.ctx, domain.StockIn{MovementLine: domain.MovementLine{Key: key, Quantity: 3, Identifiers: serials}})
	s.Require().NoError(err)

	_, err = s.engine.ApplyMovement(s.ctx, domain.StockIn{MovementLine: domain.MovementLine{Key: key, Quantity: 1, Identifiers: serials[:1]}})
	s.ErrorIs(err, domain.ErrDuplicateIdentifier)

	_, err = s.engine.ApplyMovement(s.ctx, domain.Dispatch{MovementLine: domain.MovementLine{Key: key, Quantity: 1, Identifiers: serials[:1]}})
	s.Require().NoError(err)

	found, err := s.store.Repositories().Identifiers.FindBySerials(s.ctx, p.WarehouseID, serials)
	s.Require().NoError(err)
	s.Require().Len(found, 3)
	s.Equal(domain.IdentifierDispatched, found[0].Status)
	s.Equal(domain.IdentifierInStock, found[1].Status)

	count, err := s.store.Repositories().Identifiers.CountByStatus(s.ctx, key, domain.IdentifierInStock)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *StoreSuite) TestConcurrentDuplicateSerialHasOneWinner() {
	p := s.createProduct(func(p *domain.Product) { p.Type = domain.ProductSerialized })
	key := p.Key()

	const workers = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		dupes     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.engine.ApplyMovement(s.ctx, domain.StockIn{
				MovementLine: domain.MovementLine{Key: key, Quantity: 1, Identifiers: []string{"RACE-1"}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if domain.KindOf(err) == domain.KindDuplicateIdentifier {
				dupes++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, succeeded)
	s.Equal(workers-1, dupes)

	snap, err := s.store.Repositories().Snapshots.Get(s.ctx, key)
	s.Require().NoError(err)
	s.Equal(1, snap.Quantity)
}

func (s *StoreSuite) TestLedgerIsAppendOnly() {
	p := s.createProduct()
	res, err := s.engine.ApplyMovement(s.ctx, domain.StockIn{MovementLine: domain.MovementLine{Key: p.Key(), Quantity: 2}})
	s.Require().NoError(err)

	_, err = s.testDB.PgxPool.Exec(s.ctx, "UPDATE ledger_entries SET quantity = 99 WHERE id = $1", res.Entry.ID)
	s.Error(err)
}

func (s *StoreSuite) TestSnapshotConstraintsRejectNegative() {
	p := s.createProduct()
	key := p.Key()
	_, err := s.store.Repositories().Snapshots.Lock(s.ctx, key)
	s.Require().NoError(err)

	_, err = s.store.Repositories().Snapshots.ApplyDelta(s.ctx, key, domain.SnapshotDelta{Quantity: -1, Available: -1}, nil)
	s.Error(err)
}

func (s *StoreSuite) TestReconcileRepairsDrift() {
	p := s.createProduct()
	key := p.Key()
	_, err := s.engine.ApplyMovement(s.ctx, domain.StockIn{MovementLine: domain.MovementLine{Key: key, Quantity: 5}})
	s.Require().NoError(err)

	_, err = s.testDB.PgxPool.Exec(s.ctx,
		"UPDATE inventory_snapshots SET quantity = 9, available_qty = 9 WHERE product_id = $1", p.ID)
	s.Require().NoError(err)

	res, err := s.engine.Reconcile(s.ctx, key)
	s.Require().NoError(err)
	s.True(res.Repaired)
	s.Equal(9, res.Stored.Quantity)
	s.Equal(5, res.Derived.Quantity)

	snap, err := s.store.Repositories().Snapshots.Get(s.ctx, key)
	s.Require().NoError(err)
	s.Equal(5, snap.Quantity)

	summary, err := s.engine.ReconcileAll(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal(1, summary.Checked)
	s.Equal(0, summary.Repaired)
}

func (s *StoreSuite) TestFailedTransactionRollsBack() {
	p := s.createProduct(func(p *domain.Product) { p.Type = domain.ProductSerialized })
	key := p.Key()

	_, err := s.engine.ApplyMovement(s.ctx, domain.StockIn{MovementLine: domain.MovementLine{Key: key, Quantity: 1, Identifiers: []string{"A-1"}}})
	s.Require().NoError(err)

	_, err = s.engine.ApplyMovement(s.ctx, domain.StockIn{MovementLine: domain.MovementLine{Key: key, Quantity: 2, Identifiers: []string{"A-2", "A-1"}}})
	s.ErrorIs(err, domain.ErrDuplicateIdentifier)

	entries, err := s.store.Repositories().Ledger.ListByKey(s.ctx, key)
	s.Require().NoError(err)
	s.Len(entries, 1)

	found, err := s.store.Repositories().Identifiers.FindBySerials(s.ctx, p.WarehouseID, []string{"A-2"})
	s.Require().NoError(err)
	s.Empty(found)
}

func (s *StoreSuite) TestReferencedEntryIsUnique() {
	p := s.createProduct()
	ref := uuid.New()
	entry := func(subtype domain.MovementSubtype) *domain.LedgerEntry {
		return &domain.LedgerEntry{
			ID:              uuid.New(),
			WarehouseID:     p.WarehouseID,
			ProductID:       p.ID,
			ClientID:        p.ClientID,
			MovementType:    domain.MovementIn,
			MovementSubtype: subtype,
			Quantity:        2,
			ReferenceID:     &ref,
			CreatedAt:       time.Now().UTC(),
		}
	}
	ledger := s.store.Repositories().Ledger

	first := entry(domain.SubtypeStockIn)
	s.Require().NoError(ledger.Append(s.ctx, first))
	s.ErrorIs(ledger.Append(s.ctx, entry(domain.SubtypeStockIn)), domain.ErrInvalidTransition)

	// transfers write an OUT and an IN under one reference
	s.Require().NoError(ledger.Append(s.ctx, entry(domain.SubtypeTransfer)))
	s.Require().NoError(ledger.Append(s.ctx, entry(domain.SubtypeTransfer)))

	found, err := ledger.FindByReference(s.ctx, ref, domain.SubtypeStockIn)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(first.ID, found.ID)

	missing, err := ledger.FindByReference(s.ctx, uuid.New(), domain.SubtypeStockIn)
	s.NoError(err)
	s.Nil(missing)
}

func (s *StoreSuite) TestLedgerQuery() {
	p := s.createProduct()
	key := p.Key()
	for i := 0; i < 3; i++ {
		_, err := s.engine.ApplyMovement(s.ctx, domain.StockIn{MovementLine: domain.MovementLine{Key: key, Quantity: i + 1}})
		s.Require().NoError(err)
	}
	_, err := s.engine.ApplyMovement(s.ctx, domain.Dispatch{MovementLine: domain.MovementLine{Key: key, Quantity: 1}})
	s.Require().NoError(err)

	views, total, err := s.store.Repositories().Ledger.Query(s.ctx, ports.LedgerQuery{
		ProductID: &p.ID,
		Subtype:   domain.SubtypeStockIn,
		Page:      1,
		PageSize:  2,
	})
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Require().Len(views, 2)
	s.Equal(3, views[0].Quantity)
	s.Equal(p.Name, views[0].ProductName)
}

func (s *StoreSuite) TestOutboxLifecycle() {
	p := s.createProduct()
	_, err := s.engine.ApplyMovement(s.ctx, domain.StockIn{MovementLine: domain.MovementLine{Key: p.Key(), Quantity: 1}})
	s.Require().NoError(err)

	outbox := s.store.Repositories().Outbox
	pending, err := outbox.Pending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(domain.EventMovementRecorded, pending[0].Event.EventType)

	s.Require().NoError(outbox.MarkFailed(s.ctx, pending[0].ID))
	s.Require().NoError(outbox.MarkPublished(s.ctx, []uuid.UUID{pending[0].ID}, time.Now().UTC()))

	pending, err = outbox.Pending(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *StoreSuite) TestReturnAndImportJobRows() {
	p := s.createProduct()
	ret := &domain.ReturnRequest{
		WarehouseID: p.WarehouseID, ClientID: p.ClientID, ProductID: p.ID,
		Quantity: 2, Reason: "wrong size",
	}
	ret.PrepareForStorage()
	repos := s.store.Repositories()
	s.Require().NoError(repos.Returns.Create(s.ctx, ret))

	s.Require().NoError(ret.Receive(time.Now().UTC()))
	s.Require().NoError(ret.Inspect(domain.ReturnApproved, domain.ConditionDamaged, "scuffed", "qa", time.Now().UTC()))
	s.Require().NoError(repos.Returns.Update(s.ctx, ret))

	loaded, err := repos.Returns.FindByID(s.ctx, ret.ID)
	s.Require().NoError(err)
	s.Require().NotNil(loaded)
	s.Equal(domain.ReturnApproved, loaded.Status)
	s.Require().NotNil(loaded.Condition)
	s.Equal(domain.ConditionDamaged, *loaded.Condition)

	now := time.Now().UTC()
	job := &domain.ImportJob{
		ID: uuid.New(), WarehouseID: p.WarehouseID, ClientID: p.ClientID,
		Source: "stock.csv", Status: domain.JobQueued, CreatedAt: now, UpdatedAt: now,
	}
	s.Require().NoError(repos.ImportJobs.Create(s.ctx, job))

	report := &domain.ImportReport{}
	report.Add(domain.ImportRowResult{Line: 2, Status: domain.RowCommitted})
	s.Require().NoError(repos.ImportJobs.UpdateStatus(s.ctx, job.ID, domain.JobCompleted, report, ""))

	loadedJob, err := repos.ImportJobs.FindByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(domain.JobCompleted, loadedJob.Status)
	s.NotNil(loadedJob.CompletedAt)
	s.Require().NotNil(loadedJob.Report)
	s.Equal(1, loadedJob.Report.Succeeded)

	err = repos.ImportJobs.UpdateStatus(s.ctx, uuid.New(), domain.JobFailed, nil, "boom")
	s.ErrorIs(err, domain.ErrNotFound)
}
