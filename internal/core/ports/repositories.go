// internal/core/ports/repositories.go
package ports

import (
	"context"
	"time"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the persistence port for products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// FindByIdentity matches on SKU when one is given, otherwise on name.
	FindByIdentity(ctx context.Context, warehouseID, clientID uuid.UUID, sku, name string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SnapshotRepository persists the derived snapshot rows.
type SnapshotRepository interface {
	// Lock returns the snapshot row for key, creating an empty one if needed,
	// and holds a row lock until the surrounding transaction ends.
	Lock(ctx context.Context, key domain.SnapshotKey) (*domain.InventorySnapshot, error)
	// ApplyDelta adds the delta with atomic increments and returns the new row.
	ApplyDelta(ctx context.Context, key domain.SnapshotKey, delta domain.SnapshotDelta, unitCost *decimal.Decimal) (*domain.InventorySnapshot, error)
	// Replace overwrites the counters, used when repairing drift from the ledger.
	Replace(ctx context.Context, snap *domain.InventorySnapshot) error
	Get(ctx context.Context, key domain.SnapshotKey) (*domain.InventorySnapshot, error)
	List(ctx context.Context, filter SnapshotFilter) ([]SnapshotView, error)
	Keys(ctx context.Context, afterProductID uuid.UUID, limit int) ([]domain.SnapshotKey, error)
}

// LedgerRepository is the append-only movement log.
type LedgerRepository interface {
	Append(ctx context.Context, entry *domain.LedgerEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)
	// ListByKey returns all entries of a snapshot key in commit order.
	ListByKey(ctx context.Context, key domain.SnapshotKey) ([]domain.LedgerEntry, error)
	// FindByReference returns the entry of the given subtype recorded under ref, or nil.
	FindByReference(ctx context.Context, ref uuid.UUID, subtype domain.MovementSubtype) (*domain.LedgerEntry, error)
	Query(ctx context.Context, q LedgerQuery) ([]domain.LedgerEntryView, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// IdentifierRepository persists serial numbers. Insert must surface a unique
// constraint violation as a DuplicateIdentifier error.
type IdentifierRepository interface {
	Insert(ctx context.Context, identifiers []domain.Identifier) error
	FindBySerials(ctx context.Context, warehouseID uuid.UUID, serials []string) ([]domain.Identifier, error)
	UpdateStatus(ctx context.Context, warehouseID uuid.UUID, serials []string, status domain.IdentifierStatus, ledgerID uuid.UUID) error
	CountByStatus(ctx context.Context, key domain.SnapshotKey, status domain.IdentifierStatus) (int, error)
}

// ReturnRepository persists return requests.
type ReturnRepository interface {
	Create(ctx context.Context, r *domain.ReturnRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error)
	// Lock loads a return and holds a row lock for the surrounding transaction.
	Lock(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error)
	Update(ctx context.Context, r *domain.ReturnRequest) error
}

// OutboxRepository stores movement events until they are published.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event domain.MovementEvent) error
	Pending(ctx context.Context, limit int) ([]domain.OutboxMessage, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// ImportJobRepository tracks asynchronous imports.
type ImportJobRepository interface {
	Create(ctx context.Context, job *domain.ImportJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ImportJobStatus, report *domain.ImportReport, errMsg string) error
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Products    ProductRepository
	Snapshots   SnapshotRepository
	Ledger      LedgerRepository
	Identifiers IdentifierRepository
	Returns     ReturnRepository
	Outbox      OutboxRepository
	ImportJobs  ImportJobRepository
}

// Store is the unit-of-work port. Everything done through the repositories
// handed to fn commits or rolls back together.
type Store interface {
	Repositories() Repositories
	Transaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
