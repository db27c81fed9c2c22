// internal/core/ports/services.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
)

// MovementResult is the committed entry and the snapshot it produced
type MovementResult struct {
	Entry          *domain.LedgerEntry       `json:"entry"`
	Snapshot       *domain.InventorySnapshot `json:"snapshot"`
	LegacyFallback bool                      `json:"legacy_fallback,omitempty"`
	// Replayed is set when the movement had already been applied under the
	// same reference and Entry is the original entry.
	Replayed bool `json:"replayed,omitempty"`
}

// TransferRequest moves units of a product between two warehouses of the same client
type TransferRequest struct {
	ClientID               uuid.UUID  `json:"client_id"`
	SourceWarehouseID      uuid.UUID  `json:"source_warehouse_id"`
	SourceProductID        uuid.UUID  `json:"source_product_id"`
	DestinationWarehouseID uuid.UUID  `json:"destination_warehouse_id"`
	DestinationProductID   *uuid.UUID `json:"destination_product_id,omitempty"`
	Quantity               int        `json:"quantity"`
	Identifiers            []string   `json:"identifiers,omitempty"`
	Notes                  string     `json:"notes,omitempty"`
	CreatedBy              string     `json:"created_by,omitempty"`
}

// TransferResult holds both legs of a transfer
type TransferResult struct {
	ReferenceID uuid.UUID       `json:"reference_id"`
	Out         *MovementResult `json:"out"`
	In          *MovementResult `json:"in"`
}

// ReconcileResult reports the stored snapshot against the ledger replay
type ReconcileResult struct {
	Key      domain.SnapshotKey        `json:"key"`
	Stored   *domain.InventorySnapshot `json:"stored"`
	Derived  *domain.InventorySnapshot `json:"derived"`
	Repaired bool                      `json:"repaired"`
}

// ReconcileSummary counts the outcome of a sweep
type ReconcileSummary struct {
	Checked  int `json:"checked"`
	Repaired int `json:"repaired"`
	Failed   int `json:"failed"`
}

// InspectRequest carries the outcome of a return inspection
type InspectRequest struct {
	Outcome     string `json:"outcome"`
	Condition   string `json:"condition,omitempty"`
	Notes       string `json:"notes,omitempty"`
	InspectedBy string `json:"inspected_by"`
}

// InspectResult is the inspected return and, for approvals, the restock movement
type InspectResult struct {
	Return  *domain.ReturnRequest `json:"return"`
	Restock *MovementResult       `json:"restock,omitempty"`
}

// CreateProductRequest creates a product with an optional opening balance
type CreateProductRequest struct {
	Product         domain.Product `json:"product"`
	InitialQuantity int            `json:"initial_quantity,omitempty"`
	Identifiers     []string       `json:"identifiers,omitempty"`
	CreatedBy       string         `json:"created_by,omitempty"`
}

// ProductCreated is a new product and its opening movement, if any
type ProductCreated struct {
	Product      *domain.Product `json:"product"`
	InitialStock *MovementResult `json:"initial_stock,omitempty"`
}

// ImportTarget scopes an import to a warehouse and client
type ImportTarget struct {
	WarehouseID uuid.UUID
	ClientID    uuid.UUID
	CreatedBy   string
	JobID       string
}

// OpenSessionRequest opens a batch scan session
type OpenSessionRequest struct {
	WarehouseID uuid.UUID           `json:"warehouse_id"`
	ProductID   uuid.UUID           `json:"product_id"`
	ClientID    uuid.UUID           `json:"client_id"`
	Direction   domain.MovementType `json:"direction,omitempty"`
	CreatedBy   string              `json:"created_by,omitempty"`
}

// MovementService applies movements and maintains snapshots
type MovementService interface {
	ApplyMovement(ctx context.Context, m domain.Movement) (*MovementResult, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	Reconcile(ctx context.Context, key domain.SnapshotKey) (*ReconcileResult, error)
	ReconcileAll(ctx context.Context, batchSize int) (*ReconcileSummary, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) (*domain.InventorySnapshot, error)
	GetSnapshot(ctx context.Context, key domain.SnapshotKey) (*domain.InventorySnapshot, error)
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]SnapshotView, error)
}

// IdentifierService exposes the serial number registry
type IdentifierService interface {
	CheckBulk(ctx context.Context, warehouseID uuid.UUID, serials []string) ([]domain.IdentifierConflict, error)
	Lookup(ctx context.Context, warehouseID uuid.UUID, serial string) (*domain.Identifier, error)
}

// ProductService manages products
type ProductService interface {
	Create(ctx context.Context, req CreateProductRequest) (*ProductCreated, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) (*Page[*domain.Product], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerService reads ledger history
type LedgerService interface {
	Query(ctx context.Context, q LedgerQuery) (*Page[domain.LedgerEntryView], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)
}

// ReturnService runs the return inspection workflow
type ReturnService interface {
	Create(ctx context.Context, r *domain.ReturnRequest) error
	Get(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error)
	Receive(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error)
	Inspect(ctx context.Context, id uuid.UUID, req InspectRequest) (*InspectResult, error)
}

// ScanService runs batch scan sessions
type ScanService interface {
	Open(ctx context.Context, req OpenSessionRequest) (*domain.ScanSession, error)
	Scan(ctx context.Context, id uuid.UUID, code string) (*domain.ScanSession, error)
	Commit(ctx context.Context, id uuid.UUID, notes string) (*MovementResult, error)
	Close(ctx context.Context, id uuid.UUID) error
}

// ImportService applies bulk imports row by row
type ImportService interface {
	Import(ctx context.Context, target ImportTarget, rows []domain.RawImportRow) (*domain.ImportReport, error)
	CreateJob(ctx context.Context, job *domain.ImportJob) error
	GetJob(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error)
	RunJob(ctx context.Context, id uuid.UUID, rows []domain.RawImportRow) (*domain.ImportReport, error)
	FailJob(ctx context.Context, id uuid.UUID, cause error) error
}
