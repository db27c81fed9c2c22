// internal/adapters/memory/repositories.go
package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

type productRepo struct{ *session }

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	st, release := r.acquire()
	defer release()
	if err := r.fault("products.Create"); err != nil {
		return err
	}
	st.products[p.ID] = *p
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	st, release := r.acquire()
	defer release()
	p, ok := st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) FindByIdentity(ctx context.Context, warehouseID, clientID uuid.UUID, sku, name string) (*domain.Product, error) {
	st, release := r.acquire()
	defer release()
	for _, p := range st.products {
		if p.WarehouseID != warehouseID || p.ClientID != clientID {
			continue
		}
		if sku != "" && strings.EqualFold(p.SKU, sku) {
			return &p, nil
		}
		if sku == "" && strings.EqualFold(p.Name, name) {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *productRepo) List(ctx context.Context, f ports.ProductFilter) ([]*domain.Product, int64, error) {
	st, release := r.acquire()
	defer release()

	var out []*domain.Product
	for _, p := range st.products {
		if f.WarehouseID != nil && p.WarehouseID != *f.WarehouseID {
			continue
		}
		if f.ClientID != nil && p.ClientID != *f.ClientID {
			continue
		}
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.SKU), strings.ToLower(f.Search)) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	total := int64(len(out))
	return paginate(out, f.Page, f.PageSize), total, nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	st, release := r.acquire()
	defer release()
	delete(st.products, id)
	for k := range st.snapshots {
		if k.ProductID == id {
			delete(st.snapshots, k)
		}
	}
	for k, v := range st.identifiers {
		if v.ProductID == id {
			delete(st.identifiers, k)
		}
	}
	kept := st.ledger[:0:0]
	for _, e := range st.ledger {
		if e.ProductID != id {
			kept = append(kept, e)
		}
	}
	st.ledger = kept
	return nil
}

type snapshotRepo struct{ *session }

func (r *snapshotRepo) Lock(ctx context.Context, key domain.SnapshotKey) (*domain.InventorySnapshot, error) {
	st, release := r.acquire()
	defer release()
	snap, ok := st.snapshots[key]
	if !ok {
		snap = *domain.NewSnapshot(key)
		snap.UpdatedAt = time.Now().UTC()
		st.snapshots[key] = snap
	}
	return &snap, nil
}

func (r *snapshotRepo) ApplyDelta(ctx context.Context, key domain.SnapshotKey, delta domain.SnapshotDelta, unitCost *decimal.Decimal) (*domain.InventorySnapshot, error) {
	st, release := r.acquire()
	defer release()
	if err := r.fault("snapshots.ApplyDelta"); err != nil {
		return nil, err
	}
	snap, ok := st.snapshots[key]
	if !ok {
		snap = *domain.NewSnapshot(key)
	}
	snap.Quantity += delta.Quantity
	snap.AvailableQty += delta.Available
	snap.DamagedQty += delta.Damaged
	if unitCost != nil {
		snap.UnitCost = *unitCost
	}
	snap.UpdatedAt = time.Now().UTC()
	st.snapshots[key] = snap
	return &snap, nil
}

func (r *snapshotRepo) Replace(ctx context.Context, snap *domain.InventorySnapshot) error {
	st, release := r.acquire()
	defer release()
	st.snapshots[snap.Key()] = *snap
	return nil
}

func (r *snapshotRepo) Get(ctx context.Context, key domain.SnapshotKey) (*domain.InventorySnapshot, error) {
	st, release := r.acquire()
	defer release()
	snap, ok := st.snapshots[key]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (r *snapshotRepo) List(ctx context.Context, f ports.SnapshotFilter) ([]ports.SnapshotView, error) {
	st, release := r.acquire()
	defer release()

	var out []ports.SnapshotView
	for k, snap := range st.snapshots {
		if f.WarehouseID != nil && k.WarehouseID != *f.WarehouseID {
			continue
		}
		if f.ClientID != nil && k.ClientID != *f.ClientID {
			continue
		}
		if f.ProductID != nil && k.ProductID != *f.ProductID {
			continue
		}
		if f.InStockOnly && snap.Quantity == 0 {
			continue
		}
		p := st.products[k.ProductID]
		out = append(out, ports.SnapshotView{
			InventorySnapshot: snap,
			ProductName:       p.Name,
			ProductSKU:        p.SKU,
			ProductType:       p.Type,
			ProductCost:       p.UnitCost,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

func (r *snapshotRepo) Keys(ctx context.Context, afterProductID uuid.UUID, limit int) ([]domain.SnapshotKey, error) {
	st, release := r.acquire()
	defer release()

	keys := make([]domain.SnapshotKey, 0, len(st.snapshots))
	for k := range st.snapshots {
		if k.ProductID.String() > afterProductID.String() {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].ProductID.String() < keys[j].ProductID.String() })
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

type ledgerRepo struct{ *session }

func (r *ledgerRepo) Append(ctx context.Context, e *domain.LedgerEntry) error {
	st, release := r.acquire()
	defer release()
	if err := r.fault("ledger.Append"); err != nil {
		return err
	}
	if e.ReferenceID != nil && referenceUnique(e.MovementSubtype) {
		for _, existing := range st.ledger {
			if existing.ReferenceID != nil && *existing.ReferenceID == *e.ReferenceID &&
				existing.MovementSubtype == e.MovementSubtype {
				return domain.NewAlreadyAppliedError(e.ReferenceID.String())
			}
		}
	}
	st.seq++
	e.Sequence = st.seq
	stored := *e
	stored.UniqueIdentifiers = append([]string(nil), e.UniqueIdentifiers...)
	st.ledger = append(st.ledger, stored)
	return nil
}

func (r *ledgerRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	st, release := r.acquire()
	defer release()
	for _, e := range st.ledger {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *ledgerRepo) FindByReference(ctx context.Context, ref uuid.UUID, subtype domain.MovementSubtype) (*domain.LedgerEntry, error) {
	st, release := r.acquire()
	defer release()
	for _, e := range st.ledger {
		if e.ReferenceID != nil && *e.ReferenceID == ref && e.MovementSubtype == subtype {
			return &e, nil
		}
	}
	return nil, nil
}

// referenceUnique mirrors the partial unique index on ledger_entries.reference_id.
func referenceUnique(subtype domain.MovementSubtype) bool {
	switch subtype {
	case domain.SubtypeStockIn, domain.SubtypeDispatch, domain.SubtypeReturn:
		return true
	}
	return false
}

func (r *ledgerRepo) ListByKey(ctx context.Context, key domain.SnapshotKey) ([]domain.LedgerEntry, error) {
	st, release := r.acquire()
	defer release()
	var out []domain.LedgerEntry
	for _, e := range st.ledger {
		if e.Key() == key {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *ledgerRepo) Query(ctx context.Context, q ports.LedgerQuery) ([]domain.LedgerEntryView, int64, error) {
	st, release := r.acquire()
	defer release()

	var out []domain.LedgerEntryView
	for _, e := range st.ledger {
		if q.WarehouseID != nil && e.WarehouseID != *q.WarehouseID {
			continue
		}
		if q.ClientID != nil && e.ClientID != *q.ClientID {
			continue
		}
		if q.ProductID != nil && e.ProductID != *q.ProductID {
			continue
		}
		if q.Subtype != "" && e.MovementSubtype != q.Subtype {
			continue
		}
		if q.From != nil && e.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && !e.CreatedAt.Before(*q.To) {
			continue
		}
		p := st.products[e.ProductID]
		out = append(out, domain.LedgerEntryView{LedgerEntry: e, ProductName: p.Name, ProductSKU: p.SKU})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })

	total := int64(len(out))
	return paginate(out, q.Page, q.PageSize), total, nil
}

func (r *ledgerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	st, release := r.acquire()
	defer release()
	for i, e := range st.ledger {
		if e.ID == id {
			st.ledger = append(st.ledger[:i:i], st.ledger[i+1:]...)
			return nil
		}
	}
	return nil
}

type identifierRepo struct{ *session }

func (r *identifierRepo) Insert(ctx context.Context, ids []domain.Identifier) error {
	st, release := r.acquire()
	defer release()
	if err := r.fault("identifiers.Insert"); err != nil {
		return err
	}
	var dups []string
	for _, id := range ids {
		if _, exists := st.identifiers[identKey{id.WarehouseID, id.SerialNumber}]; exists {
			dups = append(dups, id.SerialNumber)
		}
	}
	if len(dups) > 0 {
		return domain.NewDuplicateIdentifierError(dups...)
	}
	for _, id := range ids {
		st.identifiers[identKey{id.WarehouseID, id.SerialNumber}] = id
	}
	return nil
}

func (r *identifierRepo) FindBySerials(ctx context.Context, warehouseID uuid.UUID, serials []string) ([]domain.Identifier, error) {
	st, release := r.acquire()
	defer release()
	var out []domain.Identifier
	for _, s := range serials {
		if id, ok := st.identifiers[identKey{warehouseID, s}]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *identifierRepo) UpdateStatus(ctx context.Context, warehouseID uuid.UUID, serials []string, status domain.IdentifierStatus, ledgerID uuid.UUID) error {
	st, release := r.acquire()
	defer release()
	if err := r.fault("identifiers.UpdateStatus"); err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, s := range serials {
		k := identKey{warehouseID, s}
		id, ok := st.identifiers[k]
		if !ok {
			return domain.NewUnknownIdentifierError(s)
		}
		id.Status = status
		id.LastLedgerID = ledgerID
		id.UpdatedAt = now
		st.identifiers[k] = id
	}
	return nil
}

func (r *identifierRepo) CountByStatus(ctx context.Context, key domain.SnapshotKey, status domain.IdentifierStatus) (int, error) {
	st, release := r.acquire()
	defer release()
	n := 0
	for _, id := range st.identifiers {
		if id.WarehouseID == key.WarehouseID && id.ProductID == key.ProductID &&
			id.ClientID == key.ClientID && id.Status == status {
			n++
		}
	}
	return n, nil
}

type returnRepo struct{ *session }

func (r *returnRepo) Create(ctx context.Context, ret *domain.ReturnRequest) error {
	st, release := r.acquire()
	defer release()
	st.returns[ret.ID] = *ret
	return nil
}

func (r *returnRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	st, release := r.acquire()
	defer release()
	ret, ok := st.returns[id]
	if !ok {
		return nil, nil
	}
	return &ret, nil
}

func (r *returnRepo) Lock(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *returnRepo) Update(ctx context.Context, ret *domain.ReturnRequest) error {
	st, release := r.acquire()
	defer release()
	st.returns[ret.ID] = *ret
	return nil
}

type outboxRepo struct{ *session }

func (r *outboxRepo) Enqueue(ctx context.Context, event domain.MovementEvent) error {
	st, release := r.acquire()
	defer release()
	st.outbox = append(st.outbox, domain.OutboxMessage{
		ID:        event.EventID,
		Event:     event,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (r *outboxRepo) Pending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	st, release := r.acquire()
	defer release()
	var out []domain.OutboxMessage
	for _, m := range st.outbox {
		if m.PublishedAt == nil {
			out = append(out, m)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *outboxRepo) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	st, release := r.acquire()
	defer release()
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for i := range st.outbox {
		if set[st.outbox[i].ID] {
			published := at
			st.outbox[i].PublishedAt = &published
		}
	}
	return nil
}

func (r *outboxRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	st, release := r.acquire()
	defer release()
	for i := range st.outbox {
		if st.outbox[i].ID == id {
			st.outbox[i].Attempts++
		}
	}
	return nil
}

type jobRepo struct{ *session }

func (r *jobRepo) Create(ctx context.Context, job *domain.ImportJob) error {
	st, release := r.acquire()
	defer release()
	st.jobs[job.ID] = *job
	return nil
}

func (r *jobRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error) {
	st, release := r.acquire()
	defer release()
	job, ok := st.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (r *jobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ImportJobStatus, report *domain.ImportReport, errMsg string) error {
	st, release := r.acquire()
	defer release()
	job, ok := st.jobs[id]
	if !ok {
		return domain.NewNotFoundError("import job", id.String())
	}
	now := time.Now().UTC()
	job.Status = status
	if report != nil {
		job.Report = report
	}
	job.Error = errMsg
	job.UpdatedAt = now
	if status != domain.JobQueued && status != domain.JobProcessing {
		job.CompletedAt = &now
	}
	st.jobs[id] = job
	return nil
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
