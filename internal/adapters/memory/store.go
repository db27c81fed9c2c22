// internal/adapters/memory/store.go
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// Store is an in-process implementation of ports.Store. A transaction works on
// a copy of the state and swaps it in on success, so a failed transaction
// leaves nothing behind. It backs tests and local development runs.
type Store struct {
	mu     sync.Mutex
	state  *state
	faults map[string]error
}

// Statically assert that *Store implements ports.Store.
var _ ports.Store = (*Store)(nil)

type identKey struct {
	warehouseID uuid.UUID
	serial      string
}

type state struct {
	products    map[uuid.UUID]domain.Product
	snapshots   map[domain.SnapshotKey]domain.InventorySnapshot
	ledger      []domain.LedgerEntry
	identifiers map[identKey]domain.Identifier
	returns     map[uuid.UUID]domain.ReturnRequest
	outbox      []domain.OutboxMessage
	jobs        map[uuid.UUID]domain.ImportJob
	seq         int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		state: &state{
			products:    make(map[uuid.UUID]domain.Product),
			snapshots:   make(map[domain.SnapshotKey]domain.InventorySnapshot),
			identifiers: make(map[identKey]domain.Identifier),
			returns:     make(map[uuid.UUID]domain.ReturnRequest),
			jobs:        make(map[uuid.UUID]domain.ImportJob),
		},
		faults: make(map[string]error),
	}
}

// InjectFault makes the named repository operation (for example
// "snapshots.ApplyDelta") fail with err until cleared with a nil error.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// Transaction runs fn against a private copy of the state and commits it when
// fn returns nil.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.clone()
	tx := &session{store: s, tx: draft}
	if err := fn(ctx, tx.repositories()); err != nil {
		return err
	}
	s.state = draft
	return nil
}

// Repositories returns auto-committing repositories.
func (s *Store) Repositories() ports.Repositories {
	return (&session{store: s}).repositories()
}

// session binds repositories either to a transaction draft or to the live
// state, in which case every call takes the store lock.
type session struct {
	store *Store
	tx    *state
}

func (x *session) acquire() (*state, func()) {
	if x.tx != nil {
		return x.tx, func() {}
	}
	x.store.mu.Lock()
	return x.store.state, x.store.mu.Unlock
}

// fault must be called with the state acquired.
func (x *session) fault(op string) error {
	return x.store.faults[op]
}

func (x *session) repositories() ports.Repositories {
	return ports.Repositories{
		Products:    &productRepo{x},
		Snapshots:   &snapshotRepo{x},
		Ledger:      &ledgerRepo{x},
		Identifiers: &identifierRepo{x},
		Returns:     &returnRepo{x},
		Outbox:      &outboxRepo{x},
		ImportJobs:  &jobRepo{x},
	}
}

func (st *state) clone() *state {
	c := &state{
		products:    make(map[uuid.UUID]domain.Product, len(st.products)),
		snapshots:   make(map[domain.SnapshotKey]domain.InventorySnapshot, len(st.snapshots)),
		ledger:      make([]domain.LedgerEntry, len(st.ledger)),
		identifiers: make(map[identKey]domain.Identifier, len(st.identifiers)),
		returns:     make(map[uuid.UUID]domain.ReturnRequest, len(st.returns)),
		outbox:      make([]domain.OutboxMessage, len(st.outbox)),
		jobs:        make(map[uuid.UUID]domain.ImportJob, len(st.jobs)),
		seq:         st.seq,
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.snapshots {
		c.snapshots[k] = v
	}
	copy(c.ledger, st.ledger)
	for k, v := range st.identifiers {
		c.identifiers[k] = v
	}
	for k, v := range st.returns {
		c.returns[k] = v
	}
	copy(c.outbox, st.outbox)
	for k, v := range st.jobs {
		c.jobs[k] = v
	}
	return c
}

// LedgerLen returns the number of committed ledger entries.
func (s *Store) LedgerLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.ledger)
}

// OutboxLen returns the number of unpublished outbox messages.
func (s *Store) OutboxLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.state.outbox {
		if m.PublishedAt == nil {
			n++
		}
	}
	return n
}

// CorruptSnapshot overwrites stored counters without touching the ledger.
func (s *Store) CorruptSnapshot(key domain.SnapshotKey, quantity, available, damaged int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state.snapshots[key]
	snap.Quantity, snap.AvailableQty, snap.DamagedQty = quantity, available, damaged
	s.state.snapshots[key] = snap
}
