// internal/core/services/ledger.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// LedgerService serves ledger history
type LedgerService struct {
	store  ports.Store
	logger *slog.Logger
}

var _ ports.LedgerService = (*LedgerService)(nil)

// NewLedgerService creates a new ledger service
func NewLedgerService(store ports.Store, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		store:  store,
		logger: logger.With(slog.String("service", "ledger")),
	}
}

// Query returns a page of entries, newest first, joined with product name and SKU.
func (s *LedgerService) Query(ctx context.Context, q ports.LedgerQuery) (*ports.Page[domain.LedgerEntryView], error) {
	q.Normalize()
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, domain.NewValidationError("to must not be before from")
	}

	entries, total, err := s.store.Repositories().Ledger.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}

	s.logger.DebugContext(ctx, "ledger queried",
		slog.Int("page", q.Page),
		slog.Int("returned", len(entries)),
		slog.Int64("total", total))

	return ports.NewPage(entries, q.Page, q.PageSize, total), nil
}

// Get retrieves a ledger entry by ID
func (s *LedgerService) Get(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	entry, err := s.store.Repositories().Ledger.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	if entry == nil {
		return nil, domain.NewNotFoundError("ledger entry", id.String())
	}
	return entry, nil
}
