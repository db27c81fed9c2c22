// internal/core/services/returns.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// ReturnService runs return requests through inspection
type ReturnService struct {
	store  ports.Store
	engine *ReconciliationEngine
	logger *slog.Logger
}

var _ ports.ReturnService = (*ReturnService)(nil)

// NewReturnService creates a new return service
func NewReturnService(store ports.Store, engine *ReconciliationEngine, logger *slog.Logger) *ReturnService {
	return &ReturnService{
		store:  store,
		engine: engine,
		logger: logger.With(slog.String("service", "returns")),
	}
}

// Create stores a new return request for an existing product.
func (s *ReturnService) Create(ctx context.Context, r *domain.ReturnRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.PrepareForStorage()

	err := s.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		product, err := repos.Products.FindByID(ctx, r.ProductID)
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}
		if product == nil {
			return domain.NewNotFoundError("product", r.ProductID.String())
		}
		if product.WarehouseID != r.WarehouseID || product.ClientID != r.ClientID {
			return domain.NewValidationError("product %s does not belong to warehouse %s and client %s",
				product.ID, r.WarehouseID, r.ClientID)
		}
		if err := repos.Returns.Create(ctx, r); err != nil {
			return fmt.Errorf("failed to create return: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "return created",
		slog.String("return_id", r.ID.String()),
		slog.String("status", string(r.Status)),
		slog.Int("quantity", r.Quantity))
	return nil
}

// Get retrieves a return request by ID
func (s *ReturnService) Get(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	r, err := s.store.Repositories().Returns.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get return: %w", err)
	}
	if r == nil {
		return nil, domain.NewNotFoundError("return", id.String())
	}
	return r, nil
}

// Receive marks a requested return as physically received.
func (s *ReturnService) Receive(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	var r *domain.ReturnRequest
	err := s.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		r, err = lockReturn(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := r.Receive(time.Now().UTC()); err != nil {
			return err
		}
		if err := repos.Returns.Update(ctx, r); err != nil {
			return fmt.Errorf("failed to update return: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "return received", slog.String("return_id", id.String()))
	return r, nil
}

// Inspect records the outcome. An approval restocks the units with the
// inspected condition in the same transaction as the status change.
func (s *ReturnService) Inspect(ctx context.Context, id uuid.UUID, req ports.InspectRequest) (*ports.InspectResult, error) {
	outcome, err := domain.ParseReturnOutcome(req.Outcome)
	if err != nil {
		return nil, err
	}
	condition, err := domain.ParseCondition(req.Condition)
	if err != nil {
		return nil, err
	}

	result := &ports.InspectResult{}
	err = s.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		r, err := lockReturn(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := r.Inspect(outcome, condition, req.Notes, req.InspectedBy, time.Now().UTC()); err != nil {
			return err
		}

		if outcome == domain.ReturnApproved {
			result.Restock, err = s.engine.apply(ctx, repos, r.RestockMovement(), nil)
			if err != nil {
				return err
			}
			ledgerID := result.Restock.Entry.ID
			r.LedgerEntryID = &ledgerID
		}

		if err := repos.Returns.Update(ctx, r); err != nil {
			return fmt.Errorf("failed to update return: %w", err)
		}
		result.Return = r
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "return inspection rejected",
			slog.String("return_id", id.String()),
			slog.String("outcome", string(outcome)),
			slog.String("error", err.Error()))
		return nil, err
	}

	if result.Restock != nil {
		s.engine.invalidate(ctx, result.Return.Key())
	}
	s.logger.InfoContext(ctx, "return inspected",
		slog.String("return_id", id.String()),
		slog.String("outcome", string(outcome)),
		slog.String("condition", string(condition)),
		slog.Bool("restocked", result.Restock != nil))
	return result, nil
}

func lockReturn(ctx context.Context, repos ports.Repositories, id uuid.UUID) (*domain.ReturnRequest, error) {
	r, err := repos.Returns.Lock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock return: %w", err)
	}
	if r == nil {
		return nil, domain.NewNotFoundError("return", id.String())
	}
	return r, nil
}
