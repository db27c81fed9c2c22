// internal/core/services/scan.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// ScanService accumulates scans of a batch barcode and commits them as one movement
type ScanService struct {
	store    ports.Store
	sessions ports.ScanSessionStore
	engine   *ReconciliationEngine
	logger   *slog.Logger
}

var _ ports.ScanService = (*ScanService)(nil)

// NewScanService creates a new scan session service
func NewScanService(store ports.Store, sessions ports.ScanSessionStore, engine *ReconciliationEngine, logger *slog.Logger) *ScanService {
	return &ScanService{
		store:    store,
		sessions: sessions,
		engine:   engine,
		logger:   logger.With(slog.String("service", "scan_sessions")),
	}
}

// Open starts a session for a BATCH product.
func (s *ScanService) Open(ctx context.Context, req ports.OpenSessionRequest) (*domain.ScanSession, error) {
	if req.Direction != "" && req.Direction != domain.MovementIn && req.Direction != domain.MovementOut {
		return nil, domain.NewValidationError("unknown direction %q", req.Direction)
	}

	product, err := s.store.Repositories().Products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, domain.NewNotFoundError("product", req.ProductID.String())
	}
	if product.Type != domain.ProductBatch {
		return nil, domain.NewValidationError("scan sessions are only for BATCH products, %s is %s", product.ID, product.Type)
	}
	if product.WarehouseID != req.WarehouseID || product.ClientID != req.ClientID {
		return nil, domain.NewValidationError("product %s does not belong to warehouse %s and client %s",
			product.ID, req.WarehouseID, req.ClientID)
	}

	session := domain.NewScanSession(product.Key(), req.Direction, req.CreatedBy)
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save scan session: %w", err)
	}

	s.logger.InfoContext(ctx, "scan session opened",
		slog.String("session_id", session.ID.String()),
		slog.String("product_id", product.ID.String()),
		slog.String("direction", string(session.Direction)))
	return session, nil
}

// Scan counts one scan of code. A second distinct barcode is rejected and the
// session keeps its previous count.
func (s *ScanService) Scan(ctx context.Context, id uuid.UUID, code string) (*domain.ScanSession, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := session.Scan(code); err != nil {
		return nil, err
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save scan session: %w", err)
	}
	return session, nil
}

// Commit applies the scanned count as one movement and closes the session.
// The session id is the entry's reference, so a retry after a failed status
// save returns the entry written by the first commit.
func (s *ScanService) Commit(ctx context.Context, id uuid.UUID, notes string) (*ports.MovementResult, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionOpen {
		return nil, domain.NewInvalidTransitionError(string(session.Status), string(domain.SessionCommitted))
	}
	if session.Count == 0 {
		return nil, domain.NewValidationError("scan session %s has no scans", id)
	}

	line := domain.MovementLine{
		Key:         session.Key(),
		Identifiers: session.Scans(),
		Notes:       notes,
		CreatedBy:   session.CreatedBy,
	}
	var m domain.Movement = domain.StockIn{MovementLine: line}
	if session.Direction == domain.MovementOut {
		m = domain.Dispatch{MovementLine: line}
	}

	result, err := s.engine.applyOnce(ctx, m, session.ID)
	if err != nil {
		return nil, err
	}

	if err := session.Finish(domain.SessionCommitted); err != nil {
		return nil, err
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		s.logger.WarnContext(ctx, "failed to mark scan session committed",
			slog.String("session_id", id.String()),
			slog.String("error", err.Error()))
	}

	s.logger.InfoContext(ctx, "scan session committed",
		slog.String("session_id", id.String()),
		slog.String("barcode", session.Barcode),
		slog.Int("scans", session.Count),
		slog.Bool("replayed", result.Replayed),
		slog.String("ledger_id", result.Entry.ID.String()))
	return result, nil
}

// Close abandons a session. Nothing was written, so nothing is compensated.
func (s *ScanService) Close(ctx context.Context, id uuid.UUID) error {
	session, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if session.Status == domain.SessionOpen {
		if err := session.Finish(domain.SessionClosed); err != nil {
			return err
		}
	}
	if err := s.sessions.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to delete scan session: %w", err)
	}

	s.logger.InfoContext(ctx, "scan session closed",
		slog.String("session_id", id.String()),
		slog.Int("scans", session.Count))
	return nil
}

func (s *ScanService) load(ctx context.Context, id uuid.UUID) (*domain.ScanSession, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan session: %w", err)
	}
	if session == nil {
		return nil, domain.NewNotFoundError("scan session", id.String())
	}
	return session, nil
}
