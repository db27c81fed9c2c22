// internal/core/services/import.go
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

// ImportService applies bulk import rows. Every row commits in its own
// transaction, so a failing row never rolls back the others.
type ImportService struct {
	store    ports.Store
	engine   *ReconciliationEngine
	registry *IdentifierRegistry
	logger   *slog.Logger
}

var _ ports.ImportService = (*ImportService)(nil)

// NewImportService creates a new import service
func NewImportService(store ports.Store, engine *ReconciliationEngine, registry *IdentifierRegistry, logger *slog.Logger) *ImportService {
	return &ImportService{
		store:    store,
		engine:   engine,
		registry: registry,
		logger:   logger.With(slog.String("service", "import")),
	}
}

// Import parses and applies rows, returning a per-row report.
func (s *ImportService) Import(ctx context.Context, target ports.ImportTarget, rows []domain.RawImportRow) (*domain.ImportReport, error) {
	if target.WarehouseID == uuid.Nil || target.ClientID == uuid.Nil {
		return nil, domain.NewValidationError("warehouse_id and client_id are required")
	}

	report := &domain.ImportReport{JobID: target.JobID}
	parsed := make([]domain.ImportRow, 0, len(rows))
	for _, raw := range rows {
		row, err := domain.ParseImportRow(raw.Line, raw.Values)
		if err != nil {
			report.FailRow(raw.Line, row.ProductName, err)
			continue
		}
		parsed = append(parsed, row)
	}

	registered, err := s.registeredSerials(ctx, target.WarehouseID, parsed)
	if err != nil {
		return nil, err
	}

	defer report.SortRows()

	for _, row := range parsed {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if taken := takenSerials(row, registered); len(taken) > 0 {
			report.FailRow(row.Line, row.ProductName, domain.NewDuplicateIdentifierError(taken...))
			continue
		}

		res, err := s.importRow(ctx, target, row)
		if err != nil {
			report.FailRow(row.Line, row.ProductName, err)
			s.logger.WarnContext(ctx, "import row failed",
				slog.Int("line", row.Line),
				slog.String("product_name", row.ProductName),
				slog.String("error", err.Error()))
			continue
		}
		report.Add(*res)
	}

	s.logger.InfoContext(ctx, "import finished",
		slog.String("job_id", target.JobID),
		slog.Int("total", report.Total),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed))
	return report, nil
}

// registeredSerials pre-checks every serial of the file in one pass so that
// conflicting rows are reported without opening a transaction.
func (s *ImportService) registeredSerials(ctx context.Context, warehouseID uuid.UUID, rows []domain.ImportRow) (map[string]bool, error) {
	var serials []string
	for _, row := range rows {
		if row.ProductType == domain.ProductSerialized {
			serials = append(serials, row.Identifiers...)
		}
	}
	registered := make(map[string]bool)
	if len(serials) == 0 {
		return registered, nil
	}

	conflicts, err := s.registry.CheckBulk(ctx, warehouseID, serials)
	if err != nil {
		return nil, fmt.Errorf("failed to pre-check identifiers: %w", err)
	}
	for _, c := range conflicts {
		if c.Reason == domain.ConflictRegistered {
			registered[c.SerialNumber] = true
		}
	}
	return registered, nil
}

func takenSerials(row domain.ImportRow, registered map[string]bool) []string {
	if row.ProductType != domain.ProductSerialized {
		return nil
	}
	var taken []string
	for _, s := range row.Identifiers {
		if registered[s] {
			taken = append(taken, s)
		}
	}
	return taken
}

func (s *ImportService) importRow(ctx context.Context, target ports.ImportTarget, row domain.ImportRow) (*domain.ImportRowResult, error) {
	var result *domain.ImportRowResult
	err := s.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		product, err := repos.Products.FindByIdentity(ctx, target.WarehouseID, target.ClientID, row.SKU, row.ProductName)
		if err != nil {
			return fmt.Errorf("failed to find product: %w", err)
		}
		if product == nil {
			product = &domain.Product{
				WarehouseID: target.WarehouseID,
				ClientID:    target.ClientID,
				Name:        row.ProductName,
				SKU:         row.SKU,
				Type:        row.ProductType,
				UnitCost:    row.UnitCost,
			}
			if err := product.Validate(); err != nil {
				return err
			}
			product.PrepareForStorage()
			if err := repos.Products.Create(ctx, product); err != nil {
				return fmt.Errorf("failed to create product: %w", err)
			}
		} else if product.Type != row.ProductType {
			return domain.NewValidationError("product %q is %s, row declares %s", product.Name, product.Type, row.ProductType)
		}

		cost := row.UnitCost
		if cost == nil {
			cost = product.UnitCost
		}
		m := domain.Import{
			MovementLine: domain.MovementLine{
				Key:         product.Key(),
				Quantity:    row.Quantity,
				Identifiers: row.Identifiers,
				Notes:       row.Notes,
				CreatedBy:   target.CreatedBy,
			},
			UnitCost: cost,
			Row:      row.Line,
		}

		applied, err := s.engine.apply(ctx, repos, m, nil)
		if err != nil {
			return err
		}

		productID, ledgerID := product.ID, applied.Entry.ID
		result = &domain.ImportRowResult{
			Line:          row.Line,
			ProductName:   row.ProductName,
			Status:        domain.RowCommitted,
			ProductID:     &productID,
			LedgerEntryID: &ledgerID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.engine.invalidate(ctx, domain.SnapshotKey{WarehouseID: target.WarehouseID, ProductID: *result.ProductID, ClientID: target.ClientID})
	return result, nil
}

// CreateJob records a queued import job.
func (s *ImportService) CreateJob(ctx context.Context, job *domain.ImportJob) error {
	if job.WarehouseID == uuid.Nil || job.ClientID == uuid.Nil {
		return domain.NewValidationError("warehouse_id and client_id are required")
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := time.Now().UTC()
	job.Status = domain.JobQueued
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := s.store.Repositories().ImportJobs.Create(ctx, job); err != nil {
		return fmt.Errorf("failed to create import job: %w", err)
	}
	return nil
}

// GetJob retrieves an import job by ID
func (s *ImportService) GetJob(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error) {
	job, err := s.store.Repositories().ImportJobs.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	if job == nil {
		return nil, domain.NewNotFoundError("import job", id.String())
	}
	return job, nil
}

// RunJob imports rows for a queued job and stores the report on it.
func (s *ImportService) RunJob(ctx context.Context, id uuid.UUID, rows []domain.RawImportRow) (*domain.ImportReport, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	jobs := s.store.Repositories().ImportJobs
	if err := jobs.UpdateStatus(ctx, id, domain.JobProcessing, nil, ""); err != nil {
		return nil, fmt.Errorf("failed to mark import job processing: %w", err)
	}

	report, err := s.Import(ctx, ports.ImportTarget{
		WarehouseID: job.WarehouseID,
		ClientID:    job.ClientID,
		CreatedBy:   job.CreatedBy,
		JobID:       id.String(),
	}, rows)
	if err != nil {
		if failErr := s.FailJob(ctx, id, err); failErr != nil {
			s.logger.ErrorContext(ctx, "failed to mark import job failed",
				slog.String("job_id", id.String()),
				slog.String("error", failErr.Error()))
		}
		return report, err
	}

	if err := jobs.UpdateStatus(ctx, id, report.StatusFor(), report, ""); err != nil {
		return report, fmt.Errorf("failed to store import report: %w", err)
	}
	return report, nil
}

// FailJob marks a job failed with the cause.
func (s *ImportService) FailJob(ctx context.Context, id uuid.UUID, cause error) error {
	if err := s.store.Repositories().ImportJobs.UpdateStatus(ctx, id, domain.JobFailed, nil, cause.Error()); err != nil {
		return fmt.Errorf("failed to mark import job failed: %w", err)
	}
	return nil
}
