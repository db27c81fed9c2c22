// internal/adapters/db/import_job_repository.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/stockledger/internal/core/domain"
)

var importJobColumns = []string{
	"id", "warehouse_id", "client_id", "source", "file_key", "status",
	"report", "error", "created_by", "created_at", "updated_at", "completed_at",
}

type importJobRepository struct {
	q querier
}

func scanImportJob(row pgx.Row) (*domain.ImportJob, error) {
	var (
		j      domain.ImportJob
		report []byte
	)
	if err := row.Scan(
		&j.ID, &j.WarehouseID, &j.ClientID, &j.Source, &j.FileKey, &j.Status,
		&report, &j.Error, &j.CreatedBy, &j.CreatedAt, &j.UpdatedAt, &j.CompletedAt,
	); err != nil {
		return nil, err
	}
	if len(report) > 0 {
		j.Report = &domain.ImportReport{}
		if err := json.Unmarshal(report, j.Report); err != nil {
			return nil, fmt.Errorf("failed to decode import report: %w", err)
		}
	}
	return &j, nil
}

func reportArg(report *domain.ImportReport) (any, error) {
	if report == nil {
		return nil, nil
	}
	b, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal import report: %w", err)
	}
	return b, nil
}

func (r *importJobRepository) Create(ctx context.Context, job *domain.ImportJob) error {
	report, err := reportArg(job.Report)
	if err != nil {
		return err
	}
	query, args, err := psql.Insert("import_jobs").
		Columns(importJobColumns...).
		Values(job.ID, job.WarehouseID, job.ClientID, job.Source, job.FileKey, job.Status,
			report, job.Error, job.CreatedBy, job.CreatedAt, job.UpdatedAt, job.CompletedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert import job: %w", err)
	}
	return nil
}

func (r *importJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error) {
	query, args, err := psql.Select(importJobColumns...).
		From("import_jobs").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return ScanOne(r.q.QueryRow(ctx, query, args...), scanImportJob)
}

// UpdateStatus moves the job along; any status past processing stamps completed_at.
func (r *importJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ImportJobStatus, report *domain.ImportReport, errMsg string) error {
	now := time.Now().UTC()
	ub := psql.Update("import_jobs").
		Set("status", status).
		Set("error", errMsg).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id})
	if report != nil {
		payload, err := reportArg(report)
		if err != nil {
			return err
		}
		ub = ub.Set("report", payload)
	}
	if status != domain.JobQueued && status != domain.JobProcessing {
		ub = ub.Set("completed_at", now)
	}

	query, args, err := ub.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update import job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("import job", id.String())
	}
	return nil
}
