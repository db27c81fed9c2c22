// internal/adapters/db/store.go
package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stockledger/internal/core/ports"
)

// Postgres SQLSTATE codes the repositories translate
const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Store is the Postgres unit of work. Repositories handed to a transaction
// share one pgx.Tx, so a ledger append and its snapshot update commit together.
type Store struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.Store = (*Store)(nil)

// NewStore creates a Postgres-backed store
func NewStore(db *Database, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With(slog.String("component", "store")),
	}
}

// Repositories returns repositories that run each statement in its own transaction
func (s *Store) Repositories() ports.Repositories {
	return newRepositories(s.db.pool, s.logger)
}

// Transaction runs fn inside one database transaction
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	return s.db.Transaction(ctx, func(tx pgx.Tx) error {
		return fn(ctx, newRepositories(tx, s.logger))
	})
}

func newRepositories(q querier, logger *slog.Logger) ports.Repositories {
	return ports.Repositories{
		Products:    &productRepository{q: q, logger: logger},
		Snapshots:   &snapshotRepository{q: q},
		Ledger:      &ledgerRepository{q: q},
		Identifiers: &identifierRepository{q: q},
		Returns:     &returnRepository{q: q},
		Outbox:      &outboxRepository{q: q},
		ImportJobs:  &importJobRepository{q: q},
	}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func numericArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// numeric columns are selected as ::text and parsed here
func parseNumeric(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func stringsArg(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nilIfEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}
