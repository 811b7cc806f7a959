// Package repository reads labelled sprints and appends predictions in the
// relational store.
package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

const (
	TableSprints     = "sprints"
	TablePredictions = "predictions"
)

var (
	sprintColumns     = []string{"id", "tasks_completed", "tasks_pending", "issues_reported", "likert_score", "status"}
	predictionColumns = []string{"id", "sprint_id", "delay_probability", "recommendation", "created_at"}
)

// Pool is the subset of *pgxpool.Pool the repository needs. Each call
// acquires a pooled connection and releases it when the call (or its rows)
// completes.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func NewQueryBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// classify maps driver failures onto the store error kinds.
func classify(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsConnectionException(pgErr.Code):
			return errors.Wrapf(models.ErrConnection, "%s: %s", op, pgErr.Message)
		case pgErr.Code == pgerrcode.UndefinedTable,
			pgErr.Code == pgerrcode.UndefinedColumn,
			pgErr.Code == pgerrcode.DatatypeMismatch,
			pgErr.Code == pgerrcode.InvalidTextRepresentation:
			return errors.Wrapf(models.ErrSchema, "%s: %s (SQLSTATE %s)", op, pgErr.Message, pgErr.Code)
		default:
			return errors.Wrap(err, op)
		}
	}
	if errors.Is(err, context.Canceled) {
		return errors.Wrap(err, op)
	}
	return errors.Wrapf(models.ErrConnection, "%s: %v", op, err)
}

func schemaError(err error, op string) error {
	return errors.Wrapf(models.ErrSchema, "%s: %v", op, err)
}
