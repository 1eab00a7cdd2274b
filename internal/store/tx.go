package store

//go:generate mockgen -destination=mocks/mock_store.go -package=store_mocks github.com/roach88/cypherlite/internal/store Beginner,Tx

import (
	"context"
	"database/sql"
	"fmt"
)

// Beginner opens transactions. *Store implements it.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a single storage transaction.
// Query materializes every row before returning so callers never hold a cursor
// across statements.
type Tx interface {
	Exec(ctx context.Context, query string, args ...any) (ExecResult, error)
	Query(ctx context.Context, query string, args ...any) ([][]any, error)
	Commit() error
	Rollback() error
}

// ExecResult reports the effect of a data-modifying statement.
type ExecResult struct {
	RowsAffected int64
	LastInsertID int64
}

var _ Beginner = (*Store)(nil)

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (ExecResult, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return ExecResult{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ExecResult{}, fmt.Errorf("rows affected: %w", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return ExecResult{}, fmt.Errorf("last insert id: %w", err)
	}
	return ExecResult{RowsAffected: affected, LastInsertID: lastID}, nil
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) ([][]any, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	result := [][]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

func (t *sqlTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback() error {
	return t.tx.Rollback()
}
