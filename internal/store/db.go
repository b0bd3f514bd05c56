package store

import (
	"context"
	"database/sql"
)

// DBTX is the database seam the stores are built on. Both *sql.DB and
// *sql.Tx satisfy it, so a store constructed on the pool can be rebound to a
// transaction with WithTx and reuse the same query code inside
// RunInTransaction blocks.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
