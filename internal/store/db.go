package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql the stores execute queries through.
// Both *sql.DB and *sql.Tx satisfy it, so a store method runs the same
// whether it was given the pool or a transaction via WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
