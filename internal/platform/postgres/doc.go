// Package postgres provides PostgreSQL-backed implementations of the store
// interfaces. Every store accepts a store.DBTX so it can run against either
// the shared *sql.DB or a transaction obtained through WithTx.
package postgres
