// Package postgres provides PostgreSQL-backed implementations of the
// application's store interfaces and of the board's PositionStore
// contract. All implementations work through store.DBTX so they can run
// on a *sql.DB or, via WithTx, inside a caller-managed transaction.
package postgres
