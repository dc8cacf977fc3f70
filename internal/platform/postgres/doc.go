// Package postgres provides PostgreSQL implementations of the store
// interfaces. All stores accept a store.DBTX so they run equally well
// on a *sql.DB or inside a *sql.Tx owned by the caller.
package postgres
