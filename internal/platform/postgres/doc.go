// Package postgres provides the PostgreSQL implementation of the task store
// contracts defined in internal/store. It runs every statement on a store.DBTX,
// which lets a worker bind a store to one checked-out *sql.Conn for its whole
// lifetime. It also owns the embedded schema migrations.
package postgres
