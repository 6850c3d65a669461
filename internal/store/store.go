package store

import "database/sql"

// DBTX is the subset of database/sql used by stores. Both *sql.DB and
// *sql.Tx satisfy it, so a store can be rebound to a transaction with WithTx
// when several writes must land atomically.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type scanner interface{ Scan(dest ...any) error }
