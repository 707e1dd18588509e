// Package adapters provide database adapter implementations for the PostgreSQL ledger store.
//
// Three PostgreSQL connection types are supported: pgxpool.Pool, sql.DB, and sqlx.DB.
// All of them are exposed through the DBAdapter interface, so the store issues the same
// SQL and uses the same transaction handling regardless of the driver in use.
//
// Each adapter may carry a replica connection. Plain queries go to the replica only when the
// context asks for ledger.EventualConsistency; everything else, including all transactions,
// runs on the primary.
package adapters
