package adapters

import (
	"context"
	"database/sql"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// readCommitted is the isolation level of every ledger transaction.
// Correctness of availability counts relies on SELECT ... FOR UPDATE, not on SERIALIZABLE.
var readCommitted = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// useReplica reports whether a plain query may be served from a configured replica.
func useReplica(ctx context.Context, hasReplica bool) bool {
	return hasReplica && ledger.GetConsistencyLevel(ctx) == ledger.EventualConsistency
}

// stdQueryer is satisfied by *sql.DB, *sql.Tx, *sqlx.DB, and *sqlx.Tx.
type stdQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func stdQuery(ctx context.Context, q stdQueryer, query string) (DBRows, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

func stdExec(ctx context.Context, q stdQueryer, query string) (DBResult, error) {
	result, err := q.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// stdTx wraps a database/sql transaction, for both *sql.Tx and *sqlx.Tx.
type stdTx struct {
	queryer  stdQueryer
	commit   func() error
	rollback func() error
}

func (t *stdTx) Query(ctx context.Context, query string) (DBRows, error) {
	return stdQuery(ctx, t.queryer, query)
}

func (t *stdTx) Exec(ctx context.Context, query string) (DBResult, error) {
	return stdExec(ctx, t.queryer, query)
}

// Commit ignores ctx, database/sql binds the transaction to the context given to BeginTx.
func (t *stdTx) Commit(_ context.Context) error {
	return t.commit()
}

func (t *stdTx) Rollback(_ context.Context) error {
	return t.rollback()
}

// stdRows wraps standard library sql.Rows to implement DBRows interface.
type stdRows struct {
	rows *sql.Rows
}

func (s *stdRows) Next() bool {
	return s.rows.Next()
}

func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

func (s *stdRows) Err() error {
	return s.rows.Err()
}

func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdResult wraps standard library sql.Result to implement DBResult interface.
type stdResult struct {
	result sql.Result
}

func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}
