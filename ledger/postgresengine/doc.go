// Package postgresengine provides the PostgreSQL implementation of the library ledger.
//
// The Store keeps books, users, and loans in three tables and guards the availability count of
// every book with row locks: a borrow reads the book with SELECT ... FOR UPDATE, decides with
// ledger.DecideBorrow, decrements, and inserts the loan in one transaction. A return locks the
// loan, then the book, and closes the loan in one transaction as well. Concurrent borrows of the
// last copy are therefore serialized and exactly one of them succeeds.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Optional replica for listings read with ledger.EventualConsistency
//   - Embedded schema with Migrate
//   - Logging, contextual logging, metrics, and tracing through small interfaces
//
// Usage examples:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(db, postgresengine.WithLogger(logger))
//
//	_ = store.Migrate(ctx)
//	loan, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: 3, UserID: 7})
//	if errors.Is(err, ledger.ErrBookNotAvailable) {
//		// all copies are lent out
//	}
//	loan, err = store.ReturnLoan(ctx, loan.ID, ledger.Actor{UserID: 7})
package postgresengine
