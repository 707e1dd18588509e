// Package ledger provides the core types and rules of the library inventory:
// books with their copy counts, users, and the loans that couple the two.
//
// The package is storage agnostic. It defines the domain records, the sentinel errors
// shared by all layers, the pure decision functions that guard the availability invariant,
// and the dependency-free observability interfaces used by the storage engines.
//
// The central invariant is
//
//	0 <= Book.Available <= Book.Quantity
//
// Available is only ever changed by borrowing a copy (decrement) and returning a loan (increment).
// A storage engine applies DecideBorrow and DecideReturn while holding a row lock on the affected book,
// so that concurrent borrowers observe each other's decrements.
//
// Common usage pattern:
//
//	borrowerID, err := ledger.ResolveBorrower(actor, requestedUserID)
//	if err != nil {
//		// handle permission error
//	}
//
//	loan, err := store.BorrowBook(ctx, ledger.BorrowRequest{BookID: bookID, UserID: borrowerID})
//	if errors.Is(err, ledger.ErrBookNotAvailable) {
//		// no copy left
//	}
package ledger
