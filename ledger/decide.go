package ledger

import (
	"time"
)

// ResolveBorrower determines whose loan a borrow creates.
//
// Rules:
//
//	GIVEN: an actor and an optional requested borrower
//	WHEN: no borrower is requested, or the actor requests itself
//	THEN: the loan belongs to the actor
//	WHEN: another borrower is requested by a staff actor
//	THEN: the loan belongs to the requested borrower
//	ERROR: ErrPermissionDenied if a non-staff actor requests another borrower
func ResolveBorrower(actor Actor, requested *int64) (int64, error) {
	if requested == nil || *requested == actor.UserID {
		return actor.UserID, nil
	}

	if !actor.IsStaff {
		return 0, ErrPermissionDenied
	}

	return *requested, nil
}

// ResolveDueDate returns the requested due date, or borrowedAt plus period when none was requested.
func ResolveDueDate(borrowedAt time.Time, requested time.Time, period time.Duration) (time.Time, error) {
	if requested.IsZero() {
		return borrowedAt.Add(period), nil
	}

	if requested.Before(borrowedAt) {
		return time.Time{}, ErrInvalidDueDate
	}

	return requested, nil
}

// DecideBorrow takes one copy of a locked book off the shelf.
// It is a pure function. The caller must hold a row lock on the book for the whole check-and-decrement.
//
//	ERROR: ErrBookNotAvailable if no copy is available, the book is returned unchanged
func DecideBorrow(book Book) (Book, error) {
	if book.Available <= 0 {
		return book, ErrBookNotAvailable
	}

	book.Available--

	return book, nil
}

// DecideReturn checks that a locked loan may be closed by the actor.
//
//	ERROR: ErrPermissionDenied if the actor is neither the borrower nor staff
//	ERROR: ErrLoanAlreadyReturned if the loan was already closed, nothing must be changed
func DecideReturn(loan Loan, actor Actor) error {
	if !actor.CanManage(loan.UserID) {
		return ErrPermissionDenied
	}

	if loan.IsReturned() {
		return ErrLoanAlreadyReturned
	}

	return nil
}

// RestockReturnedCopy puts one copy of a locked book back on the shelf.
// The second result is false when the count was already at Quantity and had to be capped.
func RestockReturnedCopy(book Book) (Book, bool) {
	if book.Available >= book.Quantity {
		book.Available = book.Quantity
		return book, false
	}

	book.Available++

	return book, true
}

// DecideQuantityChange applies a new copy count to a locked book and keeps the number of copies on loan.
//
//	ERROR: ErrQuantityBelowLentCopies if fewer copies would be owned than are lent out
func DecideQuantityChange(book Book, quantity int) (Book, error) {
	onLoan := book.OnLoan()
	if quantity < onLoan {
		return book, ErrQuantityBelowLentCopies
	}

	book.Quantity = quantity
	book.Available = quantity - onLoan

	return book, nil
}
