package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLoanPeriod is added to the borrow date when no due date is requested.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// LoanStatus is the lifecycle state of a loan. A loan moves from borrowed to returned exactly once.
type LoanStatus string

const (
	LoanBorrowed LoanStatus = "borrowed"
	LoanReturned LoanStatus = "returned"
)

// ParseLoanStatus converts the textual status used on the wire.
func ParseLoanStatus(s string) (LoanStatus, error) {
	switch LoanStatus(s) {
	case LoanBorrowed, LoanReturned:
		return LoanStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLoanStatus, s)
	}
}

// Loan records one borrowed copy of a book.
// Fine is carried on the record with two decimal places and is never computed by the ledger.
type Loan struct {
	ID         int64
	UserID     int64
	BookID     int64
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	Status     LoanStatus
	Fine       decimal.Decimal
}

// IsReturned reports whether the loan was already closed.
func (l Loan) IsReturned() bool {
	return l.Status == LoanReturned
}

// LoanDetails is a loan joined with the borrower's username and the book's descriptive attributes.
type LoanDetails struct {
	Loan
	Username     string
	BookTitle    string
	BookAuthor   string
	BookCategory string
	BookISBN     string
}

// LoanFilter narrows a loan listing. Nil fields do not filter.
type LoanFilter struct {
	UserID *int64
	Status *LoanStatus
}

// BorrowRequest describes a borrow after the borrower was resolved.
// A zero DueDate means the default loan period applies.
type BorrowRequest struct {
	BookID  int64
	UserID  int64
	DueDate time.Time
}

// DaysOverdue returns the number of whole calendar days (UTC) the loan is past its due date.
// Returned loans and loans that are not yet due report 0.
func DaysOverdue(loan Loan, now time.Time) int {
	if loan.IsReturned() || loan.DueDate.IsZero() || !now.After(loan.DueDate) {
		return 0
	}

	today := calendarDay(now)
	due := calendarDay(loan.DueDate)

	return int(today.Sub(due).Hours() / 24)
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
