package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/ledger/postgresengine/internal/adapters"
)

// ListLoans returns loans joined with borrower and book attributes, newest first.
func (s *Store) ListLoans(ctx context.Context, filter ledger.LoanFilter) ([]ledger.LoanDetails, error) {
	observer, ctx := s.observeQuery(ctx, "list_loans")

	sqlQuery, err := buildSelectLoansQuery(filter)
	if err != nil {
		return nil, observer.finishError(err)
	}

	loans, err := s.queryLoanDetails(ctx, s.db, "list_loans", sqlQuery)
	if err != nil {
		return nil, observer.finishError(err)
	}

	observer.finishSuccess(len(loans))

	return loans, nil
}

// GetLoan returns one loan joined with borrower and book attributes.
//
//	ERROR: ledger.ErrLoanNotFound
func (s *Store) GetLoan(ctx context.Context, loanID int64) (ledger.LoanDetails, error) {
	observer, ctx := s.observeQuery(ctx, "get_loan")

	loan, err := s.getLoanDetails(ctx, s.db, loanID)
	if err != nil {
		return ledger.LoanDetails{}, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return loan, nil
}

// BorrowBook lends one copy of a book to a user.
//
// In one transaction the borrower row is key share locked, the book row is locked with
// SELECT ... FOR UPDATE, the availability is checked and decremented, and the loan is inserted. Concurrent borrows of the same book queue on the lock,
// so the number of successful borrows never exceeds the copies available.
//
//	ERROR: ledger.ErrBookNotFound, ledger.ErrUserNotFound, ledger.ErrBookNotAvailable, ledger.ErrInvalidDueDate
func (s *Store) BorrowBook(ctx context.Context, req ledger.BorrowRequest) (ledger.LoanDetails, error) {
	observer, ctx := s.observeBorrow(ctx, req)

	var loan ledger.LoanDetails

	err := s.inTx(ctx, func(tx adapters.DBTx) error {
		user, userErr := s.shareUser(ctx, tx, req.UserID)
		if userErr != nil {
			return userErr
		}

		book, lockErr := s.lockBook(ctx, tx, req.BookID)
		if lockErr != nil {
			return lockErr
		}

		now := s.now()

		dueDate, dueErr := ledger.ResolveDueDate(now, req.DueDate, s.loanPeriod)
		if dueErr != nil {
			return dueErr
		}

		borrowed, decideErr := ledger.DecideBorrow(book)
		if decideErr != nil {
			return decideErr
		}

		updateQuery, buildErr := buildUpdateAvailabilityQuery(borrowed.ID, borrowed.Available, now)
		if buildErr != nil {
			return buildErr
		}

		if _, execErr := s.exec(ctx, tx, "decrement_available", updateQuery); execErr != nil {
			return execErr
		}

		insertQuery, buildErr := buildInsertLoanQuery(user.ID, book.ID, now, dueDate.UTC().Truncate(time.Microsecond))
		if buildErr != nil {
			return buildErr
		}

		inserted, insertErr := s.queryOneLoan(ctx, tx, "insert_loan", insertQuery)
		if insertErr != nil {
			return insertErr
		}

		loan = detailsOf(inserted, user, book)

		return nil
	})

	if err != nil {
		if errors.Is(err, ledger.ErrBookNotAvailable) {
			s.logOperation(ctx, logMsgBorrowRejected, logAttrBookID, req.BookID, logAttrUserID, req.UserID, logAttrReason, err.Error())
		}

		return ledger.LoanDetails{}, observer.finishError(err)
	}

	s.logOperation(ctx, logMsgBookBorrowed, logAttrLoanID, loan.ID, logAttrBookID, loan.BookID, logAttrUserID, loan.UserID)
	observer.finishSuccess(1)

	return loan, nil
}

// ReturnLoan closes a loan and puts the copy back on the shelf.
//
// The loan row is locked first, so of two concurrent returns only one sees status borrowed.
// The book row is locked afterward and its availability incremented, capped at the quantity.
//
//	ERROR: ledger.ErrLoanNotFound, ledger.ErrPermissionDenied, ledger.ErrLoanAlreadyReturned
func (s *Store) ReturnLoan(ctx context.Context, loanID int64, actor ledger.Actor) (ledger.LoanDetails, error) {
	observer, ctx := s.observeReturn(ctx, loanID)

	var loan ledger.LoanDetails

	err := s.inTx(ctx, func(tx adapters.DBTx) error {
		locked, lockErr := s.lockLoan(ctx, tx, loanID)
		if lockErr != nil {
			return lockErr
		}

		if decideErr := ledger.DecideReturn(locked, actor); decideErr != nil {
			return decideErr
		}

		book, bookErr := s.lockBook(ctx, tx, locked.BookID)
		if bookErr != nil {
			return bookErr
		}

		now := s.now()

		restocked, ok := ledger.RestockReturnedCopy(book)
		if !ok {
			s.logWarn(ctx, logMsgRestockCapped, logAttrBookID, book.ID, logAttrAvailable, book.Available)
		}

		updateQuery, buildErr := buildUpdateAvailabilityQuery(restocked.ID, restocked.Available, now)
		if buildErr != nil {
			return buildErr
		}

		if _, execErr := s.exec(ctx, tx, "increment_available", updateQuery); execErr != nil {
			return execErr
		}

		closeQuery, buildErr := buildCloseLoanQuery(loanID, now)
		if buildErr != nil {
			return buildErr
		}

		rowsAffected, execErr := s.exec(ctx, tx, "close_loan", closeQuery)
		if execErr != nil {
			return execErr
		}

		if rowsAffected == 0 {
			return ledger.ErrLoanAlreadyReturned
		}

		var detailsErr error
		loan, detailsErr = s.getLoanDetails(ctx, tx, loanID)

		return detailsErr
	})

	if err != nil {
		if errors.Is(err, ledger.ErrLoanAlreadyReturned) || errors.Is(err, ledger.ErrPermissionDenied) {
			s.logOperation(ctx, logMsgReturnRejected, logAttrLoanID, loanID, logAttrReason, err.Error())
		}

		return ledger.LoanDetails{}, observer.finishError(err)
	}

	s.logOperation(ctx, logMsgLoanReturned, logAttrLoanID, loan.ID, logAttrBookID, loan.BookID, logAttrUserID, loan.UserID)
	observer.finishSuccess(1)

	return loan, nil
}

func (s *Store) lockLoan(ctx context.Context, tx adapters.DBTx, loanID int64) (ledger.Loan, error) {
	sqlQuery, err := buildLockLoanQuery(loanID)
	if err != nil {
		return ledger.Loan{}, err
	}

	return s.queryOneLoan(ctx, tx, "lock_loan", sqlQuery)
}

// shareUser keeps the user from being deleted while the loan is written.
func (s *Store) shareUser(ctx context.Context, tx adapters.DBTx, userID int64) (ledger.User, error) {
	sqlQuery, err := buildShareUserQuery(userID)
	if err != nil {
		return ledger.User{}, err
	}

	return s.queryOneUser(ctx, tx, "share_user", sqlQuery)
}

func (s *Store) getLoanDetails(ctx context.Context, r runner, loanID int64) (ledger.LoanDetails, error) {
	sqlQuery, err := buildSelectLoanQuery(loanID)
	if err != nil {
		return ledger.LoanDetails{}, err
	}

	loans, err := s.queryLoanDetails(ctx, r, "get_loan", sqlQuery)
	if err != nil {
		return ledger.LoanDetails{}, err
	}

	if len(loans) == 0 {
		return ledger.LoanDetails{}, ledger.ErrLoanNotFound
	}

	return loans[0], nil
}

func (s *Store) queryOneLoan(ctx context.Context, r runner, action, sqlQuery string) (ledger.Loan, error) {
	var (
		loan  ledger.Loan
		found bool
	)

	err := s.query(ctx, r, action, sqlQuery, func(rows adapters.DBRows) error {
		scanned, scanErr := scanLoan(rows)
		if scanErr != nil {
			return scanErr
		}

		loan, found = scanned, true

		return nil
	})
	if err != nil {
		return ledger.Loan{}, err
	}

	if !found {
		return ledger.Loan{}, ledger.ErrLoanNotFound
	}

	return loan, nil
}

func (s *Store) queryLoanDetails(ctx context.Context, r runner, action, sqlQuery string) ([]ledger.LoanDetails, error) {
	loans := make([]ledger.LoanDetails, 0)

	err := s.query(ctx, r, action, sqlQuery, func(rows adapters.DBRows) error {
		loan, scanErr := scanLoanDetails(rows)
		if scanErr != nil {
			return scanErr
		}

		loans = append(loans, loan)

		return nil
	})

	return loans, err
}
