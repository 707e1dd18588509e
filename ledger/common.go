package ledger

import (
	"errors"
)

// Domain errors. They are classified into HTTP status codes at the API boundary.
var (
	ErrBookNotFound            = errors.New("book not found")
	ErrLoanNotFound            = errors.New("loan not found")
	ErrUserNotFound            = errors.New("user not found")
	ErrBookNotAvailable        = errors.New("book is not available")
	ErrLoanAlreadyReturned     = errors.New("loan already returned")
	ErrPermissionDenied        = errors.New("you do not have permission to perform this action")
	ErrDuplicateUsername       = errors.New("a user with that username already exists")
	ErrInvalidBook             = errors.New("invalid book")
	ErrInvalidUser             = errors.New("invalid user")
	ErrInvalidDueDate          = errors.New("due date must not be before the borrow date")
	ErrInvalidLoanStatus       = errors.New("invalid loan status")
	ErrQuantityBelowLentCopies = errors.New("quantity must not be lower than the number of copies on loan")
	ErrInvalidPassword         = errors.New("password must be at least 8 characters long")
)

// Infrastructure errors returned by storage engines.
var (
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrConcurrencyConflict   = errors.New("concurrency conflict, the transaction could not be serialized")
	ErrBuildingQueryFailed   = errors.New("building the query failed")
	ErrQueryingFailed        = errors.New("querying the database failed")
	ErrExecutingFailed       = errors.New("executing the statement failed")
	ErrScanningDBRowFailed   = errors.New("scanning the database row failed")
	ErrBeginTxFailed         = errors.New("beginning the transaction failed")
	ErrCommitTxFailed        = errors.New("committing the transaction failed")
	ErrMigrationFailed       = errors.New("applying the database schema failed")
	ErrInvalidLoanPeriod     = errors.New("loan period must be positive")
	ErrNilClock              = errors.New("clock must not be nil")
)

// IsValidationError reports whether err is caused by input that violates a domain rule.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrBookNotAvailable,
		ErrLoanAlreadyReturned,
		ErrDuplicateUsername,
		ErrInvalidBook,
		ErrInvalidUser,
		ErrInvalidDueDate,
		ErrInvalidLoanStatus,
		ErrQuantityBelowLentCopies,
		ErrInvalidPassword,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// IsNotFoundError reports whether err is caused by a missing book, loan, or user.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookNotFound) || errors.Is(err, ErrLoanNotFound) || errors.Is(err, ErrUserNotFound)
}
