package postgresengine

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const (
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeUniqueViolation      = "23505"
	pgCodeForeignKeyViolation  = "23503"
	pgCodeCheckViolation       = "23514"

	constraintUsernameUnique = "users_username_key"
	constraintLoanUser       = "loans_user_id_fkey"
	constraintLoanBook       = "loans_book_id_fkey"
)

// classifyDBError maps PostgreSQL error codes onto ledger errors.
// It returns nil for errors it does not know about. pgx and lib/pq report errors with different types.
func classifyDBError(err error) error {
	code, constraint, ok := pgErrorDetails(err)
	if !ok {
		return nil
	}

	switch code {
	case pgCodeSerializationFailure, pgCodeDeadlockDetected:
		return errors.Join(ledger.ErrConcurrencyConflict, err)

	case pgCodeUniqueViolation:
		if constraint == constraintUsernameUnique {
			return errors.Join(ledger.ErrDuplicateUsername, err)
		}

	case pgCodeForeignKeyViolation:
		switch constraint {
		case constraintLoanUser:
			return errors.Join(ledger.ErrUserNotFound, err)
		case constraintLoanBook:
			return errors.Join(ledger.ErrBookNotFound, err)
		}

	case pgCodeCheckViolation:
		return errors.Join(ledger.ErrInvalidBook, err)
	}

	return nil
}

func pgErrorDetails(err error) (code string, constraint string, ok bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, pgxErr.ConstraintName, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}

	return "", "", false
}

// wrapDBError prefers a classified ledger error and falls back to the given infrastructure sentinel.
func wrapDBError(sentinel error, err error) error {
	if classified := classifyDBError(err); classified != nil {
		return classified
	}

	return errors.Join(sentinel, err)
}

// errorType is the low-cardinality label used for metrics and spans.
func errorType(err error) string {
	switch {
	case errors.Is(err, ledger.ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, ledger.ErrBookNotAvailable):
		return "book_not_available"
	case errors.Is(err, ledger.ErrLoanAlreadyReturned):
		return "loan_already_returned"
	case errors.Is(err, ledger.ErrPermissionDenied):
		return "permission_denied"
	case ledger.IsNotFoundError(err):
		return "not_found"
	case ledger.IsValidationError(err):
		return "validation"
	case errors.Is(err, ledger.ErrBuildingQueryFailed):
		return "build_query"
	case errors.Is(err, ledger.ErrScanningDBRowFailed):
		return "scan"
	default:
		return "database"
	}
}

// isDatabaseError reports whether err is an infrastructure failure, as opposed to a rejected operation.
func isDatabaseError(err error) bool {
	return errorType(err) == "database" || errors.Is(err, ledger.ErrConcurrencyConflict)
}
