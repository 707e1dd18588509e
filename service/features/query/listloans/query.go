package listloans

import (
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const (
	queryType = "ListLoans"
)

// Query lists loans, optionally filtered by borrower and status.
type Query struct {
	Filter ledger.LoanFilter
}

// QueryType returns the query name used in metrics, spans, and logs.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery parses the optional filters. An empty status means any status.
// Only staff may filter by another user than themselves.
//
//	ERROR: ledger.ErrInvalidLoanStatus, ledger.ErrPermissionDenied
func BuildQuery(actor ledger.Actor, userID *int64, status string) (Query, error) {
	if userID != nil && !actor.CanManage(*userID) {
		return Query{}, ledger.ErrPermissionDenied
	}

	filter := ledger.LoanFilter{UserID: userID}

	if status != "" {
		parsed, err := ledger.ParseLoanStatus(status)
		if err != nil {
			return Query{}, err
		}
		filter.Status = &parsed
	}

	return Query{Filter: filter}, nil
}
