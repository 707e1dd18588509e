package getloan

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Store is the part of the ledger the handler needs.
type Store interface {
	GetLoan(ctx context.Context, loanID int64) (ledger.LoanDetails, error)
}

// QueryHandler reads a loan from the store.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle reads the loan from the primary.
//
//	ERROR: ledger.ErrLoanNotFound
func (h QueryHandler) Handle(ctx context.Context, query Query) (ledger.LoanDetails, error) {
	return h.store.GetLoan(ledger.WithStrongConsistency(ctx), query.LoanID)
}
