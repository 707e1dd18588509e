package listloans

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Store is the part of the ledger the handler needs.
type Store interface {
	ListLoans(ctx context.Context, filter ledger.LoanFilter) ([]ledger.LoanDetails, error)
}

// QueryHandler lists loans, filtered by borrower and status.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a QueryHandler for the given store.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle lists the loans matching the filter, newest first. Reads may be served by a replica.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Loans, error) {
	loans, err := h.store.ListLoans(ledger.WithEventualConsistency(ctx), query.Filter)
	if err != nil {
		return Loans{}, err
	}

	return Loans{Loans: loans, Count: len(loans)}, nil
}
