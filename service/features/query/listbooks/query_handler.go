package listbooks

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Store defines what the QueryHandler needs from the ledger storage.
type Store interface {
	ListBooks(ctx context.Context) ([]ledger.Book, error)
}

// QueryHandler lists books from the store.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle reads from the store with eventual consistency.
func (h QueryHandler) Handle(ctx context.Context, _ Query) (Books, error) {
	books, err := h.store.ListBooks(ledger.WithEventualConsistency(ctx))
	if err != nil {
		return Books{}, err
	}

	return Books{Books: books, Count: len(books)}, nil
}
