package getbook

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Store is the part of the ledger the handler needs.
type Store interface {
	GetBook(ctx context.Context, bookID int64) (ledger.Book, error)
}

// QueryHandler reads a book from the store.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle reads the book from the primary, so a client sees its own writes.
//
//	ERROR: ledger.ErrBookNotFound
func (h QueryHandler) Handle(ctx context.Context, query Query) (ledger.Book, error) {
	return h.store.GetBook(ledger.WithStrongConsistency(ctx), query.BookID)
}
