package getuser

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Store is the part of the ledger the handler needs.
type Store interface {
	GetUser(ctx context.Context, userID int64) (ledger.User, error)
}

// QueryHandler reads a user from the store.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle reads the user from the primary.
//
//	ERROR: ledger.ErrUserNotFound
func (h QueryHandler) Handle(ctx context.Context, query Query) (ledger.User, error) {
	return h.store.GetUser(ledger.WithStrongConsistency(ctx), query.UserID)
}
