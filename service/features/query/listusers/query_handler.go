package listusers

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Store is the part of the ledger the handler needs.
type Store interface {
	ListUsers(ctx context.Context) ([]ledger.User, error)
}

// QueryHandler lists users from the store.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle reads from the store with eventual consistency.
func (h QueryHandler) Handle(ctx context.Context, _ Query) (Users, error) {
	users, err := h.store.ListUsers(ledger.WithEventualConsistency(ctx))
	if err != nil {
		return Users{}, err
	}

	return Users{Users: users, Count: len(users)}, nil
}
