package updatebook

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
)

// Store is the part of the ledger the handler needs.
type Store interface {
	UpdateBook(ctx context.Context, bookID int64, changes ledger.BookChanges) (ledger.Book, error)
}

// CommandHandler applies partial changes to a book with retry.
type CommandHandler struct {
	store        Store
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a CommandHandler for the given store.
func NewCommandHandler(store Store, opts ...Option) CommandHandler {
	handler := CommandHandler{store: store}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle applies the changes to the book.
//
//	ERROR: ledger.ErrPermissionDenied if the actor is not staff
//	ERROR: ledger.ErrBookNotFound, ledger.ErrInvalidBook
//	ERROR: ledger.ErrQuantityBelowLentCopies if fewer copies would remain than are on loan
func (h CommandHandler) Handle(ctx context.Context, command Command) (ledger.Book, shell.HandlerResult, error) {
	if !command.Actor.IsStaff {
		return ledger.Book{}, shell.HandlerResult{}, ledger.ErrPermissionDenied
	}

	ctx = ledger.WithStrongConsistency(ctx)

	return shell.HandleWithRetry(ctx, func(retryCtx context.Context) (ledger.Book, error) {
		return h.store.UpdateBook(retryCtx, command.BookID, command.Changes)
	}, h.retryOptions...)
}
