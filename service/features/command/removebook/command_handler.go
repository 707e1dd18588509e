package removebook

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
)

// Store is the part of the ledger the handler needs.
type Store interface {
	DeleteBook(ctx context.Context, bookID int64) error
}

// CommandHandler removes a book.
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

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store Store, opts ...Option) CommandHandler {
	handler := CommandHandler{store: store}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle deletes the book.
//
//	ERROR: ledger.ErrPermissionDenied if the actor is not staff
//	ERROR: ledger.ErrBookNotFound
func (h CommandHandler) Handle(ctx context.Context, command Command) (struct{}, shell.HandlerResult, error) {
	if !command.Actor.IsStaff {
		return struct{}{}, shell.HandlerResult{}, ledger.ErrPermissionDenied
	}

	return shell.HandleWithRetry(ctx, func(retryCtx context.Context) (struct{}, error) {
		return struct{}{}, h.store.DeleteBook(retryCtx, command.BookID)
	}, h.retryOptions...)
}
