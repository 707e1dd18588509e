package addbook

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
)

// Store is the part of the ledger the handler needs.
type Store interface {
	CreateBook(ctx context.Context, fields ledger.BookFields) (ledger.Book, error)
}

// CommandHandler adds a book.
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

// Handle creates the book.
//
//	ERROR: ledger.ErrPermissionDenied if the actor is not staff
//	ERROR: ledger.ErrInvalidBook
func (h CommandHandler) Handle(ctx context.Context, command Command) (ledger.Book, shell.HandlerResult, error) {
	if !command.Actor.IsStaff {
		return ledger.Book{}, shell.HandlerResult{}, ledger.ErrPermissionDenied
	}

	fields := command.Fields.Normalize()
	if err := fields.Validate(); err != nil {
		return ledger.Book{}, shell.HandlerResult{}, err
	}

	return shell.HandleWithRetry(ctx, func(retryCtx context.Context) (ledger.Book, error) {
		return h.store.CreateBook(retryCtx, fields)
	}, h.retryOptions...)
}
