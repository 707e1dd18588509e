package borrowbook

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
)

// Store defines what the CommandHandler needs from the ledger storage.
type Store interface {
	BorrowBook(ctx context.Context, req ledger.BorrowRequest) (ledger.LoanDetails, error)
}

// CommandHandler resolves the borrower and lets the store run the locked borrow transaction, with retry.
// External wrappers handle all observability concerns.
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

// Handle creates the loan.
//
//	ERROR: ledger.ErrPermissionDenied if a non-staff actor borrows for someone else
//	ERROR: ledger.ErrBookNotFound, ledger.ErrUserNotFound
//	ERROR: ledger.ErrBookNotAvailable, nothing is created and availability is unchanged
//	ERROR: ledger.ErrInvalidDueDate
func (h CommandHandler) Handle(ctx context.Context, command Command) (ledger.LoanDetails, shell.HandlerResult, error) {
	borrowerID, err := ledger.ResolveBorrower(command.Actor, command.BorrowerID)
	if err != nil {
		return ledger.LoanDetails{}, shell.HandlerResult{}, err
	}

	req := ledger.BorrowRequest{
		BookID:  command.BookID,
		UserID:  borrowerID,
		DueDate: command.DueDate,
	}

	ctx = ledger.WithStrongConsistency(ctx)

	return shell.HandleWithRetry(ctx, func(retryCtx context.Context) (ledger.LoanDetails, error) {
		return h.store.BorrowBook(retryCtx, req)
	}, h.retryOptions...)
}
