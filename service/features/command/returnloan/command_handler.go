package returnloan

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
)

// Store defines what the CommandHandler needs from the ledger storage.
type Store interface {
	ReturnLoan(ctx context.Context, loanID int64, actor ledger.Actor) (ledger.LoanDetails, error)
}

// CommandHandler lets the store run the locked return transaction, with retry.
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

// Handle closes the loan.
//
//	ERROR: ledger.ErrLoanNotFound
//	ERROR: ledger.ErrPermissionDenied if the actor is neither the borrower nor staff
//	ERROR: ledger.ErrLoanAlreadyReturned, availability is not incremented again
func (h CommandHandler) Handle(ctx context.Context, command Command) (ledger.LoanDetails, shell.HandlerResult, error) {
	ctx = ledger.WithStrongConsistency(ctx)

	return shell.HandleWithRetry(ctx, func(retryCtx context.Context) (ledger.LoanDetails, error) {
		return h.store.ReturnLoan(retryCtx, command.LoanID, command.Actor)
	}, h.retryOptions...)
}
