package removeuser

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
)

// Store is the part of the ledger the handler needs.
type Store interface {
	DeleteUser(ctx context.Context, userID int64) error
}

// CommandHandler deletes a user.
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

// Handle deletes the user.
//
//	ERROR: ledger.ErrPermissionDenied if the actor is neither the user nor staff
//	ERROR: ledger.ErrUserNotFound
func (h CommandHandler) Handle(ctx context.Context, command Command) (struct{}, shell.HandlerResult, error) {
	if !command.Actor.CanManage(command.UserID) {
		return struct{}{}, shell.HandlerResult{}, ledger.ErrPermissionDenied
	}

	ctx = ledger.WithStrongConsistency(ctx)

	return shell.HandleWithRetry(ctx, func(retryCtx context.Context) (struct{}, error) {
		return struct{}{}, h.store.DeleteUser(retryCtx, command.UserID)
	}, h.retryOptions...)
}
