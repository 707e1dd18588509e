package updateuser

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
)

// Store is the part of the ledger the handler needs.
type Store interface {
	GetUser(ctx context.Context, userID int64) (ledger.User, error)
	UpdateUser(ctx context.Context, userID int64, changes ledger.UserChanges) (ledger.User, error)
	SetPasswordHash(ctx context.Context, userID int64, passwordHash string) error
}

// PasswordHasher turns a plain password into a storable hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// CommandHandler applies partial changes to a user profile and optionally its password.
type CommandHandler struct {
	store        Store
	hasher       PasswordHasher
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

// NewCommandHandler creates a CommandHandler that hashes new passwords with hasher.
func NewCommandHandler(store Store, hasher PasswordHasher, opts ...Option) CommandHandler {
	handler := CommandHandler{store: store, hasher: hasher}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle applies the changes to the user.
//
//	ERROR: ledger.ErrPermissionDenied if the actor is neither the user nor staff, or a non-staff actor changes the staff flag
//	ERROR: ledger.ErrUserNotFound, ledger.ErrInvalidUser, ledger.ErrInvalidPassword
//	ERROR: ledger.ErrDuplicateUsername
func (h CommandHandler) Handle(ctx context.Context, command Command) (ledger.User, shell.HandlerResult, error) {
	if !command.Actor.CanManage(command.UserID) {
		return ledger.User{}, shell.HandlerResult{}, ledger.ErrPermissionDenied
	}

	var hash string
	if command.Password != nil {
		if err := ledger.ValidatePassword(*command.Password); err != nil {
			return ledger.User{}, shell.HandlerResult{}, err
		}

		var err error
		if hash, err = h.hasher.Hash(*command.Password); err != nil {
			return ledger.User{}, shell.HandlerResult{}, err
		}
	}

	ctx = ledger.WithStrongConsistency(ctx)

	return shell.HandleWithRetry(ctx, func(retryCtx context.Context) (ledger.User, error) {
		current, err := h.store.GetUser(retryCtx, command.UserID)
		if err != nil {
			return ledger.User{}, err
		}

		if command.Changes.ChangesStaffFlag(current) && !command.Actor.IsStaff {
			return ledger.User{}, ledger.ErrPermissionDenied
		}

		updated, err := h.store.UpdateUser(retryCtx, command.UserID, command.Changes)
		if err != nil {
			return ledger.User{}, err
		}

		if hash != "" {
			if err = h.store.SetPasswordHash(retryCtx, command.UserID, hash); err != nil {
				return ledger.User{}, err
			}
			updated.PasswordHash = hash
		}

		return updated, nil
	}, h.retryOptions...)
}
