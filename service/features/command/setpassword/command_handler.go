package setpassword

import (
	"context"
	"strings"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
)

// Store is the part of the ledger the handler needs.
type Store interface {
	FindUserByUsername(ctx context.Context, username string) (ledger.User, error)
	SetPasswordHash(ctx context.Context, userID int64, passwordHash string) error
}

// PasswordHasher turns a plain password into a storable hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// CommandHandler sets a password.
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

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store Store, hasher PasswordHasher, opts ...Option) CommandHandler {
	handler := CommandHandler{store: store, hasher: hasher}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle replaces the password hash of the named user and returns the user.
//
//	ERROR: ledger.ErrInvalidPassword
//	ERROR: ledger.ErrUserNotFound
func (h CommandHandler) Handle(ctx context.Context, command Command) (ledger.User, shell.HandlerResult, error) {
	if err := ledger.ValidatePassword(command.Password); err != nil {
		return ledger.User{}, shell.HandlerResult{}, err
	}

	hash, err := h.hasher.Hash(command.Password)
	if err != nil {
		return ledger.User{}, shell.HandlerResult{}, err
	}

	username := strings.TrimSpace(command.Username)

	return shell.HandleWithRetry(ctx, func(retryCtx context.Context) (ledger.User, error) {
		user, err := h.store.FindUserByUsername(retryCtx, username)
		if err != nil {
			return ledger.User{}, err
		}

		if err = h.store.SetPasswordHash(retryCtx, user.ID, hash); err != nil {
			return ledger.User{}, err
		}
		user.PasswordHash = hash

		return user, nil
	}, h.retryOptions...)
}
