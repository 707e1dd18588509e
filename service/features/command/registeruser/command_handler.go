package registeruser

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
)

// Store is the part of the ledger the handler needs.
type Store interface {
	CreateUser(ctx context.Context, fields ledger.UserFields, passwordHash string) (ledger.User, error)
}

// PasswordHasher turns a plaintext password into its stored form.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// CommandHandler registers a user.
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

// Handle creates the user.
//
//	ERROR: ledger.ErrInvalidUser, ledger.ErrInvalidPassword
//	ERROR: ledger.ErrDuplicateUsername
func (h CommandHandler) Handle(ctx context.Context, command Command) (ledger.User, shell.HandlerResult, error) {
	fields := command.Fields.Normalize()
	if command.Actor == nil || !command.Actor.IsStaff {
		fields.IsStaff = false
	}

	if err := fields.Validate(); err != nil {
		return ledger.User{}, shell.HandlerResult{}, err
	}

	if err := ledger.ValidatePassword(command.Password); err != nil {
		return ledger.User{}, shell.HandlerResult{}, err
	}

	hash, err := h.hasher.Hash(command.Password)
	if err != nil {
		return ledger.User{}, shell.HandlerResult{}, err
	}

	return shell.HandleWithRetry(ctx, func(retryCtx context.Context) (ledger.User, error) {
		return h.store.CreateUser(retryCtx, fields, hash)
	}, h.retryOptions...)
}
