package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// UserFinder defines what the Authenticator needs from the ledger storage.
type UserFinder interface {
	FindUserByUsername(ctx context.Context, username string) (ledger.User, error)
	GetUser(ctx context.Context, userID int64) (ledger.User, error)
}

// Authenticator exchanges credentials for tokens.
type Authenticator struct {
	users  UserFinder
	hasher BcryptHasher
	issuer *TokenIssuer
}

// NewAuthenticator creates an Authenticator that checks passwords with hasher and signs tokens with issuer.
func NewAuthenticator(users UserFinder, hasher BcryptHasher, issuer *TokenIssuer) Authenticator {
	return Authenticator{users: users, hasher: hasher, issuer: issuer}
}

// Login checks the credentials and issues a token pair.
// Unknown users and wrong passwords fail the same way.
//
//	ERROR: ErrInvalidCredentials
func (a Authenticator) Login(ctx context.Context, username, password string) (TokenPair, error) {
	user, err := a.users.FindUserByUsername(ledger.WithStrongConsistency(ctx), strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ledger.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}

		return TokenPair{}, err
	}

	if !a.hasher.Matches(user.PasswordHash, password) {
		return TokenPair{}, ErrInvalidCredentials
	}

	return a.issuer.IssuePair(user)
}

// Refresh issues a new access token for a valid refresh token.
// The new token carries the user's current staff flag, not the one from the refresh token.
//
//	ERROR: ErrInvalidToken, ErrWrongTokenType
func (a Authenticator) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := a.issuer.Verify(refreshToken, RefreshToken)
	if err != nil {
		return "", err
	}

	user, err := a.currentUser(ctx, claims)
	if err != nil {
		return "", err
	}

	return a.issuer.IssueAccess(user)
}

// Authenticate verifies an access token and returns its claims.
// Username and staff flag are re-read from storage, so demoting or deleting a user
// takes effect before their tokens expire.
//
//	ERROR: ErrInvalidToken, ErrWrongTokenType
func (a Authenticator) Authenticate(ctx context.Context, accessToken string) (Claims, error) {
	claims, err := a.issuer.Verify(accessToken, AccessToken)
	if err != nil {
		return Claims{}, err
	}

	user, err := a.currentUser(ctx, claims)
	if err != nil {
		return Claims{}, err
	}

	claims.Username = user.Username
	claims.IsStaff = user.IsStaff

	return claims, nil
}

func (a Authenticator) currentUser(ctx context.Context, claims Claims) (ledger.User, error) {
	user, err := a.users.GetUser(ledger.WithStrongConsistency(ctx), claims.UserID)
	if err != nil {
		if errors.Is(err, ledger.ErrUserNotFound) {
			return ledger.User{}, errors.Join(ErrInvalidToken, err)
		}

		return ledger.User{}, err
	}

	return user, nil
}
