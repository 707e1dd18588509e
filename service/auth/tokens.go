package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// TokenType tells access and refresh tokens apart, so one cannot stand in for the other.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

const issuer = "library-loans"

// Claims are the JWT claims of both token types.
type Claims struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	IsStaff   bool      `json:"is_staff"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// Actor returns the identity the claims authenticate.
func (c Claims) Actor() ledger.Actor {
	return ledger.Actor{UserID: c.UserID, IsStaff: c.IsStaff}
}

// TokenPair is the login response.
type TokenPair struct {
	Access  string
	Refresh string
}

// TokenIssuer signs and verifies tokens with a shared HMAC secret.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      func() time.Time
}

// IssuerOption configures a TokenIssuer.
type IssuerOption func(*TokenIssuer)

// WithClock replaces the time source, mostly for tests.
func WithClock(clock func() time.Time) IssuerOption {
	return func(i *TokenIssuer) {
		i.clock = clock
	}
}

// NewTokenIssuer creates a TokenIssuer. The secret must not be empty.
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration, opts ...IssuerOption) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	i := &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		clock:      time.Now,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i, nil
}

// IssuePair creates a fresh access and refresh token for the user.
func (i *TokenIssuer) IssuePair(user ledger.User) (TokenPair, error) {
	access, err := i.sign(user.ID, user.Username, user.IsStaff, AccessToken, i.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := i.sign(user.ID, user.Username, user.IsStaff, RefreshToken, i.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess creates a fresh access token for the user.
func (i *TokenIssuer) IssueAccess(user ledger.User) (string, error) {
	return i.sign(user.ID, user.Username, user.IsStaff, AccessToken, i.accessTTL)
}

// Verify parses the token and checks signature, expiry, and type.
//
//	ERROR: ErrInvalidToken, ErrWrongTokenType
func (i *TokenIssuer) Verify(token string, expected TokenType) (Claims, error) {
	claims := Claims{}

	parsed, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.clock),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}

	if claims.TokenType != expected {
		return Claims{}, ErrWrongTokenType
	}

	return claims, nil
}

func (i *TokenIssuer) sign(userID int64, username string, isStaff bool, tokenType TokenType, ttl time.Duration) (string, error) {
	now := i.clock()

	claims := Claims{
		UserID:    userID,
		Username:  username,
		IsStaff:   isStaff,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}
