package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/L33hy/cse340/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the session token lifetime in seconds. The unit is seconds, not
// milliseconds; jwt expiry and the cookie MaxAge both consume it directly.
const TokenTTL = 3600

var (
	// ErrNoSigningKey means ACCESS_TOKEN_SECRET was not configured. The
	// request fails; there is no fallback secret.
	ErrNoSigningKey = errors.New("signing key not configured")

	// ErrTokenExpired means the token was well-formed but past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed covers bad signatures, wrong algorithms and garbage
	// input.
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims defines the account attributes carried by a session token. The
// password hash is never part of the claims.
type Claims struct {
	AccountID   int    `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	AccountType string `json:"accountType,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens. The signing key is
// read from configuration at startup and never changes afterwards.
type TokenService struct {
	key []byte
}

// NewTokenService creates a TokenService. An empty secret yields a service
// that is not Ready; flows must check Ready before issuing.
func NewTokenService(secret string) *TokenService {
	s := &TokenService{}
	if secret != "" {
		s.key = []byte(secret)
	}
	return s
}

// Ready reports whether a signing secret is available. A missing secret is a
// configuration error that fails the request, never the process.
func (s *TokenService) Ready() bool {
	return len(s.key) > 0
}

// Issue signs a token embedding the account's attributes, valid for ttl
// seconds.
func (s *TokenService) Issue(account models.Account, ttl int) (string, error) {
	if !s.Ready() {
		return "", ErrNoSigningKey
	}

	now := time.Now()
	claims := &Claims{
		AccountID:   account.ID,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		Email:       account.Email,
		AccountType: account.AccountType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttl) * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Verify parses and validates a token string. Expired tokens fail with
// ErrTokenExpired, everything else with ErrTokenMalformed, so callers can log
// which one happened. Both are handled identically by the controllers.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	if !s.Ready() {
		return nil, ErrNoSigningKey
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
