package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Identity is the request-scoped authentication state derived from the
// session cookie. The zero value is anonymous.
type Identity struct {
	LoggedIn bool
	Account  *Claims
}

type contextKey string

const identityKey = contextKey("identity")

// IdentityFromContext returns the identity resolved for the request. Requests
// that never passed through ResolveIdentity are anonymous.
func IdentityFromContext(ctx context.Context) Identity {
	if identity, ok := ctx.Value(identityKey).(Identity); ok {
		return identity
	}
	return Identity{}
}

// ResolveIdentity creates the middleware that establishes the caller's
// identity on every inbound request. A missing cookie means anonymous, not an
// error. An expired or invalid token also downgrades to anonymous: the stale
// cookie is cleared and the request continues. No failure here ever aborts
// the request.
func ResolveIdentity(tokens *TokenService, cookies *CookieManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := Identity{}

			if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
				claims, err := tokens.Verify(cookie.Value)
				if err != nil {
					if errors.Is(err, ErrTokenExpired) {
						log.Debug().Str("path", r.URL.Path).Msg("Session token expired, continuing as anonymous")
					} else {
						log.Debug().Err(err).Str("path", r.URL.Path).Msg("Session token rejected, continuing as anonymous")
					}
					cookies.Clear(w)
				} else {
					identity = Identity{LoggedIn: true, Account: claims}
				}
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
