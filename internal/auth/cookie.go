package auth

import (
	"net/http"

	"github.com/L33hy/cse340/internal/config"
)

// CookieName is the name of the session cookie carrying the signed token.
const CookieName = "jwt"

// CookieManager owns the wire representation of the session token. The
// environment decides the cookie's security attributes: development uses
// SameSite=Lax over plain HTTP, anything else gets the cross-site production
// posture (Secure, SameSite=None).
type CookieManager struct {
	env config.Environment
}

// NewCookieManager creates a CookieManager for the given environment.
func NewCookieManager(env config.Environment) *CookieManager {
	return &CookieManager{env: env}
}

func (m *CookieManager) attributes() (secure bool, sameSite http.SameSite) {
	if m.env == config.Development {
		return false, http.SameSiteLaxMode
	}
	return true, http.SameSiteNoneMode
}

// Set wraps the token in the session cookie on the outbound response.
func (m *CookieManager) Set(w http.ResponseWriter, token string) {
	secure, sameSite := m.attributes()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   TokenTTL,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}

// Clear deletes the session cookie. The deletion directive must carry the
// same security attributes the cookie was set with, or browsers silently
// ignore it.
func (m *CookieManager) Clear(w http.ResponseWriter) {
	secure, sameSite := m.attributes()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}
