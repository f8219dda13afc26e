package api

import (
	"net/http"
	"runtime/debug"

	"github.com/L33hy/cse340/internal/auth"
	"github.com/L33hy/cse340/internal/view"
	"github.com/rs/zerolog/log"
)

// Recoverer is the top-level error handler: panics are logged with full
// diagnostic detail server-side while the user gets a generic failure page.
// The navigation provider failing must not stop the error page from
// rendering, which view.Nav guarantees.
func Recoverer(renderer view.Renderer, nav view.NavProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Interface("panic", rec).
						Str("url", r.URL.String()).
						Str("method", r.Method).
						Bytes("stack", debug.Stack()).
						Msg("Unhandled error in request")

					renderer.Render(w, http.StatusInternalServerError, "error", view.Data{
						"Title":    "Server Error",
						"Nav":      view.Nav(nav),
						"Errors":   nil,
						"Messages": nil,
						"Message":  "Something went wrong handling that request. Please try again.",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLogin guards the authenticated-only account pages. Anonymous
// callers are sent to the login form with a notice.
func RequireLogin(flash *view.Flash) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.IdentityFromContext(r.Context()).LoggedIn {
				flash.Add(w, r, "notice", "Please log in.")
				http.Redirect(w, r, "/account/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
