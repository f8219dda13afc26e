package view

import (
	"html/template"

	"github.com/rs/zerolog/log"
)

// NavProvider returns the rendered navigation fragment. It is assumed
// idempotent and side-effect free.
type NavProvider func() (string, error)

// fallbackNav is substituted when the provider fails, so the error page
// itself never fails to render.
const fallbackNav = `<ul><li><a href="/">Home</a></li></ul>`

// StaticNav is the default navigation provider.
func StaticNav() (string, error) {
	return `<ul>
		<li><a href="/">Home</a></li>
		<li><a href="/account/">My Account</a></li>
	</ul>`, nil
}

// Nav resolves the navigation fragment for a page, falling back to a minimal
// nav when the provider fails.
func Nav(provider NavProvider) template.HTML {
	nav, err := provider()
	if err != nil {
		log.Error().Err(err).Msg("Failed to build navigation, using fallback")
		nav = fallbackNav
	}
	return template.HTML(nav)
}
