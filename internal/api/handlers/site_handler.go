package handlers

import (
	"net/http"

	"github.com/L33hy/cse340/internal/view"
)

// SiteHandler handles the pages that are not account flows: home and the
// not-found page.
type SiteHandler struct {
	renderer view.Renderer
	nav      view.NavProvider
	flash    *view.Flash
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(renderer view.Renderer, nav view.NavProvider, flash *view.Flash) *SiteHandler {
	return &SiteHandler{renderer: renderer, nav: nav, flash: flash}
}

// Home delivers the home view.
func (h *SiteHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "home", view.Data{
		"Title":    "Home",
		"Nav":      view.Nav(h.nav),
		"Errors":   nil,
		"Messages": h.flash.Pop(w, r),
	})
}

// NotFound renders the 404 page. Unlike other errors, a 404 keeps its
// specific message.
func (h *SiteHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusNotFound, "error", view.Data{
		"Title":    "404",
		"Nav":      view.Nav(h.nav),
		"Errors":   nil,
		"Messages": h.flash.Pop(w, r),
		"Message":  "Sorry, we appear to have lost that page.",
	})
}
