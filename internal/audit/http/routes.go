package audithttp

import (
	"github.com/go-chi/chi/v5"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
)

// MountRoutes registers the audit reporting endpoints. Retrieval is an
// administrative concern, so the whole subtree is gated on global read access.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(authz.ActionReadGlobal))
		r.Get("/", h.handleTimeline)
		r.Get("/export", h.handleExport)
	})
}
