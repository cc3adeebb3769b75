package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mklint/speeddial/internal/collection"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(store *collection.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Websites CRUD.
	r.Get("/websites", h.ListWebsites)
	r.Post("/websites", h.CreateWebsite)
	r.Get("/websites/{id}", h.GetWebsite)
	r.Patch("/websites/{id}", h.PatchWebsite)
	r.Delete("/websites/{id}", h.DeleteWebsite)
	r.Post("/websites/{id}/visit", h.VisitWebsite)

	// Pages.
	r.Get("/pages/{page}", h.GetPage)
	r.Put("/pages/{page}/order", h.ReorderPage)

	// Search.
	r.Get("/search", h.Search)

	// Tags.
	r.Get("/tags", h.ListTags)
	r.Post("/tags", h.CreateTag)
	r.Patch("/tags/{id}", h.RenameTag)
	r.Delete("/tags/{id}", h.DeleteTag)

	// Settings.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	// Backup.
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
