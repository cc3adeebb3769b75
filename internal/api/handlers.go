package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mklint/speeddial/internal/apperr"
	"github.com/mklint/speeddial/internal/collection"
	"github.com/mklint/speeddial/internal/models"
	"github.com/mklint/speeddial/internal/snapshot"
)

// Handler holds API route handlers.
type Handler struct {
	store *collection.Store
}

// NewHandler creates a new Handler.
func NewHandler(store *collection.Store) *Handler {
	return &Handler{store: store}
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var verr *apperr.ValidationError
	var ierr *apperr.ImportError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, fieldErrorBody("validation failed", verr.Fields))
	case errors.As(err, &ierr):
		writeJSON(w, http.StatusBadRequest, errorBody(ierr.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListWebsites handles GET /websites.
func (h *Handler) ListWebsites(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"websites": h.store.Websites(),
	})
}

// GetWebsite handles GET /websites/{id}.
func (h *Handler) GetWebsite(w http.ResponseWriter, r *http.Request) {
	site, err := h.store.Website(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// CreateWebsite handles POST /websites.
func (h *Handler) CreateWebsite(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateWebsiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	site, err := h.store.AddWebsite(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, site)
}

// PatchWebsite handles PATCH /websites/{id}.
func (h *Handler) PatchWebsite(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req PatchWebsiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	site, err := h.store.EditWebsite(chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// DeleteWebsite handles DELETE /websites/{id}.
func (h *Handler) DeleteWebsite(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteWebsite(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VisitWebsite handles POST /websites/{id}/visit. The response carries the
// target URL; opening it is the client's job.
func (h *Handler) VisitWebsite(w http.ResponseWriter, r *http.Request) {
	site, err := h.store.VisitWebsite(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// GetPage handles GET /pages/{page}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("page must be a non-negative integer"))
		return
	}
	writeJSON(w, http.StatusOK, h.store.Page(page))
}

// ReorderPage handles PUT /pages/{page}/order.
func (h *Handler) ReorderPage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("page must be a non-negative integer"))
		return
	}
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.store.UpdateWebsitePositions(page, req.IDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /search?page=N&q=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   q,
		Page:    page,
		Results: h.store.Search(page, q),
	})
}

// ListTags handles GET /tags.
func (h *Handler) ListTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tags": h.store.Tags()})
}

// CreateTag handles POST /tags.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	tag, err := h.store.AddTag(req.Name, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// RenameTag handles PATCH /tags/{id}.
func (h *Handler) RenameTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	tag, err := h.store.RenameTag(chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// DeleteTag handles DELETE /tags/{id}.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTag(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettings handles GET /settings.
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Settings())
}

// UpdateSettings handles PUT /settings. Settings are replaced as a whole
// object; a gridSize change repaginates the collection.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	settings, err := h.store.UpdateSettings(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Export handles GET /export.
func (h *Handler) Export(w http.ResponseWriter, _ *http.Request) {
	snap := h.store.Export()
	w.Header().Set("Content-Disposition", `attachment; filename="speeddial-export.json"`)
	writeJSON(w, http.StatusOK, snap)
}

// Import handles POST /import.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	snap, err := snapshot.Decode(raw)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.store.Import(snap); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
