package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/blog"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

// Categories groups the category endpoints.
type Categories struct {
	svc *blog.CategoryService
}

// NewCategories creates a new Categories handler group.
func NewCategories(svc *blog.CategoryService) *Categories {
	return &Categories{svc: svc}
}

// List serves GET /categories.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, payload{"count": len(cats), "categories": cats})
}

// Get serves GET /categories/{idOrSlug} with the category's recent posts.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	cat, posts, err := h.svc.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, payload{"category": cat, "posts": posts})
}

// Create serves POST /categories.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var draft models.CategoryDraft
	if !decode(w, r, &draft) {
		return
	}

	cat, err := h.svc.Create(r.Context(), middleware.PrincipalFromCtx(r.Context()), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, payload{"category": cat})
}

// Update serves PUT /categories/{id}.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), "Category not found")
	if !ok {
		return
	}
	var patch models.CategoryPatch
	if !decode(w, r, &patch) {
		return
	}

	cat, err := h.svc.Update(r.Context(), middleware.PrincipalFromCtx(r.Context()), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, payload{"category": cat})
}

// Delete serves DELETE /categories/{id}.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), "Category not found")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, payload{"message": "Category removed"})
}
