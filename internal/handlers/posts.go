// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/blog"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

// Posts groups the post endpoints.
type Posts struct {
	svc *blog.PostService
}

// NewPosts creates a new Posts handler group.
func NewPosts(svc *blog.PostService) *Posts {
	return &Posts{svc: svc}
}

// List serves GET /posts?page&limit&category.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := blog.NewPageRequest(atoiOrZero(q.Get("page")), atoiOrZero(q.Get("limit")))

	page, err := h.svc.List(r.Context(), req, q.Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, payload{
		"count":       len(page.Posts),
		"total":       page.Total,
		"totalPages":  page.TotalPages,
		"currentPage": page.Page,
		"posts":       page.Posts,
	})
}

// Search serves GET /posts/search?q=.
func (h *Posts) Search(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, payload{"count": len(posts), "posts": posts})
}

// Get serves GET /posts/{idOrSlug}. Every successful read counts as a view.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, payload{"post": post})
}

// Create serves POST /posts.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var draft models.PostDraft
	if !decode(w, r, &draft) {
		return
	}

	post, err := h.svc.Create(r.Context(), middleware.PrincipalFromCtx(r.Context()), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, payload{"post": post})
}

// Update serves PUT /posts/{id}.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), "Post not found")
	if !ok {
		return
	}
	var patch models.PostPatch
	if !decode(w, r, &patch) {
		return
	}

	post, err := h.svc.Update(r.Context(), middleware.PrincipalFromCtx(r.Context()), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, payload{"post": post})
}

// Delete serves DELETE /posts/{id}.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), "Post not found")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, payload{"message": "Post removed"})
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment serves POST /posts/{id}/comments and returns the whole post.
func (h *Posts) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), "Post not found")
	if !ok {
		return
	}
	var req commentRequest
	if !decode(w, r, &req) {
		return
	}

	post, err := h.svc.AddComment(r.Context(), middleware.PrincipalFromCtx(r.Context()), id, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, payload{"post": post})
}

// atoiOrZero parses a query number; malformed values fall back to defaults.
func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
