// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API for content pieces.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"contentplanner/internal/cache"
	"contentplanner/internal/models"
	"contentplanner/internal/store"
)

// livenessMessage is the plain-text body served at the root path.
const livenessMessage = "Backend is running!"

// Content groups the content piece endpoints and their dependencies.
type Content struct {
	repo  store.Repository
	cache *cache.PieceCache
}

// NewContent creates the content handlers. pieceCache may be nil.
func NewContent(repo store.Repository, pieceCache *cache.PieceCache) *Content {
	return &Content{repo: repo, cache: pieceCache}
}

// Index is the liveness endpoint.
func (h *Content) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(livenessMessage))
}

// Health reports whether the storage backend is reachable.
func (h *Content) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"status": "unavailable"})
		return
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// List returns every content piece.
func (h *Content) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.FindAll(r.Context())
	if err != nil {
		serverError(w, r, "failed to list content pieces", err)
		return
	}
	render.JSON(w, r, items)
}

// Get returns a single content piece.
func (h *Content) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pieceID(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if p, hit := h.cache.Get(r.Context(), id); hit {
		render.JSON(w, r, p)
		return
	}

	p, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		serverError(w, r, "failed to load content piece", err, "id", id)
		return
	}
	if p == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	h.cache.Set(r.Context(), p)
	render.JSON(w, r, p)
}

// Create stores a new content piece. A client-supplied id is ignored.
func (h *Content) Create(w http.ResponseWriter, r *http.Request) {
	var p models.ContentPiece
	if err := render.DecodeJSON(r.Body, &p); err != nil {
		badRequest(w, r, err)
		return
	}
	p.ID = 0

	saved, err := h.repo.Save(r.Context(), &p)
	if err != nil {
		serverError(w, r, "failed to create content piece", err)
		return
	}

	slog.Info("content piece created", "id", saved.ID)
	render.JSON(w, r, saved)
}

// Update replaces every field of an existing piece with the request body.
// The path id always wins over an id in the body.
func (h *Content) Update(w http.ResponseWriter, r *http.Request) {
	var p models.ContentPiece
	if err := render.DecodeJSON(r.Body, &p); err != nil {
		badRequest(w, r, err)
		return
	}

	id, ok := h.existingID(w, r)
	if !ok {
		return
	}
	p.ID = id

	saved, err := h.repo.Save(r.Context(), &p)
	if err != nil {
		serverError(w, r, "failed to update content piece", err, "id", id)
		return
	}
	h.cache.Invalidate(r.Context(), id)

	slog.Info("content piece updated", "id", id)
	render.JSON(w, r, saved)
}

// UpdateStatus changes only the status of a piece. A body without a
// "status" key leaves the piece untouched and still succeeds.
//
// The read and the write are separate statements; a concurrent writer
// between them is overwritten (last write wins).
func (h *Content) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body models.StatusUpdate
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		badRequest(w, r, err)
		return
	}

	id, ok := pieceID(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	p, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		serverError(w, r, "failed to load content piece", err, "id", id)
		return
	}
	if p == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if body.Status == nil {
		render.JSON(w, r, p)
		return
	}

	p.Status = body.Status
	saved, err := h.repo.Save(r.Context(), p)
	if err != nil {
		serverError(w, r, "failed to update content piece status", err, "id", id)
		return
	}
	h.cache.Invalidate(r.Context(), id)

	slog.Info("content piece status updated", "id", id, "status", *saved.Status)
	render.JSON(w, r, saved)
}

// Delete removes a piece, answering 204 on success.
func (h *Content) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.existingID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteByID(r.Context(), id); err != nil {
		serverError(w, r, "failed to delete content piece", err, "id", id)
		return
	}
	h.cache.Invalidate(r.Context(), id)

	slog.Info("content piece deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// existingID parses the path id and checks the piece exists. On false the
// response (404 or 500) has already been written.
func (h *Content) existingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pieceID(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return 0, false
	}

	exists, err := h.repo.ExistsByID(r.Context(), id)
	if err != nil {
		serverError(w, r, "failed to check content piece", err, "id", id)
		return 0, false
	}
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// pieceID parses the {id} URL parameter. A value that is not an integer
// cannot name any piece, so callers treat it as not found.
func pieceID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	slog.Debug("malformed request body", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "Malformed request body", http.StatusBadRequest)
}

func serverError(w http.ResponseWriter, r *http.Request, msg string, err error, attrs ...any) {
	slog.Error(msg, append([]any{"error", err, "path", r.URL.Path}, attrs...)...)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
