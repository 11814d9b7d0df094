package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListNotifications handles GET /api/v1/notifications
func (h *StorefrontHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Notifications(r.Context(), sessionID(r))
	h.respond(w, r, view, err)
}

// MarkAllNotificationsRead handles POST /api/v1/notifications/read
func (h *StorefrontHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.MarkAllNotificationsRead(r.Context(), sessionID(r))
	h.respond(w, r, view, err)
}

// MarkNotificationRead handles POST /api/v1/notifications/{id}/read
func (h *StorefrontHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.MarkNotificationRead(r.Context(), sessionID(r), chi.URLParam(r, "id"))
	h.respond(w, r, view, err)
}

// RemoveNotification handles DELETE /api/v1/notifications/{id}
func (h *StorefrontHandler) RemoveNotification(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RemoveNotification(r.Context(), sessionID(r), chi.URLParam(r, "id"))
	h.respond(w, r, view, err)
}

// ClearNotifications handles DELETE /api/v1/notifications
func (h *StorefrontHandler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ClearNotifications(r.Context(), sessionID(r))
	h.respond(w, r, view, err)
}

// GetComparison handles GET /api/v1/comparison
func (h *StorefrontHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.Comparison(r.Context(), sessionID(r))
	h.respond(w, r, l, err)
}

// AddToComparison handles POST /api/v1/comparison/{listingId}
func (h *StorefrontHandler) AddToComparison(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.AddToComparison(r.Context(), sessionID(r), chi.URLParam(r, "listingId"))
	h.respond(w, r, l, err)
}

// RemoveFromComparison handles DELETE /api/v1/comparison/{listingId}
func (h *StorefrontHandler) RemoveFromComparison(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.RemoveFromComparison(r.Context(), sessionID(r), chi.URLParam(r, "listingId"))
	h.respond(w, r, l, err)
}

// ClearComparison handles DELETE /api/v1/comparison
func (h *StorefrontHandler) ClearComparison(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.ClearComparison(r.Context(), sessionID(r))
	h.respond(w, r, l, err)
}

// GetFavorites handles GET /api/v1/favorites
func (h *StorefrontHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.Favorites(r.Context(), sessionID(r))
	h.respond(w, r, l, err)
}

// ToggleFavorite handles POST /api/v1/favorites/{listingId}
func (h *StorefrontHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.ToggleFavorite(r.Context(), sessionID(r), chi.URLParam(r, "listingId"))
	h.respond(w, r, l, err)
}

// RemoveFavorite handles DELETE /api/v1/favorites/{listingId}
func (h *StorefrontHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.RemoveFavorite(r.Context(), sessionID(r), chi.URLParam(r, "listingId"))
	h.respond(w, r, l, err)
}

// ClearFavorites handles DELETE /api/v1/favorites
func (h *StorefrontHandler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.ClearFavorites(r.Context(), sessionID(r))
	h.respond(w, r, l, err)
}
