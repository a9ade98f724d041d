package handler

import (
	"net/http"

	"trackshare/internal/httputil"
	"trackshare/internal/service"
	"trackshare/internal/transport/http/middleware"
)

// FeedHandler serves the discover and personal feed pages.
type FeedHandler struct {
	feedService *service.FeedService
}

// NewFeedHandler wires dependencies for feed endpoints.
func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// Discover returns one page of all posts, newest first
// GET /discover?page=
func (h *FeedHandler) Discover(w http.ResponseWriter, r *http.Request) {
	page, err := h.feedService.Discover(r.Context(), pageParam(r))
	if err != nil {
		httputil.WriteInternalError(w, "Failed to load feed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// Personal returns one page of posts from followed users plus the
// viewer's own posts, newest first
// GET /feed?page=
func (h *FeedHandler) Personal(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	page, err := h.feedService.Personal(r.Context(), user.ID, pageParam(r))
	if err != nil {
		httputil.WriteInternalError(w, "Failed to load feed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}
