package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trackshare/internal/httputil"
	"trackshare/internal/model"
	"trackshare/internal/service"
	"trackshare/internal/transport/http/middleware"
)

// FollowHandler groups follow-graph HTTP endpoints.
type FollowHandler struct {
	followService *service.FollowService
}

// NewFollowHandler wires dependencies for follow endpoints.
func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Follow makes the signed-in user follow the named user. Following an
// already-followed user is a no-op.
// GET /follow/{username}
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	viewer, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	username := chi.URLParam(r, "username")
	target, err := h.followService.Follow(r.Context(), viewer.ID, username)
	if err != nil {
		writeFollowError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "You are now following " + target.Username,
	})
}

// Unfollow removes the edge if present. Unfollowing someone never
// followed is a no-op.
// GET /unfollow/{username}
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	viewer, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	username := chi.URLParam(r, "username")
	target, err := h.followService.Unfollow(r.Context(), viewer.ID, username)
	if err != nil {
		writeFollowError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "You are no longer following " + target.Username,
	})
}

// Followers lists who follows the named user
// GET /user/{username}/followers
func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	resp, err := h.followService.GetFollowers(r.Context(), username)
	if err != nil {
		writeFollowError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Following lists who the named user follows
// GET /user/{username}/following
func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	resp, err := h.followService.GetFollowing(r.Context(), username)
	if err != nil {
		writeFollowError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func writeFollowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	case errors.Is(err, model.ErrCannotFollowSelf):
		httputil.WriteBadRequest(w, "You cannot follow yourself")
	default:
		httputil.WriteInternalError(w, "Something went wrong")
	}
}
