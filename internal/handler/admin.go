package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trackshare/internal/httputil"
	"trackshare/internal/model"
	"trackshare/internal/service"
	"trackshare/internal/transport/http/middleware"
)

// AdminHandler groups the admin panel endpoints. Route-level admin
// checks happen in middleware; handlers here assume an admin caller.
type AdminHandler struct {
	userService       *service.UserService
	postService       *service.PostService
	newsletterService *service.NewsletterService
}

// NewAdminHandler wires dependencies for admin endpoints.
func NewAdminHandler(userService *service.UserService, postService *service.PostService, newsletterService *service.NewsletterService) *AdminHandler {
	return &AdminHandler{
		userService:       userService,
		postService:       postService,
		newsletterService: newsletterService,
	}
}

// adminPanelResponse lists every user and every post.
type adminPanelResponse struct {
	Users []model.User `json:"users"`
	Posts []model.Post `json:"posts"`
}

// Panel returns all users ordered by username and all posts ordered
// by id
// GET /admin
func (h *AdminHandler) Panel(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, "Failed to list users")
		return
	}

	posts, err := h.postService.ListAll(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, "Failed to list posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, adminPanelResponse{Users: users, Posts: posts})
}

// DeleteUser removes a single user by username. Admin accounts cannot
// be deleted.
// GET /delete/user/{username}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.userService.DeleteByUsername(r.Context(), username); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to delete user")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

// DeleteAllUsers removes every non-admin user
// GET /delete/users
func (h *AdminHandler) DeleteAllUsers(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteAllUsers(r.Context()); err != nil {
		httputil.WriteInternalError(w, "Failed to delete users")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "All users deleted"})
}

// DeleteAllPosts removes every post
// GET /delete/posts
func (h *AdminHandler) DeleteAllPosts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	if err := h.postService.DeleteAll(r.Context(), user.ID); err != nil {
		httputil.WriteInternalError(w, "Failed to delete posts")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "All posts deleted"})
}

// SendNewsletter runs the weekly newsletter fan-out synchronously and
// reports how many recipients it reached
// GET /send-weekly-newsletter/
func (h *AdminHandler) SendNewsletter(w http.ResponseWriter, r *http.Request) {
	count, err := h.newsletterService.SendWeekly(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, "Failed to send newsletter")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Newsletter sent to %d recipients", count),
	})
}
