package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trackshare/internal/httputil"
	"trackshare/internal/model"
	"trackshare/internal/service"
	"trackshare/internal/transport/http/middleware"
)

// PostHandler groups post-related HTTP endpoints.
type PostHandler struct {
	postService *service.PostService
}

// NewPostHandler wires dependencies for post endpoints.
func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// postIDParam parses the {id} route parameter.
func postIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrNotPoster):
		httputil.WriteForbidden(w, "Posting rights required")
	case errors.Is(err, model.ErrNotPostOwner):
		httputil.WriteForbidden(w, "Not your post")
	case errors.Is(err, model.ErrBodyRequired),
		errors.Is(err, model.ErrURLRequired),
		errors.Is(err, model.ErrBodyTooLong),
		errors.Is(err, model.ErrURLTooLong):
		httputil.WriteBadRequest(w, err.Error())
	default:
		httputil.WriteInternalError(w, "Something went wrong")
	}
}

// Create publishes a new post
// POST /create
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), user.ID, &req)
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Show returns a single post
// GET /post/{id}
func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	postID, err := postIDParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post id")
		return
	}

	post, err := h.postService.GetByID(r.Context(), postID)
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Update edits a post's body and URL
// POST /post/{id}/update
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, err := postIDParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post id")
		return
	}

	var req model.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Update(r.Context(), postID, user.ID, &req)
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Play bumps the play counter for a post
// POST /post/{id}/play
func (h *PostHandler) Play(w http.ResponseWriter, r *http.Request) {
	postID, err := postIDParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post id")
		return
	}

	if err := h.postService.IncrementPlays(r.Context(), postID); err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// Delete removes a post. Owners can delete their own posts, admins any.
// GET /post/{id}/delete
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, err := postIDParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post id")
		return
	}

	if err := h.postService.Delete(r.Context(), postID, user.ID); err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}
