package handler

import (
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"trackshare/internal/httputil"
	"trackshare/internal/model"
	"trackshare/internal/service"
	"trackshare/internal/transport/http/middleware"
)

// UserHandler groups profile-related HTTP endpoints.
type UserHandler struct {
	userService   *service.UserService
	followService *service.FollowService
	feedService   *service.FeedService
	mediaService  *service.MediaService
}

// NewUserHandler wires dependencies for profile endpoints.
func NewUserHandler(userService *service.UserService, followService *service.FollowService, feedService *service.FeedService, mediaService *service.MediaService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		followService: followService,
		feedService:   feedService,
		mediaService:  mediaService,
	}
}

// pageParam reads ?page= with a floor of 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return page
}

// Profile returns a user's profile together with one page of their
// posts and whether the viewer follows them
// GET /user/{username}?page=
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	viewer, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	username := chi.URLParam(r, "username")
	user, posts, err := h.feedService.UserPosts(r.Context(), username, pageParam(r))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to load profile")
		return
	}

	isFollowing := false
	if viewer.ID != user.ID {
		isFollowing, err = h.followService.IsFollowing(r.Context(), viewer.ID, user.ID)
		if err != nil {
			httputil.WriteInternalError(w, "Failed to load profile")
			return
		}
	}

	httputil.WriteJSON(w, http.StatusOK, model.ProfileResponse{
		User:        user,
		IsFollowing: isFollowing,
		Posts:       *posts,
	})
}

// EditProfileForm returns the signed-in user's editable fields
// GET /edit_profile
func (h *UserHandler) EditProfileForm(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// EditProfile updates profile fields, with an optional multipart avatar
// upload replacing the previous image
// PUT /edit_profile
func (h *UserHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.UpdateProfileRequest

	contentType := r.Header.Get("Content-Type")
	multipartUpload := strings.HasPrefix(contentType, "multipart/form-data")
	if multipartUpload {
		maxFormSize := int64(model.MaxAvatarSizeBytes) + 1024*1024 // allow form overhead
		r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
		if err := r.ParseMultipartForm(maxFormSize); err != nil {
			if strings.Contains(err.Error(), "request body too large") {
				httputil.WriteBadRequest(w, "Avatar exceeds 5MB limit")
				return
			}
			httputil.WriteBadRequest(w, "Invalid form data")
			return
		}
		req.Username = r.FormValue("username")
		req.Bio = optionalFormValue(r, "bio")
		req.Twitter = optionalFormValue(r, "twitter")
		req.Instagram = optionalFormValue(r, "instagram")
		req.Github = optionalFormValue(r, "github")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteBadRequest(w, "Invalid request body")
			return
		}
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, &req)
	if err != nil {
		if errors.Is(err, model.ErrUsernameExists) {
			httputil.WriteBadRequest(w, "Please use a different username")
			return
		}
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	if multipartUpload {
		if file, header, err := r.FormFile("avatar"); err == nil {
			defer file.Close()
			if h.mediaService == nil {
				httputil.WriteBadRequest(w, "Avatar uploads are not enabled")
				return
			}
			updated, err = h.replaceAvatar(r, updated, file, header)
			if err != nil {
				switch {
				case errors.Is(err, model.ErrFileTooLarge):
					httputil.WriteBadRequest(w, "Avatar exceeds 5MB limit")
				case errors.Is(err, model.ErrInvalidImageType):
					httputil.WriteBadRequest(w, "Unsupported image type. Allowed: jpeg, png, gif, webp")
				default:
					httputil.WriteInternalError(w, "Failed to upload avatar")
				}
				return
			}
		} else if err != http.ErrMissingFile {
			httputil.WriteBadRequest(w, "Invalid avatar upload")
			return
		}
	}

	httputil.WriteJSON(w, http.StatusOK, updated)
}

// replaceAvatar uploads the new image, records it on the user, and
// removes the previous object from the bucket.
func (h *UserHandler) replaceAvatar(r *http.Request, user *model.User, file multipart.File, header *multipart.FileHeader) (*model.User, error) {
	upload, err := h.mediaService.UploadAvatar(r.Context(), file, header)
	if err != nil {
		return nil, err
	}

	oldKey := ""
	if user.AvatarKey != nil {
		oldKey = *user.AvatarKey
	}

	updated, err := h.userService.SetAvatar(r.Context(), user.ID, upload.URL, upload.Key)
	if err != nil {
		return nil, err
	}

	if oldKey != "" && oldKey != upload.Key {
		if err := h.mediaService.DeleteObject(r.Context(), oldKey); err != nil {
			log.Printf("[User] Failed to delete old avatar %s: %v", oldKey, err)
		}
	}

	return updated, nil
}

func optionalFormValue(r *http.Request, field string) *string {
	if _, ok := r.MultipartForm.Value[field]; !ok {
		return nil
	}
	v := r.FormValue(field)
	return &v
}

// EmailSubscribe opts the signed-in user into the weekly newsletter
// GET /user/{username}/email-subscribe
func (h *UserHandler) EmailSubscribe(w http.ResponseWriter, r *http.Request) {
	h.setSubscription(w, r, true)
}

// EmailUnsubscribe opts the signed-in user out of the weekly newsletter
// GET /user/{username}/email-unsubscribe
func (h *UserHandler) EmailUnsubscribe(w http.ResponseWriter, r *http.Request) {
	h.setSubscription(w, r, false)
}

func (h *UserHandler) setSubscription(w http.ResponseWriter, r *http.Request, subscribed bool) {
	viewer, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	username := chi.URLParam(r, "username")
	if username != viewer.Username {
		httputil.WriteForbidden(w, "Cannot change another user's subscription")
		return
	}

	user, err := h.userService.SetMailSubscription(r.Context(), username, subscribed)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to update subscription")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// Success grants posting rights to the signed-in user. This is the
// landing page clients hit after completing checkout.
// GET /success
func (h *UserHandler) Success(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.userService.GrantPoster(r.Context(), user.ID); err != nil {
		log.Printf("[User] Failed to grant poster to user %d: %v", user.ID, err)
		httputil.WriteInternalError(w, "Failed to enable posting")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "You can now share tracks.",
	})
}
