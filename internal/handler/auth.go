package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"trackshare/internal/config"
	"trackshare/internal/httputil"
	"trackshare/internal/model"
	"trackshare/internal/service"
	"trackshare/internal/session"
	"trackshare/internal/transport/http/middleware"
)

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	userService *service.UserService
	sessions    session.Store
	config      *config.Config
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(userService *service.UserService, sessions session.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		sessions:    sessions,
		config:      cfg,
	}
}

// setSessionCookie writes the session token as an HttpOnly cookie.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     model.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie in the browser.
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     model.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register handles user sign-up
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteBadRequest(w, "Please use a different username")
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteBadRequest(w, "Please use a different email address")
		case errors.Is(err, model.ErrPasswordMismatch):
			httputil.WriteBadRequest(w, "Passwords do not match")
		default:
			httputil.WriteBadRequest(w, err.Error())
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user)
}

// loginResponse carries the authenticated user and where the client
// should navigate next.
type loginResponse struct {
	User     *model.User `json:"user"`
	Redirect string      `json:"redirect"`
}

// Login verifies credentials and opens a session
// POST /login?next=
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid username or password")
			return
		}
		httputil.WriteInternalError(w, "Failed to log in")
		return
	}

	sess, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to create session")
		return
	}
	h.setSessionCookie(w, sess.Token)

	// Only honor local redirect targets to avoid open redirects
	redirect := r.URL.Query().Get("next")
	if redirect == "" || !strings.HasPrefix(redirect, "/") || strings.HasPrefix(redirect, "//") {
		redirect = "/feed"
	}

	httputil.WriteJSON(w, http.StatusOK, loginResponse{User: user, Redirect: redirect})
}

// Logout revokes the session and clears the cookie
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(model.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			httputil.WriteInternalError(w, "Failed to log out")
			return
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/discover", http.StatusFound)
}

// ResetPassword rotates the signed-in user's password
// POST /reset-pw
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.userService.ResetPassword(r.Context(), user.ID, &req); err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidCredentials):
			httputil.WriteBadRequest(w, "Current password is incorrect")
		case errors.Is(err, model.ErrPasswordMismatch):
			httputil.WriteBadRequest(w, "New passwords do not match")
		default:
			httputil.WriteInternalError(w, "Failed to reset password")
		}
		return
	}

	h.clearSessionCookie(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Password updated. Please log in again.",
	})
}

// ForgotPassword issues a temporary password by email. The response is
// the same whether or not the address is registered.
// POST /forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.userService.ForgotPassword(r.Context(), req.Email); err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteInternalError(w, "Failed to send temporary password")
			return
		}
		// Unknown addresses fall through to the neutral response
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "If that address is registered, a temporary password has been sent.",
	})
}
