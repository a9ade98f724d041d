package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"trackshare/internal/httputil"
	"trackshare/internal/model"
	"trackshare/internal/repository"
	"trackshare/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserKey is the context key for the authenticated user
	UserKey contextKey = "user"
)

// lastSeenInterval limits how often a request refreshes last_seen.
const lastSeenInterval = time.Minute

// SessionAuth validates the session cookie against the session store and
// loads the user onto the request context. Browser clients without a valid
// session are redirected to the login page with the original path carried
// in the next parameter.
type SessionAuth struct {
	sessions session.Store
	users    repository.UserRepository
}

func NewSessionAuth(sessions session.Store, users repository.UserRepository) *SessionAuth {
	return &SessionAuth{sessions: sessions, users: users}
}

// RequireSession rejects requests without a valid session by redirecting
// to /login. Valid sessions get the user attached to the context and their
// last_seen refreshed at most once per minute.
func (a *SessionAuth) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(model.SessionCookieName)
		if err != nil || cookie.Value == "" {
			httputil.RedirectToLogin(w, r)
			return
		}

		sess, err := a.sessions.Get(r.Context(), cookie.Value)
		if err != nil {
			httputil.RedirectToLogin(w, r)
			return
		}

		user, err := a.users.GetByID(r.Context(), sess.UserID)
		if err != nil {
			// Account deleted while the session was still live
			httputil.RedirectToLogin(w, r)
			return
		}

		if time.Since(user.LastSeen) >= lastSeenInterval {
			if err := a.users.TouchLastSeen(r.Context(), user.ID); err != nil {
				log.Printf("[Auth] Failed to update last_seen for user %d: %v", user.ID, err)
			}
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePoster allows only users with posting rights past this point.
// Must run after RequireSession.
func (a *SessionAuth) RequirePoster(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r.Context())
		if !ok {
			httputil.RedirectToLogin(w, r)
			return
		}
		if !user.Poster {
			httputil.WriteForbidden(w, "Posting rights required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin allows only admin users past this point.
// Must run after RequireSession.
func (a *SessionAuth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r.Context())
		if !ok {
			httputil.RedirectToLogin(w, r)
			return
		}
		if !user.Admin {
			httputil.WriteForbidden(w, "Admin rights required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext extracts the authenticated user from the request context
// Returns the user and true if found, or nil and false if not found
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserKey).(*model.User)
	return user, ok
}
