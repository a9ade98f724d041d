package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"trackshare/internal/handler"
	"trackshare/internal/httputil"
	authmw "trackshare/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	FollowHandler *handler.FollowHandler
	FeedHandler   *handler.FeedHandler
	PostHandler   *handler.PostHandler
	AdminHandler  *handler.AdminHandler
	SessionAuth   *authmw.SessionAuth
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/discover", http.StatusFound)
	})
	r.Get("/discover", cfg.FeedHandler.Discover)
	r.Post("/register", cfg.AuthHandler.Register)
	r.Post("/login", cfg.AuthHandler.Login)
	r.Post("/forgot-password", cfg.AuthHandler.ForgotPassword)
	r.Get("/post/{id}", cfg.PostHandler.Show)
	r.Post("/post/{id}/play", cfg.PostHandler.Play)

	// Protected routes - require a live session
	r.Group(func(r chi.Router) {
		r.Use(cfg.SessionAuth.RequireSession)

		r.Get("/logout", cfg.AuthHandler.Logout)
		r.Post("/reset-pw", cfg.AuthHandler.ResetPassword)

		r.Get("/feed", cfg.FeedHandler.Personal)

		r.Get("/edit_profile", cfg.UserHandler.EditProfileForm)
		r.Put("/edit_profile", cfg.UserHandler.EditProfile)
		r.Get("/success", cfg.UserHandler.Success)

		r.Get("/user/{username}", cfg.UserHandler.Profile)
		r.Get("/user/{username}/followers", cfg.FollowHandler.Followers)
		r.Get("/user/{username}/following", cfg.FollowHandler.Following)
		r.Get("/user/{username}/email-subscribe", cfg.UserHandler.EmailSubscribe)
		r.Get("/user/{username}/email-unsubscribe", cfg.UserHandler.EmailUnsubscribe)

		r.Get("/follow/{username}", cfg.FollowHandler.Follow)
		r.Get("/unfollow/{username}", cfg.FollowHandler.Unfollow)

		r.Post("/post/{id}/update", cfg.PostHandler.Update)
		r.Get("/post/{id}/delete", cfg.PostHandler.Delete)

		// Posting rights required
		r.With(cfg.SessionAuth.RequirePoster).Post("/create", cfg.PostHandler.Create)

		// Admin panel
		r.Group(func(r chi.Router) {
			r.Use(cfg.SessionAuth.RequireAdmin)

			r.Get("/admin", cfg.AdminHandler.Panel)
			r.Get("/delete/posts", cfg.AdminHandler.DeleteAllPosts)
			r.Get("/delete/users", cfg.AdminHandler.DeleteAllUsers)
			r.Get("/delete/user/{username}", cfg.AdminHandler.DeleteUser)
			r.Get("/send-weekly-newsletter/", cfg.AdminHandler.SendNewsletter)
		})
	})

	return r
}
