package auth

import (
	"net/http"

	"github.com/UtiliTrack/UT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := SessionInfo{}

	r.Post("/login", LoginHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Post("/logout", LogoutHandler)
		r.Get("/me", MeHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequireRole(middleware.AdminTier...))
		r.Post("/register", RegisterHandler)
		r.Get("/users", ListUsersHandler)
		r.Delete("/users/{user_id}", func(w http.ResponseWriter, req *http.Request) {
			DeactivateUserHandler(w, req, chi.URLParam(req, "user_id"))
		})
	})

	return r
}
