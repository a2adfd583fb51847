package tracking

import (
	"net/http"

	"github.com/UtiliTrack/UT-Backend/internal/auth"
	"github.com/UtiliTrack/UT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Post("/start", StartHandler)
		r.Post("/stop", StopHandler)
		r.Post("/update-location", UpdateLocationHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequireRole(middleware.SupervisorTier...))
		r.Get("/active", ActiveHandler)
	})

	return r
}
