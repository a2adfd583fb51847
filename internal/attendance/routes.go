package attendance

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

		r.Post("/clock-in", ClockInHandler)
		r.Post("/clock-out", ClockOutHandler)
		r.Get("/records", ListRecordsHandler)
		r.Get("/records/{record_id}", GetRecordHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequireRole(middleware.SupervisorTier...))
		r.Post("/clock-in/override", OverrideClockInHandler)
		r.Post("/clock-out/override", OverrideClockOutHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequireRole(middleware.AdminTier...))
		r.Delete("/records/{record_id}", DeleteRecordHandler)
	})

	return r
}
