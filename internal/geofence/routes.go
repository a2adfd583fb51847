package geofence

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

		r.Get("/locations", ListLocationsHandler)
		r.Get("/locations/{location_id}", GetLocationHandler)
		r.Get("/zones", ListZonesHandler)
		r.Get("/assignments", ListAssignmentsHandler)
		r.Get("/check", CheckHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequireRole(middleware.ManagerTier...))

		r.Post("/locations", CreateLocationHandler)
		r.Put("/locations/{location_id}", UpdateLocationHandler)
		r.Delete("/locations/{location_id}", DeleteLocationHandler)

		r.Post("/zones", CreateZoneHandler)
		r.Delete("/zones/{zone_id}", DeleteZoneHandler)

		r.Post("/assignments", CreateAssignmentHandler)
	})

	return r
}

// SetupImportRoutes mounts the KMZ upload endpoint separately so main.go can
// expose it at /kmz to match the mobile clients.
func SetupImportRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequireRole(middleware.ManagerTier...))
		r.Post("/upload", ImportUploadHandler)
	})

	return r
}
