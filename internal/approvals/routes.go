package approvals

import (
	"net/http"

	"github.com/UtiliTrack/UT-Backend/internal/auth"
	"github.com/UtiliTrack/UT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	// Supervisor tier marks; manager tier decides.
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequireRole(middleware.SupervisorTier...))
		r.Put("/mark-overtime/{record_id}", MarkFlagHandler(FlagOvertime))
		r.Put("/mark-double-duty/{record_id}", MarkFlagHandler(FlagDoubleDuty))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequireRole(middleware.ManagerTier...))
		r.Put("/approve-overtime/{record_id}", ApproveFlagHandler(FlagOvertime))
		r.Put("/reject-overtime/{record_id}", RejectFlagHandler(FlagOvertime))
		r.Put("/approve-double-duty/{record_id}", ApproveFlagHandler(FlagDoubleDuty))
		r.Put("/reject-double-duty/{record_id}", RejectFlagHandler(FlagDoubleDuty))
		r.Put("/attendance/{record_id}/approve", DecideRecordHandler(true))
		r.Put("/attendance/{record_id}/reject", DecideRecordHandler(false))
	})

	return r
}

func SetupLeaveRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Post("/", SubmitLeaveHandler)
		r.Get("/", ListLeaveHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequireRole(middleware.ManagerTier...))
		r.Put("/{leave_id}/approve", DecideLeaveHandler(true))
		r.Put("/{leave_id}/reject", DecideLeaveHandler(false))
		r.Delete("/{leave_id}", DeleteLeaveHandler)
	})

	return r
}
