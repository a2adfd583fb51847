package tracking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/UtiliTrack/UT-Backend/internal/utils"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// tracker is wired against the live DB in Init.
var tracker *Tracker

type locationInput struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

func respondTrackingError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNoActiveClockIn) {
		utils.RespondError(w, http.StatusPreconditionFailed, err.Error())
		return
	}
	utils.RespondError(w, http.StatusServiceUnavailable, "Tracking error: "+err.Error())
}

func StartHandler(w http.ResponseWriter, r *http.Request) {
	staffID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Missing user ID in context")
		return
	}

	session, err := tracker.Start(staffID)
	if err != nil {
		respondTrackingError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, session)
}

func UpdateLocationHandler(w http.ResponseWriter, r *http.Request) {
	staffID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Missing user ID in context")
		return
	}

	var input locationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	session, err := tracker.UpdateLocation(staffID, input.Lat, input.Lng)
	if err != nil {
		respondTrackingError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, session)
}

func StopHandler(w http.ResponseWriter, r *http.Request) {
	staffID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Missing user ID in context")
		return
	}

	session, err := tracker.Stop(staffID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondSuccess(w, http.StatusOK, session)
}

// ActiveHandler lists all currently active sessions for the live map view.
func ActiveHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := tracker.Store.ListActive()
	if err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return
	}
	utils.RespondSuccess(w, http.StatusOK, sessions)
}
