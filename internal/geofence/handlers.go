package geofence

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/UtiliTrack/UT-Backend/internal/db"
	"github.com/UtiliTrack/UT-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

type locationInput struct {
	Name              string       `json:"name" validate:"required"`
	Description       string       `json:"description"`
	CenterLat         float64      `json:"center_lat" validate:"min=-90,max=90"`
	CenterLng         float64      `json:"center_lng" validate:"min=-180,max=180"`
	RadiusM           float64      `json:"radius_m" validate:"omitempty,gt=0"`
	Boundaries        [][2]float64 `json:"boundaries"`
	MorningShiftStart string       `json:"morning_shift_start"`
	MorningShiftEnd   string       `json:"morning_shift_end"`
	NightShiftStart   string       `json:"night_shift_start"`
	NightShiftEnd     string       `json:"night_shift_end"`
	IsOffice          bool         `json:"is_office"`
}

func ListLocationsHandler(w http.ResponseWriter, r *http.Request) {
	var locations []Location
	q := db.DB.Order("name")
	if r.URL.Query().Get("include_zones") == "true" {
		q = q.Preload("Zones", "is_active")
	}
	if err := q.Find(&locations).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return
	}
	utils.RespondSuccess(w, http.StatusOK, locations)
}

func GetLocationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "location_id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid location id")
		return
	}

	var location Location
	if err := db.DB.Preload("Zones").First(&location, "id = ?", id).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "Location not found")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, location)
}

func CreateLocationHandler(w http.ResponseWriter, r *http.Request) {
	var input locationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	location := Location{
		Name:              input.Name,
		Description:       input.Description,
		CenterLat:         input.CenterLat,
		CenterLng:         input.CenterLng,
		RadiusM:           input.RadiusM,
		Boundaries:        Ring(input.Boundaries),
		MorningShiftStart: input.MorningShiftStart,
		MorningShiftEnd:   input.MorningShiftEnd,
		NightShiftStart:   input.NightShiftStart,
		NightShiftEnd:     input.NightShiftEnd,
		IsOffice:          input.IsOffice,
	}
	if location.RadiusM == 0 {
		location.RadiusM = 100
	}

	if err := db.DB.Create(&location).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to create location")
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, location)
}

func UpdateLocationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "location_id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid location id")
		return
	}

	var location Location
	if err := db.DB.First(&location, "id = ?", id).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "Location not found")
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

	updates := map[string]interface{}{
		"name":                input.Name,
		"description":         input.Description,
		"center_lat":          input.CenterLat,
		"center_lng":          input.CenterLng,
		"morning_shift_start": input.MorningShiftStart,
		"morning_shift_end":   input.MorningShiftEnd,
		"night_shift_start":   input.NightShiftStart,
		"night_shift_end":     input.NightShiftEnd,
		"is_office":           input.IsOffice,
	}
	if input.RadiusM > 0 {
		updates["radius_m"] = input.RadiusM
	}
	if input.Boundaries != nil {
		updates["boundaries"] = Ring(input.Boundaries)
	}

	if err := db.DB.Model(&location).Updates(updates).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to update location")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, location)
}

// DeleteLocationHandler hard-deletes; blocked while zones still reference the
// location.
func DeleteLocationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "location_id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid location id")
		return
	}

	var zoneCount int64
	if err := db.DB.Model(&Zone{}).Where("location_id = ? AND is_active", id).Count(&zoneCount).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return
	}
	if zoneCount > 0 {
		utils.RespondError(w, http.StatusConflict, "Location still has active zones")
		return
	}

	if err := db.DB.Delete(&Location{}, "id = ?", id).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to delete location")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Location deleted")
}

type zoneInput struct {
	LocationID string  `json:"location_id" validate:"required,uuid"`
	Name       string  `json:"name" validate:"required"`
	CenterLat  float64 `json:"center_lat" validate:"min=-90,max=90"`
	CenterLng  float64 `json:"center_lng" validate:"min=-180,max=180"`
	RadiusM    float64 `json:"radius_m" validate:"omitempty,gt=0"`
}

func ListZonesHandler(w http.ResponseWriter, r *http.Request) {
	var zones []Zone
	q := db.DB.Where("is_active").Order("name")
	if locationID := r.URL.Query().Get("location_id"); locationID != "" {
		q = q.Where("location_id = ?", locationID)
	}
	if err := q.Find(&zones).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return
	}
	utils.RespondSuccess(w, http.StatusOK, zones)
}

func CreateZoneHandler(w http.ResponseWriter, r *http.Request) {
	var input zoneInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	locationID, _ := uuid.Parse(input.LocationID)
	var location Location
	if err := db.DB.First(&location, "id = ?", locationID).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "Parent location not found")
		return
	}

	zone := Zone{
		LocationID: locationID,
		Name:       input.Name,
		CenterLat:  input.CenterLat,
		CenterLng:  input.CenterLng,
		RadiusM:    input.RadiusM,
		IsActive:   true,
	}
	if zone.RadiusM == 0 {
		zone.RadiusM = 100
	}

	if err := db.DB.Create(&zone).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to create zone")
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, zone)
}

// DeleteZoneHandler soft-deletes a zone; blocked while active assignments
// still point at it.
func DeleteZoneHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "zone_id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid zone id")
		return
	}

	var zone Zone
	if err := db.DB.First(&zone, "id = ? AND is_active", id).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "Zone not found")
		return
	}

	var assigned int64
	if err := db.DB.Model(&StaffAssignment{}).Where("zone_id = ? AND is_active", id).Count(&assigned).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return
	}
	if assigned > 0 {
		utils.RespondError(w, http.StatusConflict, ErrZoneHasAssignments.Error())
		return
	}

	if err := db.DB.Model(&zone).Update("is_active", false).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to delete zone")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Zone deactivated")
}

type assignmentInput struct {
	StaffID      string `json:"staff_id" validate:"required"`
	SupervisorID string `json:"supervisor_id" validate:"required"`
	ZoneID       string `json:"zone_id" validate:"omitempty,uuid"`
	LocationID   string `json:"location_id" validate:"omitempty,uuid"`
}

// CreateAssignmentHandler enforces the single-active-assignment invariant:
// the staff member's previous assignment is deactivated in the same
// transaction that creates the new one.
func CreateAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	var input assignmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	assignment := StaffAssignment{
		StaffID:      input.StaffID,
		SupervisorID: input.SupervisorID,
		IsActive:     true,
	}
	if input.ZoneID != "" {
		zoneID, _ := uuid.Parse(input.ZoneID)
		var zone Zone
		if err := db.DB.First(&zone, "id = ? AND is_active", zoneID).Error; err != nil {
			utils.RespondError(w, http.StatusNotFound, "Zone not found")
			return
		}
		assignment.ZoneID = &zoneID
	}
	if input.LocationID != "" {
		locationID, _ := uuid.Parse(input.LocationID)
		assignment.LocationID = &locationID
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&StaffAssignment{}).
			Where("staff_id = ? AND is_active", input.StaffID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to create assignment")
		return
	}

	utils.RespondSuccess(w, http.StatusCreated, assignment)
}

func ListAssignmentsHandler(w http.ResponseWriter, r *http.Request) {
	var assignments []StaffAssignment
	q := db.DB.Where("is_active").Order("created_at desc")
	if staffID := r.URL.Query().Get("staff_id"); staffID != "" {
		q = q.Where("staff_id = ?", staffID)
	}
	if supervisorID := r.URL.Query().Get("supervisor_id"); supervisorID != "" {
		q = q.Where("supervisor_id = ?", supervisorID)
	}
	if err := q.Find(&assignments).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return
	}
	utils.RespondSuccess(w, http.StatusOK, assignments)
}

// CheckHandler answers whether a GPS point falls inside a zone's circle (or a
// location's boundary when zone_id is absent).
func CheckHandler(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := parseLatLng(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "lat and lng query params are required")
		return
	}

	if zoneID := r.URL.Query().Get("zone_id"); zoneID != "" {
		var zone Zone
		if err := db.DB.First(&zone, "id = ? AND is_active", zoneID).Error; err != nil {
			utils.RespondError(w, http.StatusNotFound, "Zone not found")
			return
		}
		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{
			"inside":  zone.ContainsPoint(lat, lng),
			"zone_id": zone.ID,
		})
		return
	}

	locationID := r.URL.Query().Get("location_id")
	if locationID == "" {
		utils.RespondError(w, http.StatusBadRequest, "zone_id or location_id is required")
		return
	}
	var location Location
	if err := db.DB.First(&location, "id = ?", locationID).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "Location not found")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{
		"inside":      location.ContainsPoint(lat, lng),
		"location_id": location.ID,
	})
}

func parseLatLng(r *http.Request) (lat, lng float64, ok bool) {
	var errLat, errLng error
	lat, errLat = parseFloatParam(r, "lat")
	lng, errLng = parseFloatParam(r, "lng")
	return lat, lng, errLat == nil && errLng == nil
}

func parseFloatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.New(name + " missing")
	}
	var v float64
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return 0, err
	}
	return v, nil
}
