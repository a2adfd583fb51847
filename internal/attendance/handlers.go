package attendance

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/UtiliTrack/UT-Backend/internal/db"
	"github.com/UtiliTrack/UT-Backend/internal/geo"
	"github.com/UtiliTrack/UT-Backend/internal/geofence"
	"github.com/UtiliTrack/UT-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// store is the shared persistence surface; Init wires it to the live DB.
var store Store

type clockInInput struct {
	StaffID  string  `json:"staff_id"` // only honored on the override route
	Lat      float64 `json:"lat" validate:"min=-90,max=90"`
	Lng      float64 `json:"lng" validate:"min=-180,max=180"`
	PhotoURL string  `json:"photo_url"`
}

type clockOutInput struct {
	StaffID  string  `json:"staff_id"` // only honored on the override route
	Lat      float64 `json:"lat" validate:"min=-90,max=90"`
	Lng      float64 `json:"lng" validate:"min=-180,max=180"`
	PhotoURL string  `json:"photo_url"`
}

func ClockInHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Missing user ID in context")
		return
	}
	clockIn(w, r, actorID, false)
}

// OverrideClockInHandler lets a supervisor create a record for someone else,
// flagged is_override so reports can tell corrected records apart.
func OverrideClockInHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Missing user ID in context")
		return
	}
	clockIn(w, r, actorID, true)
}

func clockIn(w http.ResponseWriter, r *http.Request, actorID string, override bool) {
	var input clockInInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	staffID := actorID
	if override {
		if input.StaffID == "" {
			utils.RespondError(w, http.StatusBadRequest, "staff_id is required for override clock-in")
			return
		}
		staffID = input.StaffID
	}

	now := time.Now()
	today := DateOf(now)
	yesterday := today.AddDate(0, 0, -1)

	// One open record at a time; yesterday counts too so overnight shifts
	// can't be double-opened.
	open, err := store.FindOpenRecord(staffID, today, yesterday)
	if err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return
	}
	if open != nil {
		utils.RespondError(w, http.StatusConflict, ErrAlreadyClockedIn.Error())
		return
	}

	if blocked, until := minIntervalBlocked(staffID, now); blocked {
		utils.RespondError(w, http.StatusConflict,
			"Minimum interval between shifts not met; next clock-in allowed at "+until.Format(time.RFC3339))
		return
	}

	rec := AttendanceRecord{
		StaffID:         staffID,
		AttendanceDate:  today,
		ClockIn:         now,
		ClockInLat:      &input.Lat,
		ClockInLng:      &input.Lng,
		ClockInPhotoURL: input.PhotoURL,
		Status:          StatusPresent,
		ApprovalStatus:  ApprovalPending,
		ClockedInBy:     &actorID,
		IsOverride:      override,
	}

	// Attach zone context from the active assignment and validate the GPS
	// point against the zone geofence.
	var assignment geofence.StaffAssignment
	if err := db.DB.First(&assignment, "staff_id = ? AND is_active", staffID).Error; err == nil {
		rec.SupervisorID = &assignment.SupervisorID
		rec.ZoneID = assignment.ZoneID
		rec.LocationID = assignment.LocationID

		if assignment.ZoneID != nil {
			var zone geofence.Zone
			if err := db.DB.First(&zone, "id = ? AND is_active", assignment.ZoneID).Error; err == nil {
				dist := geo.HaversineMeters(input.Lat, input.Lng, zone.CenterLat, zone.CenterLng)
				rec.DistanceFromZone = &dist
				if !zone.ContainsPoint(input.Lat, input.Lng) && !override {
					utils.RespondError(w, http.StatusBadRequest, "Clock-in location is outside the assigned zone")
					return
				}
			}
		}
	}

	rec.Status = lateOrPresent(staffID, now)

	if err := store.Create(&rec); err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to create attendance record")
		return
	}

	utils.RespondSuccess(w, http.StatusCreated, rec)
}

func ClockOutHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Missing user ID in context")
		return
	}
	clockOut(w, r, actorID, false)
}

// OverrideClockOutHandler lets a supervisor close someone else's open record;
// the actor lands in clocked_out_by so corrections stay attributable.
func OverrideClockOutHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Missing user ID in context")
		return
	}
	clockOut(w, r, actorID, true)
}

func clockOut(w http.ResponseWriter, r *http.Request, actorID string, override bool) {
	var input clockOutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	staffID := actorID
	if override {
		if input.StaffID == "" {
			utils.RespondError(w, http.StatusBadRequest, "staff_id is required for override clock-out")
			return
		}
		staffID = input.StaffID
	}

	now := time.Now()
	today := DateOf(now)
	yesterday := today.AddDate(0, 0, -1)

	open, err := store.FindOpenRecord(staffID, today, yesterday)
	if err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return
	}
	if open == nil {
		utils.RespondError(w, http.StatusNotFound, "No open attendance record to clock out")
		return
	}

	ok, err := store.CloseIfOpen(open.ID, now, &input.Lat, &input.Lng, input.PhotoURL, &actorID)
	if err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to clock out")
		return
	}
	if !ok {
		// Lost the race to the sweeper (or another request); nothing written.
		utils.RespondError(w, http.StatusConflict, "Record was already clocked out")
		return
	}

	closed, err := store.Get(open.ID)
	if err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return
	}
	utils.RespondSuccess(w, http.StatusOK, closed)
}

func ListRecordsHandler(w http.ResponseWriter, r *http.Request) {
	var records []AttendanceRecord
	q := db.DB.Order("attendance_date desc, clock_in desc").Limit(500)

	if staffID := r.URL.Query().Get("staff_id"); staffID != "" {
		q = q.Where("staff_id = ?", staffID)
	}
	if supervisorID := r.URL.Query().Get("supervisor_id"); supervisorID != "" {
		q = q.Where("supervisor_id = ?", supervisorID)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if from := r.URL.Query().Get("from"); from != "" {
		q = q.Where("attendance_date >= ?", from)
	}
	if to := r.URL.Query().Get("to"); to != "" {
		q = q.Where("attendance_date <= ?", to)
	}
	if r.URL.Query().Get("open") == "true" {
		q = q.Where("clock_out IS NULL")
	}

	if err := q.Find(&records).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return
	}
	utils.RespondSuccess(w, http.StatusOK, records)
}

func GetRecordHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "record_id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid record id")
		return
	}

	rec, err := store.Get(id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Attendance record not found")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, rec)
}

// DeleteRecordHandler hard-deletes. Records are removed outright, unlike
// zones and users which soft-delete via is_active.
func DeleteRecordHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "record_id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid record id")
		return
	}

	res := db.DB.Delete(&AttendanceRecord{}, "id = ?", id)
	if res.Error != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to delete record")
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(w, http.StatusNotFound, "Attendance record not found")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Record deleted")
}

// minIntervalBlocked enforces the min_clock_interval_hours system setting:
// a new shift can't start until that many hours after the last clock-out.
func minIntervalBlocked(staffID string, now time.Time) (bool, time.Time) {
	var cfg SystemConfig
	if err := db.DB.First(&cfg, "key = ?", ConfigKeyMinClockIntervalHours).Error; err != nil {
		return false, time.Time{}
	}
	hours, err := strconv.Atoi(cfg.Value)
	if err != nil || hours <= 0 {
		return false, time.Time{}
	}

	var last AttendanceRecord
	err = db.DB.
		Where("staff_id = ? AND clock_out IS NOT NULL", staffID).
		Order("clock_out desc").
		First(&last).Error
	if err != nil || last.ClockOut == nil {
		return false, time.Time{}
	}

	next := last.ClockOut.Add(time.Duration(hours) * time.Hour)
	return now.Before(next), next
}

// lateOrPresent marks the record Late when clock-in lands after shift start
// plus the grace buffer. Unset or malformed shift starts count as Present.
func lateOrPresent(staffID string, clockIn time.Time) string {
	var row struct {
		ShiftStartTime string
	}
	err := db.DB.Table("app_auth.users").
		Select("shift_start_time").
		Where("user_id = ?", staffID).
		Scan(&row).Error
	if err != nil {
		return StatusPresent
	}

	hour, minute, ok := ParseShiftTime(row.ShiftStartTime)
	if !ok {
		return StatusPresent
	}

	grace := time.Duration(store.GraceMinutes()) * time.Minute
	shiftStart := time.Date(clockIn.Year(), clockIn.Month(), clockIn.Day(), hour, minute, 0, 0, clockIn.Location())
	if clockIn.After(shiftStart.Add(grace)) {
		return StatusLate
	}
	return StatusPresent
}
