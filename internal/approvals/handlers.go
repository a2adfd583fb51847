package approvals

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/UtiliTrack/UT-Backend/internal/attendance"
	"github.com/UtiliTrack/UT-Backend/internal/db"
	"github.com/UtiliTrack/UT-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

func loadRecord(w http.ResponseWriter, r *http.Request) (*attendance.AttendanceRecord, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "record_id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid record id")
		return nil, false
	}

	var rec attendance.AttendanceRecord
	err = db.DB.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Attendance record not found")
		return nil, false
	}
	if err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return nil, false
	}
	return &rec, true
}

func actorFromContext(w http.ResponseWriter, r *http.Request) (string, bool) {
	actorID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Missing user ID in context")
		return "", false
	}
	return actorID, true
}

type decisionInput struct {
	Reason string `json:"reason"`
}

func decisionReason(r *http.Request) string {
	var input decisionInput
	_ = json.NewDecoder(r.Body).Decode(&input) // body is optional
	return input.Reason
}

// MarkFlagHandler marks overtime or double duty on a record, open or closed.
func MarkFlagHandler(flag Flag) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := actorFromContext(w, r)
		if !ok {
			return
		}
		rec, ok := loadRecord(w, r)
		if !ok {
			return
		}

		Mark(rec, flag, actorID)
		if err := db.DB.Model(rec).Updates(markColumns(rec, flag)).Error; err != nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "Failed to update record")
			return
		}
		utils.RespondSuccess(w, http.StatusOK, rec)
	}
}

func ApproveFlagHandler(flag Flag) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := actorFromContext(w, r)
		if !ok {
			return
		}
		rec, ok := loadRecord(w, r)
		if !ok {
			return
		}

		Approve(rec, flag, actorID)
		if err := db.DB.Model(rec).Updates(approveColumns(rec, flag)).Error; err != nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "Failed to update record")
			return
		}

		notify(rec.StaffID, "Approval granted",
			string(flag)+" approved for "+rec.AttendanceDate.Format("2006-01-02"),
			map[string]string{"record_id": rec.ID.String(), "flag": string(flag)})
		utils.RespondSuccess(w, http.StatusOK, rec)
	}
}

func RejectFlagHandler(flag Flag) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := actorFromContext(w, r)
		if !ok {
			return
		}
		rec, ok := loadRecord(w, r)
		if !ok {
			return
		}

		Reject(rec, flag, actorID, decisionReason(r))
		if err := db.DB.Model(rec).Updates(rejectColumns(rec, flag)).Error; err != nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "Failed to update record")
			return
		}

		notify(rec.StaffID, "Approval rejected",
			string(flag)+" rejected for "+rec.AttendanceDate.Format("2006-01-02"),
			map[string]string{"record_id": rec.ID.String(), "flag": string(flag)})
		utils.RespondSuccess(w, http.StatusOK, rec)
	}
}

func DecideRecordHandler(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := actorFromContext(w, r)
		if !ok {
			return
		}
		rec, ok := loadRecord(w, r)
		if !ok {
			return
		}

		DecideRecord(rec, approve, actorID, decisionReason(r))
		if err := db.DB.Model(rec).Updates(decideColumns(rec, approve)).Error; err != nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "Failed to update record")
			return
		}
		utils.RespondSuccess(w, http.StatusOK, rec)
	}
}

type leaveInput struct {
	LeaveType string `json:"leave_type" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason"`
}

func SubmitLeaveHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	var input leaveInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	start, _ := time.ParseInLocation("2006-01-02", input.StartDate, time.Local)
	end, _ := time.ParseInLocation("2006-01-02", input.EndDate, time.Local)
	if end.Before(start) {
		utils.RespondError(w, http.StatusBadRequest, "start_date must not be after end_date")
		return
	}

	req := LeaveRequest{
		StaffID:   actorID,
		LeaveType: input.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    input.Reason,
		Status:    LeavePending,
	}

	// Attach the requester's supervisor when one is assigned.
	var sup struct{ SupervisorID *string }
	if err := db.DB.Table("geofence.staff_assignments").
		Select("supervisor_id").
		Where("staff_id = ? AND is_active", actorID).
		Scan(&sup).Error; err == nil && sup.SupervisorID != nil {
		req.SupervisorID = sup.SupervisorID
	}

	if err := db.DB.Create(&req).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to create leave request")
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, req)
}

func ListLeaveHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	var requests []LeaveRequest
	q := db.DB.Order("created_at desc").Limit(200)

	// Staff see their own requests; approvers filter their pending queue by
	// supervisor instead.
	if r.URL.Query().Get("for_approval") == "true" {
		q = q.Where("supervisor_id = ? AND status = ?", actorID, LeavePending)
	} else if staffID := r.URL.Query().Get("staff_id"); staffID != "" {
		q = q.Where("staff_id = ?", staffID)
	} else {
		q = q.Where("staff_id = ?", actorID)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Find(&requests).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return
	}
	utils.RespondSuccess(w, http.StatusOK, requests)
}

// DecideLeaveHandler finalizes a pending request. Decisions are terminal:
// re-deciding an already approved/rejected request is a conflict.
func DecideLeaveHandler(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := actorFromContext(w, r)
		if !ok {
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "leave_id"))
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid leave request id")
			return
		}

		var req LeaveRequest
		err = db.DB.First(&req, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Leave request not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
			return
		}
		if req.Status != LeavePending {
			utils.RespondError(w, http.StatusConflict, "Leave request already decided")
			return
		}

		req.ApproverID = &actorID
		req.DecisionNote = decisionReason(r)
		if approve {
			req.Status = LeaveApproved
		} else {
			req.Status = LeaveRejected
		}

		if err := db.DB.Save(&req).Error; err != nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "Failed to update leave request")
			return
		}

		notify(req.StaffID, "Leave request "+req.Status,
			req.LeaveType+" leave "+req.StartDate.Format("2006-01-02")+" to "+req.EndDate.Format("2006-01-02"),
			map[string]string{"leave_id": req.ID.String(), "status": req.Status})
		utils.RespondSuccess(w, http.StatusOK, req)
	}
}

// DeleteLeaveHandler hard-deletes. Leave requests have no downstream
// references, so no soft-delete column.
func DeleteLeaveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "leave_id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid leave request id")
		return
	}

	res := db.DB.Delete(&LeaveRequest{}, "id = ?", id)
	if res.Error != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to delete leave request")
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(w, http.StatusNotFound, "Leave request not found")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, "Leave request deleted")
}
