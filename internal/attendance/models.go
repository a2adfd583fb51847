package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Record statuses and approval sub-states. The record itself is Open while
// clock_out is NULL and Closed once it is set; overtime/double-duty approval
// runs orthogonally to that.
const (
	StatusPresent = "Present"
	StatusLate    = "Late"
	StatusAbsent  = "Absent"

	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"

	FlagApprovalPending  = "pending"
	FlagApprovalApproved = "manager_approved"
	FlagApprovalRejected = "rejected"
)

// AttendanceRecord is one staff member's attendance for one calendar date.
// Actor columns record who performed each transition; a NULL clocked_out_by
// on a closed record means the sweeper closed it.
type AttendanceRecord struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	StaffID        string     `gorm:"not null;index" json:"staff_id"`
	SupervisorID   *string    `json:"supervisor_id"`
	ZoneID         *uuid.UUID `gorm:"type:uuid;index" json:"zone_id"`
	LocationID     *uuid.UUID `gorm:"type:uuid" json:"location_id"` // legacy direct-location records
	AttendanceDate time.Time  `gorm:"type:date;not null;index" json:"attendance_date"`

	ClockIn          time.Time  `gorm:"not null" json:"clock_in"`
	ClockOut         *time.Time `json:"clock_out"`
	ClockInLat       *float64   `json:"clock_in_lat"`
	ClockInLng       *float64   `json:"clock_in_lng"`
	ClockOutLat      *float64   `json:"clock_out_lat"`
	ClockOutLng      *float64   `json:"clock_out_lng"`
	ClockInPhotoURL  string     `json:"clock_in_photo_url"`
	ClockOutPhotoURL string     `json:"clock_out_photo_url"`
	DistanceFromZone *float64   `json:"distance_from_zone_m"`

	Status         string `gorm:"default:'Present'" json:"status"`
	ApprovalStatus string `gorm:"default:'pending'" json:"approval_status"`

	Overtime                 bool    `gorm:"default:false" json:"overtime"`
	DoubleDuty               bool    `gorm:"default:false" json:"double_duty"`
	OvertimeApprovalStatus   *string `json:"overtime_approval_status"`
	DoubleDutyApprovalStatus *string `json:"double_duty_approval_status"`

	ClockedInBy        *string `json:"clocked_in_by"`
	ClockedOutBy       *string `json:"clocked_out_by"`
	MarkedBySupervisor *string `json:"marked_by_supervisor"`
	ApprovedByManager  *string `json:"approved_by_manager"`
	RejectedBy         *string `json:"rejected_by"`
	RejectionReason    string  `json:"rejection_reason"`

	IsOverride bool `gorm:"default:false" json:"is_override"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AttendanceRecord) TableName() string { return "attendance.records" }

// IsOpen reports whether the record still awaits a clock-out.
func (r AttendanceRecord) IsOpen() bool { return r.ClockOut == nil }

// SystemConfig is a keyed settings row. Known keys: "grace_minutes" and
// "min_clock_interval_hours".
type SystemConfig struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SystemConfig) TableName() string { return "attendance.system_config" }

const (
	ConfigKeyGraceMinutes          = "grace_minutes"
	ConfigKeyMinClockIntervalHours = "min_clock_interval_hours"
)
