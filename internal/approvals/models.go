package approvals

import (
	"time"

	"github.com/google/uuid"
)

const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

// LeaveRequest covers an inclusive date range. Approval is terminal:
// pending → approved or pending → rejected, nothing after that.
type LeaveRequest struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	StaffID      string    `gorm:"not null;index" json:"staff_id"`
	SupervisorID *string   `json:"supervisor_id"`
	LeaveType    string    `gorm:"not null" json:"leave_type"`
	StartDate    time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate      time.Time `gorm:"type:date;not null" json:"end_date"`
	Reason       string    `json:"reason"`
	Status       string    `gorm:"default:'pending'" json:"status"`
	ApproverID   *string   `json:"approver_id"`
	DecisionNote string    `json:"decision_note"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (LeaveRequest) TableName() string { return "approvals.leave_requests" }
