package approvals

import (
	"github.com/UtiliTrack/UT-Backend/internal/attendance"
)

// Flag names the two supervisor-marked attendance flags that run through the
// manager approval chain.
type Flag string

const (
	FlagOvertime   Flag = "overtime"
	FlagDoubleDuty Flag = "double_duty"
)

// Transitions are direct field writes; role gating happens at the route
// layer. Remarking a rejected flag back to pending is allowed without limit,
// and both flags may be set on the same record.

// Mark sets the flag and puts its approval sub-state at pending. Works on
// open and closed records alike; the record's own open/closed state never
// changes here.
func Mark(rec *attendance.AttendanceRecord, flag Flag, supervisorID string) {
	pending := attendance.FlagApprovalPending
	switch flag {
	case FlagOvertime:
		rec.Overtime = true
		rec.OvertimeApprovalStatus = &pending
	case FlagDoubleDuty:
		rec.DoubleDuty = true
		rec.DoubleDutyApprovalStatus = &pending
	}
	rec.MarkedBySupervisor = &supervisorID
}

// Approve moves the flag's sub-state to manager_approved.
func Approve(rec *attendance.AttendanceRecord, flag Flag, managerID string) {
	approved := attendance.FlagApprovalApproved
	switch flag {
	case FlagOvertime:
		rec.OvertimeApprovalStatus = &approved
	case FlagDoubleDuty:
		rec.DoubleDutyApprovalStatus = &approved
	}
	rec.ApprovedByManager = &managerID
}

// Reject clears the flag itself (the hours no longer count), records the
// rejection and who made it. The record becomes sweepable again if both
// flags end up false.
func Reject(rec *attendance.AttendanceRecord, flag Flag, rejectorID, reason string) {
	rejected := attendance.FlagApprovalRejected
	switch flag {
	case FlagOvertime:
		rec.Overtime = false
		rec.OvertimeApprovalStatus = &rejected
	case FlagDoubleDuty:
		rec.DoubleDuty = false
		rec.DoubleDutyApprovalStatus = &rejected
	}
	rec.RejectedBy = &rejectorID
	if reason != "" {
		rec.RejectionReason = reason
	}
}

// DecideRecord overwrites the record's own approval status. Intentionally
// idempotent and unguarded: re-approving or flipping a decision is allowed.
func DecideRecord(rec *attendance.AttendanceRecord, approve bool, managerID, reason string) {
	if approve {
		rec.ApprovalStatus = attendance.ApprovalApproved
		rec.ApprovedByManager = &managerID
	} else {
		rec.ApprovalStatus = attendance.ApprovalRejected
		rec.RejectedBy = &managerID
		if reason != "" {
			rec.RejectionReason = reason
		}
	}
}

// The column extractors below narrow each transition's UPDATE to the fields
// it actually changed. A full-row Save here could write a stale clock_out
// back over a record the sweeper closed between load and persist, so
// clock-in/out columns must never appear in these maps.

func flagStateColumns(rec *attendance.AttendanceRecord, flag Flag) map[string]interface{} {
	if flag == FlagDoubleDuty {
		return map[string]interface{}{
			"double_duty":                 rec.DoubleDuty,
			"double_duty_approval_status": rec.DoubleDutyApprovalStatus,
		}
	}
	return map[string]interface{}{
		"overtime":                 rec.Overtime,
		"overtime_approval_status": rec.OvertimeApprovalStatus,
	}
}

func markColumns(rec *attendance.AttendanceRecord, flag Flag) map[string]interface{} {
	cols := flagStateColumns(rec, flag)
	cols["marked_by_supervisor"] = rec.MarkedBySupervisor
	return cols
}

func approveColumns(rec *attendance.AttendanceRecord, flag Flag) map[string]interface{} {
	cols := flagStateColumns(rec, flag)
	cols["approved_by_manager"] = rec.ApprovedByManager
	return cols
}

func rejectColumns(rec *attendance.AttendanceRecord, flag Flag) map[string]interface{} {
	cols := flagStateColumns(rec, flag)
	cols["rejected_by"] = rec.RejectedBy
	cols["rejection_reason"] = rec.RejectionReason
	return cols
}

func decideColumns(rec *attendance.AttendanceRecord, approve bool) map[string]interface{} {
	cols := map[string]interface{}{
		"approval_status": rec.ApprovalStatus,
	}
	if approve {
		cols["approved_by_manager"] = rec.ApprovedByManager
	} else {
		cols["rejected_by"] = rec.RejectedBy
		cols["rejection_reason"] = rec.RejectionReason
	}
	return cols
}
