package attendance

import (
	"strconv"
	"strings"
	"time"
)

// DefaultShiftEnd applies when a staff member's shift_end_time is unset or
// not a valid HH:MM wall-clock string.
const DefaultShiftEnd = "17:00"

// ParseShiftTime validates an "HH:MM" string (hour 0-23, minute 0-59).
func ParseShiftTime(s string) (hour, minute int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// AutoClockOutInstant is shift end on the attendance date plus the grace
// buffer. The sweeper closes records with this computed instant, not with
// wall-clock "now", so recorded hours stay deterministic however late the
// sweep actually runs.
func AutoClockOutInstant(attendanceDate time.Time, shiftEnd string, grace time.Duration) time.Time {
	hour, minute, ok := ParseShiftTime(shiftEnd)
	if !ok {
		hour, minute, _ = ParseShiftTime(DefaultShiftEnd)
	}

	return time.Date(
		attendanceDate.Year(), attendanceDate.Month(), attendanceDate.Day(),
		hour, minute, 0, 0, attendanceDate.Location(),
	).Add(grace)
}
