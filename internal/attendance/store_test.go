package attendance

import (
	"testing"
	"time"
)

// The clock-in conflict rule rides on FindOpenRecord over today and
// yesterday; these tests pin that contract against the in-memory store the
// sweeper tests also use.

func TestFindOpenRecord_TodayConflicts(t *testing.T) {
	store := newMockStore()
	today := DateOf(time.Now())
	store.add(AttendanceRecord{StaffID: "staff-1", AttendanceDate: today, ClockIn: today.Add(8 * time.Hour)})

	open, err := store.FindOpenRecord("staff-1", today, today.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open == nil {
		t.Fatal("expected today's open record to be found")
	}
	if !open.IsOpen() {
		t.Error("expected found record to be open")
	}
}

// Overnight shifts: an open record dated yesterday still blocks a new
// clock-in today.
func TestFindOpenRecord_YesterdayConflicts(t *testing.T) {
	store := newMockStore()
	today := DateOf(time.Now())
	yesterday := today.AddDate(0, 0, -1)
	store.add(AttendanceRecord{StaffID: "staff-1", AttendanceDate: yesterday, ClockIn: yesterday.Add(20 * time.Hour)})

	open, err := store.FindOpenRecord("staff-1", today, yesterday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open == nil {
		t.Fatal("expected yesterday's open record to block a new clock-in")
	}
}

func TestFindOpenRecord_ClosedDoesNotConflict(t *testing.T) {
	store := newMockStore()
	today := DateOf(time.Now())
	closedAt := today.Add(17 * time.Hour)
	store.add(AttendanceRecord{
		StaffID:        "staff-1",
		AttendanceDate: today,
		ClockIn:        today.Add(8 * time.Hour),
		ClockOut:       &closedAt,
	})

	open, err := store.FindOpenRecord("staff-1", today, today.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open != nil {
		t.Error("expected a closed record not to block clock-in")
	}
}

func TestFindOpenRecord_OtherStaffIgnored(t *testing.T) {
	store := newMockStore()
	today := DateOf(time.Now())
	store.add(AttendanceRecord{StaffID: "staff-2", AttendanceDate: today, ClockIn: today.Add(8 * time.Hour)})

	open, err := store.FindOpenRecord("staff-1", today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open != nil {
		t.Error("expected another staff member's record to be invisible")
	}
}
