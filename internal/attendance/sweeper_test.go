package attendance

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// mockStore implements Store in memory with the same compare-and-set
// semantics as the gorm store, so race behavior can be exercised directly.
type mockStore struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*AttendanceRecord
	shiftEnds map[string]string // staff_id -> shift end; absent means deleted staff
	grace     int
}

func newMockStore() *mockStore {
	return &mockStore{
		records:   make(map[uuid.UUID]*AttendanceRecord),
		shiftEnds: make(map[string]string),
		grace:     30,
	}
}

func (m *mockStore) add(rec AttendanceRecord) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = uuid.New()
	m.records[rec.ID] = &rec
	return rec.ID
}

func (m *mockStore) FindOpenRecord(staffID string, dates ...time.Time) (*AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.StaffID != staffID || rec.ClockOut != nil {
			continue
		}
		for _, d := range dates {
			if rec.AttendanceDate.Equal(DateOf(d)) {
				copied := *rec
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (m *mockStore) Create(rec *AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = uuid.New()
	copied := *rec
	m.records[rec.ID] = &copied
	return nil
}

func (m *mockStore) Get(id uuid.UUID) (*AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (m *mockStore) CloseIfOpen(id uuid.UUID, at time.Time, lat, lng *float64, photoURL string, actor *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok || rec.ClockOut != nil {
		return false, nil
	}
	rec.ClockOut = &at
	rec.ClockedOutBy = actor
	rec.ClockOutLat = lat
	rec.ClockOutLng = lng
	if photoURL != "" {
		rec.ClockOutPhotoURL = photoURL
	}
	return true, nil
}

func (m *mockStore) SweepCandidates(cutoff time.Time) ([]AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []AttendanceRecord
	for _, rec := range m.records {
		if rec.ClockOut == nil && !rec.Overtime && !rec.DoubleDuty &&
			!rec.AttendanceDate.After(cutoff) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *mockStore) StaffShiftEnd(staffID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end, ok := m.shiftEnds[staffID]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return end, nil
}

func (m *mockStore) GraceMinutes() int { return m.grace }

// TestSweep_ClosesAtComputedInstant is the core sweep scenario: shift end
// 17:00, wall clock past 17:30 → the record closes with clock_out == exactly
// 17:30 on the attendance date and a nil actor, regardless of how late the
// sweep ran.
func TestSweep_ClosesAtComputedInstant(t *testing.T) {
	store := newMockStore()
	store.shiftEnds["staff-1"] = "17:00"

	today := DateOf(time.Now())
	id := store.add(AttendanceRecord{
		StaffID:        "staff-1",
		AttendanceDate: today,
		ClockIn:        today.Add(8 * time.Hour),
	})

	sweeper := NewSweeper(store, time.Minute)
	sweeper.Now = func() time.Time { return today.Add(21 * time.Hour) } // 21:00, sweep is late
	sweeper.RunOnce()

	rec, err := store.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ClockOut == nil {
		t.Fatal("expected record to be closed")
	}
	want := today.Add(17*time.Hour + 30*time.Minute)
	if !rec.ClockOut.Equal(want) {
		t.Errorf("expected clock-out at %v, got %v", want, *rec.ClockOut)
	}
	if rec.ClockedOutBy != nil {
		t.Errorf("expected nil clocked_out_by for system close, got %v", *rec.ClockedOutBy)
	}
}

// TestSweep_BeforeInstantLeavesOpen verifies nothing closes before shift end
// plus grace.
func TestSweep_BeforeInstantLeavesOpen(t *testing.T) {
	store := newMockStore()
	store.shiftEnds["staff-1"] = "17:00"

	today := DateOf(time.Now())
	id := store.add(AttendanceRecord{
		StaffID:        "staff-1",
		AttendanceDate: today,
		ClockIn:        today.Add(8 * time.Hour),
	})

	sweeper := NewSweeper(store, time.Minute)
	sweeper.Now = func() time.Time { return today.Add(17*time.Hour + 29*time.Minute) }
	sweeper.RunOnce()

	rec, _ := store.Get(id)
	if rec.ClockOut != nil {
		t.Error("expected record to stay open before the auto clock-out instant")
	}
}

// TestSweep_SkipsOvertimeAndDoubleDuty verifies flagged records survive the
// sweep even long past shift end.
func TestSweep_SkipsOvertimeAndDoubleDuty(t *testing.T) {
	store := newMockStore()
	store.shiftEnds["staff-1"] = "17:00"
	store.shiftEnds["staff-2"] = "17:00"

	today := DateOf(time.Now())
	overtimeID := store.add(AttendanceRecord{
		StaffID:        "staff-1",
		AttendanceDate: today,
		ClockIn:        today.Add(8 * time.Hour),
		Overtime:       true,
	})
	doubleDutyID := store.add(AttendanceRecord{
		StaffID:        "staff-2",
		AttendanceDate: today,
		ClockIn:        today.Add(8 * time.Hour),
		DoubleDuty:     true,
	})

	sweeper := NewSweeper(store, time.Minute)
	sweeper.Now = func() time.Time { return today.Add(23 * time.Hour) }
	sweeper.RunOnce()

	for _, id := range []uuid.UUID{overtimeID, doubleDutyID} {
		rec, _ := store.Get(id)
		if rec.ClockOut != nil {
			t.Errorf("expected flagged record %s to stay open after sweep", id)
		}
	}
}

// TestSweep_MalformedShiftEndUsesDefault verifies an unparsable shift end
// falls back to 17:00.
func TestSweep_MalformedShiftEndUsesDefault(t *testing.T) {
	store := newMockStore()
	store.shiftEnds["staff-1"] = "late o'clock"

	today := DateOf(time.Now())
	id := store.add(AttendanceRecord{
		StaffID:        "staff-1",
		AttendanceDate: today,
		ClockIn:        today.Add(8 * time.Hour),
	})

	sweeper := NewSweeper(store, time.Minute)
	sweeper.Now = func() time.Time { return today.Add(18 * time.Hour) }
	sweeper.RunOnce()

	rec, _ := store.Get(id)
	if rec.ClockOut == nil {
		t.Fatal("expected record to be closed using the default shift end")
	}
	want := today.Add(17*time.Hour + 30*time.Minute)
	if !rec.ClockOut.Equal(want) {
		t.Errorf("expected default-shift close at %v, got %v", want, *rec.ClockOut)
	}
}

// TestSweep_DeletedStaffSkipped verifies records whose owner no longer exists
// are skipped, not errored.
func TestSweep_DeletedStaffSkipped(t *testing.T) {
	store := newMockStore()
	// No shift end registered for staff-gone: lookups fail like a missing row.

	today := DateOf(time.Now())
	id := store.add(AttendanceRecord{
		StaffID:        "staff-gone",
		AttendanceDate: today,
		ClockIn:        today.Add(8 * time.Hour),
	})

	sweeper := NewSweeper(store, time.Minute)
	sweeper.Now = func() time.Time { return today.Add(23 * time.Hour) }
	sweeper.RunOnce()

	rec, _ := store.Get(id)
	if rec.ClockOut != nil {
		t.Error("expected orphaned record to be left open")
	}
}

// TestSweep_YesterdayRecordClosed verifies stale records from earlier dates
// close at their own date's instant.
func TestSweep_YesterdayRecordClosed(t *testing.T) {
	store := newMockStore()
	store.shiftEnds["staff-1"] = "17:00"

	yesterday := DateOf(time.Now()).AddDate(0, 0, -1)
	id := store.add(AttendanceRecord{
		StaffID:        "staff-1",
		AttendanceDate: yesterday,
		ClockIn:        yesterday.Add(8 * time.Hour),
	})

	sweeper := NewSweeper(store, time.Minute)
	sweeper.Now = func() time.Time { return yesterday.AddDate(0, 0, 1).Add(9 * time.Hour) }
	sweeper.RunOnce()

	rec, _ := store.Get(id)
	if rec.ClockOut == nil {
		t.Fatal("expected yesterday's record to be closed")
	}
	want := yesterday.Add(17*time.Hour + 30*time.Minute)
	if !rec.ClockOut.Equal(want) {
		t.Errorf("expected close at %v, got %v", want, *rec.ClockOut)
	}
}

// TestClockOutRace_SingleWinner pits a manual clock-out against a sweep close
// on the same open record: exactly one write wins, the loser is a no-op.
func TestClockOutRace_SingleWinner(t *testing.T) {
	store := newMockStore()
	store.shiftEnds["staff-1"] = "17:00"

	today := DateOf(time.Now())
	id := store.add(AttendanceRecord{
		StaffID:        "staff-1",
		AttendanceDate: today,
		ClockIn:        today.Add(8 * time.Hour),
	})

	actor := "staff-1"
	manualAt := today.Add(19 * time.Hour)
	sweepAt := today.Add(17*time.Hour + 30*time.Minute)

	var manualOK, sweepOK bool
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		manualOK, _ = store.CloseIfOpen(id, manualAt, nil, nil, "", &actor)
	}()
	go func() {
		defer wg.Done()
		sweepOK, _ = store.CloseIfOpen(id, sweepAt, nil, nil, "", nil)
	}()
	wg.Wait()

	if manualOK == sweepOK {
		t.Fatalf("expected exactly one winner, got manual=%v sweep=%v", manualOK, sweepOK)
	}

	rec, _ := store.Get(id)
	if rec.ClockOut == nil {
		t.Fatal("expected record closed")
	}
	if manualOK {
		if rec.ClockedOutBy == nil || *rec.ClockedOutBy != actor {
			t.Error("manual winner must stamp the actor")
		}
		if !rec.ClockOut.Equal(manualAt) {
			t.Errorf("expected manual timestamp %v, got %v", manualAt, *rec.ClockOut)
		}
	} else {
		if rec.ClockedOutBy != nil {
			t.Error("sweep winner must leave the actor nil")
		}
		if !rec.ClockOut.Equal(sweepAt) {
			t.Errorf("expected sweep timestamp %v, got %v", sweepAt, *rec.ClockOut)
		}
	}
}

// TestSweeper_ReentrancyGuard verifies a second concurrent pass is refused
// while one is running.
func TestSweeper_ReentrancyGuard(t *testing.T) {
	store := newMockStore()
	sweeper := NewSweeper(store, time.Minute)

	if !sweeper.running.CompareAndSwap(false, true) {
		t.Fatal("expected to acquire the run guard")
	}
	if sweeper.running.CompareAndSwap(false, true) {
		t.Fatal("expected the second acquisition to fail while a run is active")
	}
	sweeper.running.Store(false)
	if !sweeper.running.CompareAndSwap(false, true) {
		t.Fatal("expected the guard to be free again after release")
	}
}
