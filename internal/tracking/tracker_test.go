package tracking

import (
	"errors"
	"testing"
	"time"
)

type stubChecker struct {
	open bool
	err  error
}

func (s stubChecker) HasOpenAttendance(staffID string) (bool, error) { return s.open, s.err }

// memStore is an in-memory SessionStore keyed by staff+date.
type memStore struct {
	sessions map[string]*LiveTrackingSession
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*LiveTrackingSession)}
}

func key(staffID string, date time.Time) string {
	return staffID + "|" + date.Format("2006-01-02")
}

func (m *memStore) FindByDate(staffID string, date time.Time) (*LiveTrackingSession, error) {
	s, ok := m.sessions[key(staffID, date)]
	if !ok {
		return nil, nil
	}
	copied := *s
	copied.Trail = append(Trail{}, s.Trail...)
	return &copied, nil
}

func (m *memStore) Create(session *LiveTrackingSession) error {
	copied := *session
	m.sessions[key(session.StaffID, session.SessionDate)] = &copied
	return nil
}

func (m *memStore) Save(session *LiveTrackingSession) error {
	copied := *session
	m.sessions[key(session.StaffID, session.SessionDate)] = &copied
	return nil
}

func (m *memStore) ListActive() ([]LiveTrackingSession, error) {
	var out []LiveTrackingSession
	for _, s := range m.sessions {
		if s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func newTestTracker(open bool) (*Tracker, *memStore) {
	store := newMemStore()
	return &Tracker{Store: store, Checker: stubChecker{open: open}}, store
}

// TestStart_RequiresOpenClockIn verifies start fails with ErrNoActiveClockIn
// when no attendance record is open.
func TestStart_RequiresOpenClockIn(t *testing.T) {
	tr, _ := newTestTracker(false)

	_, err := tr.Start("staff-1")
	if !errors.Is(err, ErrNoActiveClockIn) {
		t.Errorf("expected ErrNoActiveClockIn, got %v", err)
	}
}

// TestStart_RefreshesExistingSession verifies starting twice on the same day
// refreshes rather than duplicates.
func TestStart_RefreshesExistingSession(t *testing.T) {
	tr, store := newTestTracker(true)

	first, err := tr.Start("staff-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	tr.Now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	second, err := tr.Start("staff-1")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}

	if len(store.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(store.sessions))
	}
	if !second.LastUpdate.After(first.LastUpdate) {
		t.Error("expected restart to refresh last_update")
	}
}

// TestUpdateLocation_NoClockInNoSession is the precondition property: an
// update with no prior start and no open clock-in fails.
func TestUpdateLocation_NoClockInNoSession(t *testing.T) {
	tr, store := newTestTracker(false)

	_, err := tr.UpdateLocation("staff-1", 6.9271, 79.8612)
	if !errors.Is(err, ErrNoActiveClockIn) {
		t.Errorf("expected ErrNoActiveClockIn, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Error("expected no session to be created")
	}
}

// TestUpdateLocation_ImplicitStart verifies an update with an open clock-in
// but no session creates one and appends exactly one point.
func TestUpdateLocation_ImplicitStart(t *testing.T) {
	tr, _ := newTestTracker(true)

	session, err := tr.UpdateLocation("staff-1", 6.9271, 79.8612)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !session.IsActive {
		t.Error("expected implicitly created session to be active")
	}
	if len(session.Trail) != 1 {
		t.Fatalf("expected exactly 1 trail point, got %d", len(session.Trail))
	}
	p := session.Trail[0]
	if p.Lat != 6.9271 || p.Lng != 79.8612 {
		t.Errorf("unexpected point %+v", p)
	}
	if p.Timestamp.IsZero() {
		t.Error("expected server-assigned timestamp")
	}
}

// TestUpdateLocation_AppendsInOrder verifies the trail is append-only and
// ordered by insertion.
func TestUpdateLocation_AppendsInOrder(t *testing.T) {
	tr, _ := newTestTracker(true)

	base := time.Now()
	for i := 0; i < 3; i++ {
		offset := time.Duration(i) * time.Minute
		tr.Now = func() time.Time { return base.Add(offset) }
		if _, err := tr.UpdateLocation("staff-1", 6.92+float64(i)*0.001, 79.86); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	session, _ := tr.Store.FindByDate("staff-1", dateOf(base))
	if len(session.Trail) != 3 {
		t.Fatalf("expected 3 points, got %d", len(session.Trail))
	}
	for i := 1; i < len(session.Trail); i++ {
		if session.Trail[i].Timestamp.Before(session.Trail[i-1].Timestamp) {
			t.Error("expected chronological trail order")
		}
	}
}

// TestUpdateLocation_AutoDeactivates verifies the session shuts down when the
// owner clocked out after tracking started.
func TestUpdateLocation_AutoDeactivates(t *testing.T) {
	store := newMemStore()
	tr := &Tracker{Store: store, Checker: stubChecker{open: true}}

	if _, err := tr.Start("staff-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Clock-out happens; precondition now fails.
	tr.Checker = stubChecker{open: false}
	_, err := tr.UpdateLocation("staff-1", 6.93, 79.86)
	if !errors.Is(err, ErrNoActiveClockIn) {
		t.Fatalf("expected ErrNoActiveClockIn, got %v", err)
	}

	session, _ := store.FindByDate("staff-1", dateOf(time.Now()))
	if session == nil {
		t.Fatal("expected session to still exist")
	}
	if session.IsActive {
		t.Error("expected session to be auto-deactivated")
	}
	if len(session.Trail) != 0 {
		t.Error("expected no point appended after clock-out")
	}
}

// TestUpdateLocation_AutoDeactivatesOvernightSession verifies a session dated
// yesterday still gets shut down when its owner's clock-in has closed.
func TestUpdateLocation_AutoDeactivatesOvernightSession(t *testing.T) {
	store := newMemStore()
	yesterday := dateOf(time.Now()).AddDate(0, 0, -1)
	store.Create(&LiveTrackingSession{
		StaffID:     "staff-1",
		SessionDate: yesterday,
		IsActive:    true,
		StartedAt:   yesterday.Add(22 * time.Hour),
		LastUpdate:  yesterday.Add(23 * time.Hour),
		Trail:       Trail{},
	})

	tr := &Tracker{Store: store, Checker: stubChecker{open: false}}
	_, err := tr.UpdateLocation("staff-1", 6.93, 79.86)
	if !errors.Is(err, ErrNoActiveClockIn) {
		t.Fatalf("expected ErrNoActiveClockIn, got %v", err)
	}

	session, _ := store.FindByDate("staff-1", yesterday)
	if session == nil {
		t.Fatal("expected yesterday's session to still exist")
	}
	if session.IsActive {
		t.Error("expected overnight session to be auto-deactivated")
	}
}

func TestStop(t *testing.T) {
	tr, store := newTestTracker(true)

	if _, err := tr.Start("staff-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	session, err := tr.Stop("staff-1")
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if session.IsActive {
		t.Error("expected stopped session to be inactive")
	}

	active, _ := store.ListActive()
	if len(active) != 0 {
		t.Errorf("expected no active sessions, got %d", len(active))
	}

	// Stopping with no session for today errors.
	tr2, _ := newTestTracker(true)
	if _, err := tr2.Stop("staff-2"); err == nil {
		t.Error("expected error stopping a nonexistent session")
	}
}
