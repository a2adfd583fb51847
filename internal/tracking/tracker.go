package tracking

import (
	"errors"
	"time"
)

var ErrNoActiveClockIn = errors.New("live tracking requires an open attendance record")

// AttendanceChecker answers whether the staff member currently has an open
// attendance record for today or yesterday. The attendance package provides
// the live implementation; tests use a stub.
type AttendanceChecker interface {
	HasOpenAttendance(staffID string) (bool, error)
}

// SessionStore is the persistence surface the tracker runs on.
type SessionStore interface {
	// FindByDate returns the staff member's session for the date, nil when
	// none exists yet.
	FindByDate(staffID string, date time.Time) (*LiveTrackingSession, error)
	Create(session *LiveTrackingSession) error
	Save(session *LiveTrackingSession) error
	ListActive() ([]LiveTrackingSession, error)
}

// Tracker owns the live tracking lifecycle: Inactive → Active → Inactive,
// gated on an open clock-in which is re-checked on every location update.
type Tracker struct {
	Store   SessionStore
	Checker AttendanceChecker

	// Now is a test seam; nil means time.Now.
	Now func() time.Time
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func dateOf(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}

// Start activates (or re-activates) today's session. An existing session is
// refreshed rather than duplicated.
func (t *Tracker) Start(staffID string) (*LiveTrackingSession, error) {
	ok, err := t.Checker.HasOpenAttendance(staffID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoActiveClockIn
	}

	now := t.now()
	session, err := t.Store.FindByDate(staffID, dateOf(now))
	if err != nil {
		return nil, err
	}
	if session != nil {
		session.IsActive = true
		session.LastUpdate = now
		if err := t.Store.Save(session); err != nil {
			return nil, err
		}
		return session, nil
	}

	session = &LiveTrackingSession{
		StaffID:     staffID,
		SessionDate: dateOf(now),
		IsActive:    true,
		StartedAt:   now,
		LastUpdate:  now,
		Trail:       Trail{},
	}
	if err := t.Store.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateLocation appends one server-timestamped point to today's trail. The
// clock-in precondition is re-validated on every call: once the owner clocks
// out, the next update deactivates the session and fails.
func (t *Tracker) UpdateLocation(staffID string, lat, lng float64) (*LiveTrackingSession, error) {
	now := t.now()

	ok, err := t.Checker.HasOpenAttendance(staffID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Clock-out happened since tracking started; shut the session down.
		// Overnight sessions are dated yesterday, so check both days.
		session, findErr := t.Store.FindByDate(staffID, dateOf(now))
		if findErr == nil && session == nil {
			session, findErr = t.Store.FindByDate(staffID, dateOf(now).AddDate(0, 0, -1))
		}
		if findErr == nil && session != nil && session.IsActive {
			session.IsActive = false
			_ = t.Store.Save(session)
		}
		return nil, ErrNoActiveClockIn
	}

	session, err := t.Store.FindByDate(staffID, dateOf(now))
	if err != nil {
		return nil, err
	}
	if session == nil {
		// Implicit start: an update with a valid clock-in but no session
		// creates and activates one.
		session = &LiveTrackingSession{
			StaffID:     staffID,
			SessionDate: dateOf(now),
			IsActive:    true,
			StartedAt:   now,
			Trail:       Trail{},
		}
		session.LastUpdate = now
		session.Trail = append(session.Trail, TrackPoint{Lat: lat, Lng: lng, Timestamp: now})
		if err := t.Store.Create(session); err != nil {
			return nil, err
		}
		return session, nil
	}

	session.IsActive = true
	session.LastUpdate = now
	session.Trail = append(session.Trail, TrackPoint{Lat: lat, Lng: lng, Timestamp: now})
	if err := t.Store.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Stop deactivates today's session; stopping an absent session is a no-op
// error so clients can tell.
func (t *Tracker) Stop(staffID string) (*LiveTrackingSession, error) {
	session, err := t.Store.FindByDate(staffID, dateOf(t.now()))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New("no tracking session for today")
	}

	session.IsActive = false
	if err := t.Store.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}
