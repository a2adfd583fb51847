package tracking

import (
	"errors"
	"time"

	"github.com/UtiliTrack/UT-Backend/internal/attendance"
	"gorm.io/gorm"
)

type GormSessionStore struct {
	DB *gorm.DB
}

func (s *GormSessionStore) FindByDate(staffID string, date time.Time) (*LiveTrackingSession, error) {
	var session LiveTrackingSession
	err := s.DB.
		Where("staff_id = ? AND session_date = ?", staffID, date.Format("2006-01-02")).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *GormSessionStore) Create(session *LiveTrackingSession) error {
	return s.DB.Create(session).Error
}

func (s *GormSessionStore) Save(session *LiveTrackingSession) error {
	return s.DB.Save(session).Error
}

func (s *GormSessionStore) ListActive() ([]LiveTrackingSession, error) {
	var sessions []LiveTrackingSession
	err := s.DB.Where("is_active").Order("last_update desc").Find(&sessions).Error
	return sessions, err
}

// attendanceChecker adapts the attendance store to the tracker's
// precondition check: an open record today or yesterday counts.
type attendanceChecker struct {
	store attendance.Store
}

func (c attendanceChecker) HasOpenAttendance(staffID string) (bool, error) {
	today := attendance.DateOf(time.Now())
	open, err := c.store.FindOpenRecord(staffID, today, today.AddDate(0, 0, -1))
	if err != nil {
		return false, err
	}
	return open != nil, nil
}
