package attendance

import (
	"errors"
	"strconv"
	"time"

	"github.com/UtiliTrack/UT-Backend/internal/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAlreadyClockedIn = errors.New("an open attendance record already exists")
	ErrNotFound         = errors.New("attendance record not found")
)

// Store is the persistence surface the state machine and the sweeper run on.
// Handlers and the sweeper both go through it, so unit tests can swap in a
// mock and the clock-out compare-and-set stays in exactly one place.
type Store interface {
	// FindOpenRecord returns the staff member's open record dated on any of
	// the given days, or nil when there is none.
	FindOpenRecord(staffID string, dates ...time.Time) (*AttendanceRecord, error)
	Create(rec *AttendanceRecord) error
	Get(id uuid.UUID) (*AttendanceRecord, error)
	// CloseIfOpen sets clock-out fields only when clock_out is still NULL.
	// Returns false when another writer already closed the record.
	CloseIfOpen(id uuid.UUID, at time.Time, lat, lng *float64, photoURL string, actor *string) (bool, error)
	// SweepCandidates lists open records dated on or before cutoff whose
	// overtime and double-duty flags are both false.
	SweepCandidates(cutoff time.Time) ([]AttendanceRecord, error)
	// StaffShiftEnd resolves the owner's shift_end_time; gorm.ErrRecordNotFound
	// when the staff row is gone.
	StaffShiftEnd(staffID string) (string, error)
	GraceMinutes() int
}

// DateOf truncates a timestamp to its calendar date (local midnight).
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type GormStore struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) FindOpenRecord(staffID string, dates ...time.Time) (*AttendanceRecord, error) {
	days := make([]string, 0, len(dates))
	for _, d := range dates {
		days = append(days, d.Format("2006-01-02"))
	}

	var rec AttendanceRecord
	err := s.DB.
		Where("staff_id = ? AND clock_out IS NULL AND attendance_date IN ?", staffID, days).
		Order("attendance_date desc").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormStore) Create(rec *AttendanceRecord) error {
	return s.DB.Create(rec).Error
}

func (s *GormStore) Get(id uuid.UUID) (*AttendanceRecord, error) {
	var rec AttendanceRecord
	err := s.DB.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormStore) CloseIfOpen(id uuid.UUID, at time.Time, lat, lng *float64, photoURL string, actor *string) (bool, error) {
	updates := map[string]interface{}{
		"clock_out":      at,
		"clocked_out_by": actor,
	}
	if lat != nil {
		updates["clock_out_lat"] = lat
	}
	if lng != nil {
		updates["clock_out_lng"] = lng
	}
	if photoURL != "" {
		updates["clock_out_photo_url"] = photoURL
	}

	// The clock_out IS NULL guard makes the race loser a no-op: whichever of
	// a manual clock-out and a concurrent sweep lands second changes nothing.
	res := s.DB.Model(&AttendanceRecord{}).
		Where("id = ? AND clock_out IS NULL", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) SweepCandidates(cutoff time.Time) ([]AttendanceRecord, error) {
	var records []AttendanceRecord
	err := s.DB.
		Where("clock_out IS NULL AND attendance_date <= ? AND overtime = false AND double_duty = false",
			cutoff.Format("2006-01-02")).
		Order("attendance_date").
		Find(&records).Error
	return records, err
}

// staffShift is a narrow view over the auth users table; only the sweep needs
// it, so we map the columns here rather than importing the auth package.
type staffShift struct {
	UserID       string `gorm:"primaryKey"`
	ShiftEndTime string
}

func (staffShift) TableName() string { return "app_auth.users" }

func (s *GormStore) StaffShiftEnd(staffID string) (string, error) {
	var row staffShift
	if err := s.DB.First(&row, "user_id = ?", staffID).Error; err != nil {
		return "", err
	}
	return row.ShiftEndTime, nil
}

// GraceMinutes prefers the system_config row and falls back to config.yaml.
func (s *GormStore) GraceMinutes() int {
	var row SystemConfig
	err := s.DB.First(&row, "key = ?", ConfigKeyGraceMinutes).Error
	if err == nil {
		if minutes, convErr := strconv.Atoi(row.Value); convErr == nil && minutes > 0 {
			return minutes
		}
	}
	return config.Get().GraceMinutes
}
