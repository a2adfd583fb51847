package tracking

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TrackPoint struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// Trail is the session's ordered location history, stored as JSONB. Points
// are append-only; timestamps are assigned server-side at append time, so
// insertion order is chronological order.
type Trail []TrackPoint

func (t Trail) Value() (driver.Value, error) {
	if t == nil {
		t = Trail{}
	}
	return json.Marshal(t)
}

func (t *Trail) Scan(value interface{}) error {
	if value == nil {
		*t = Trail{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported trail column type %T", value)
	}
}

// LiveTrackingSession is one staff member's trail for one calendar date.
// A session may only be active while its owner has an open attendance record
// for that date or the one before (overnight shifts).
type LiveTrackingSession struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	StaffID     string    `gorm:"not null;index:idx_session_staff_date,unique" json:"staff_id"`
	SessionDate time.Time `gorm:"type:date;not null;index:idx_session_staff_date,unique" json:"session_date"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	StartedAt   time.Time `gorm:"not null" json:"started_at"`
	LastUpdate  time.Time `gorm:"not null" json:"last_update"`
	Trail       Trail     `gorm:"type:jsonb" json:"trail"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (LiveTrackingSession) TableName() string { return "tracking.sessions" }
