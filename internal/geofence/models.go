package geofence

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/UtiliTrack/UT-Backend/internal/geo"
	"github.com/google/uuid"
)

// Ring is a closed polygon boundary of [lng, lat] pairs, stored as JSONB.
type Ring [][2]float64

func (r Ring) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return json.Marshal(r)
}

func (r *Ring) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("unsupported boundaries column type %T", value)
	}
}

// Location is a named site. Its geofence is the boundary polygon when one was
// imported, otherwise the center+radius circle. Shift windows are "HH:MM".
type Location struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name              string    `gorm:"uniqueIndex;not null" json:"name"`
	Description       string    `json:"description"`
	CenterLat         float64   `gorm:"not null" json:"center_lat"`
	CenterLng         float64   `gorm:"not null" json:"center_lng"`
	RadiusM           float64   `gorm:"not null;default:100" json:"radius_m"`
	Boundaries        Ring      `gorm:"type:jsonb" json:"boundaries,omitempty"`
	MorningShiftStart string    `json:"morning_shift_start"`
	MorningShiftEnd   string    `json:"morning_shift_end"`
	NightShiftStart   string    `json:"night_shift_start"`
	NightShiftEnd     string    `json:"night_shift_end"`
	IsOffice          bool      `gorm:"default:false" json:"is_office"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Zones []Zone `gorm:"foreignKey:LocationID" json:"zones,omitempty"`
}

func (Location) TableName() string { return "geofence.locations" }

// ContainsPoint prefers the polygon boundary over the circle when present.
func (l Location) ContainsPoint(lat, lng float64) bool {
	if len(l.Boundaries) >= 4 {
		return geo.WithinPolygon(lat, lng, l.Boundaries)
	}
	return geo.WithinCircle(lat, lng, l.CenterLat, l.CenterLng, l.RadiusM)
}

// Zone is a sub-area of a Location with a circular geofence. Zones soft-delete
// via is_active because attendance history references them.
type Zone struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index" json:"location_id"`
	Name       string    `gorm:"not null" json:"name"`
	CenterLat  float64   `gorm:"not null" json:"center_lat"`
	CenterLng  float64   `gorm:"not null" json:"center_lng"`
	RadiusM    float64   `gorm:"not null;default:100" json:"radius_m"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

func (Zone) TableName() string { return "geofence.zones" }

func (z Zone) ContainsPoint(lat, lng float64) bool {
	return geo.WithinCircle(lat, lng, z.CenterLat, z.CenterLng, z.RadiusM)
}

// StaffAssignment maps a staff member to their supervisor and zone. At most
// one assignment per staff member is active; creating a new one deactivates
// the previous.
type StaffAssignment struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	StaffID      string     `gorm:"not null;index" json:"staff_id"`
	SupervisorID string     `gorm:"not null" json:"supervisor_id"`
	ZoneID       *uuid.UUID `gorm:"type:uuid;index" json:"zone_id"`
	LocationID   *uuid.UUID `gorm:"type:uuid" json:"location_id"` // legacy direct-location assignments
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (StaffAssignment) TableName() string { return "geofence.staff_assignments" }

var (
	ErrMissingLocationID  = errors.New("locationId is required when importing zones")
	ErrZoneHasAssignments = errors.New("zone has active staff assignments")
)
