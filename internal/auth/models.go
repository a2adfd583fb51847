package auth

import "time"

type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;unique" json:"-"`
	ExpiresAt time.Time `gorm:"not null"`
}

// User is a staff account. Shift times are "HH:MM" wall-clock strings; the
// sweeper falls back to 17:00 when shift_end_time is unset or malformed.
type User struct {
	UserID         string  `gorm:"primaryKey" json:"user_id"`
	Username       string  `gorm:"uniqueIndex;not null" json:"username"`
	Password       string  `json:"password" gorm:"-"`
	HashedPassword string  `json:"-"`
	FullName       string  `json:"full_name"`
	Role           string  `gorm:"default:'staff'" json:"role"`
	SupervisorID   *string `json:"supervisor_id"`
	ShiftStartTime string  `json:"shift_start_time"`
	ShiftEndTime   string  `json:"shift_end_time"`
	ProfilePicURL  string  `json:"profile_pic_url"`
	IsActive       bool    `gorm:"default:true" json:"is_active"`
	Session        Session `gorm:"foreignKey:UserID" json:"-"`
}

func (Session) TableName() string { return "app_auth.sessions" }
func (User) TableName() string    { return "app_auth.users" }
