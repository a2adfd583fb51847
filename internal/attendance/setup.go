package attendance

import (
	"log"
	"time"

	"github.com/UtiliTrack/UT-Backend/internal/config"
	"github.com/UtiliTrack/UT-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "attendance"); err != nil {
		log.Fatal("Failed to ensure schema attendance: ", err)
	}

	if err := db.DB.AutoMigrate(&AttendanceRecord{}, &SystemConfig{}); err != nil {
		log.Fatal("Failed to auto-migrate attendance tables: ", err)
	}

	// Open-record lookups run on every clock-in, clock-out and sweep tick.
	if err := db.DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_open_records
		ON attendance.records (staff_id, attendance_date) WHERE clock_out IS NULL;
	`).Error; err != nil {
		log.Fatal("Failed to create idx_open_records: ", err)
	}

	store = NewStore(db.DB)
}

// NewDefaultSweeper builds the sweeper on the live store with the configured
// cadence.
func NewDefaultSweeper() *Sweeper {
	interval := time.Duration(config.Get().SweepIntervalMinutes) * time.Minute
	return NewSweeper(NewStore(db.DB), interval)
}
