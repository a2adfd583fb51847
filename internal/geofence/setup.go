package geofence

import (
	"log"

	"github.com/UtiliTrack/UT-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "geofence"); err != nil {
		log.Fatal("Failed to ensure schema geofence: ", err)
	}

	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("Failed to enable uuid-ossp extension: ", err)
	}

	if err := db.DB.AutoMigrate(&Location{}, &Zone{}, &StaffAssignment{}); err != nil {
		log.Fatal("Failed to auto-migrate geofence tables: ", err)
	}

	// Partial index backing the single-active-assignment invariant.
	if err := db.DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_assignment
		ON geofence.staff_assignments (staff_id) WHERE is_active;
	`).Error; err != nil {
		log.Fatal("Failed to create idx_one_active_assignment: ", err)
	}
}
