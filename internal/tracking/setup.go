package tracking

import (
	"log"

	"github.com/UtiliTrack/UT-Backend/internal/attendance"
	"github.com/UtiliTrack/UT-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "tracking"); err != nil {
		log.Fatal("Failed to ensure schema tracking: ", err)
	}

	if err := db.DB.AutoMigrate(&LiveTrackingSession{}); err != nil {
		log.Fatal("Failed to auto-migrate tracking tables: ", err)
	}

	tracker = &Tracker{
		Store:   &GormSessionStore{DB: db.DB},
		Checker: attendanceChecker{store: attendance.NewStore(db.DB)},
	}
}
