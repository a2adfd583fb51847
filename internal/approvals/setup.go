package approvals

import (
	"log"

	"github.com/UtiliTrack/UT-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "approvals"); err != nil {
		log.Fatal("Failed to ensure schema approvals: ", err)
	}

	if err := db.DB.AutoMigrate(&LeaveRequest{}); err != nil {
		log.Fatal("Failed to auto-migrate approvals tables: ", err)
	}

	initNotifier()
}
