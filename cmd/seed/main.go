package main

import (
	"fmt"
	"log"

	"github.com/UtiliTrack/UT-Backend/internal/attendance"
	"github.com/UtiliTrack/UT-Backend/internal/auth"
	"github.com/UtiliTrack/UT-Backend/internal/config"
	"github.com/UtiliTrack/UT-Backend/internal/db"
	"github.com/UtiliTrack/UT-Backend/internal/geofence"
	"github.com/UtiliTrack/UT-Backend/internal/utils"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a development database: one account per role, a head-office location
// with a zone, and active assignments so clock-in works out of the box.
// Re-running is safe; existing rows are left alone.
func main() {
	godotenv.Load(".env.local")
	config.Load()
	db.Connect()
	auth.Init()
	geofence.Init()
	attendance.Init()

	admin := seedUser("admin", "super_admin", "System Admin", nil)
	ceo := seedUser("ceo", "ceo", "Chief Executive", nil)
	gm := seedUser("gm", "general_manager", "General Manager", &ceo.UserID)
	manager := seedUser("manager", "manager", "Operations Manager", &gm.UserID)
	supervisor := seedUser("supervisor", "supervisor", "Field Supervisor", &manager.UserID)
	staff := seedUser("staff", "staff", "Field Staff", &supervisor.UserID)
	_ = admin

	location := geofence.Location{
		Name:              "Head Office",
		Description:       "Seeded development site",
		CenterLat:         6.9271,
		CenterLng:         79.8612,
		RadiusM:           250,
		MorningShiftStart: "08:30",
		MorningShiftEnd:   "17:00",
		IsOffice:          true,
	}
	if err := db.DB.Where("name = ?", location.Name).FirstOrCreate(&location).Error; err != nil {
		log.Fatal("Failed to seed location: ", err)
	}

	zone := geofence.Zone{
		LocationID: location.ID,
		Name:       "Main Gate",
		CenterLat:  6.9275,
		CenterLng:  79.8608,
		RadiusM:    120,
		IsActive:   true,
	}
	if err := db.DB.Where("location_id = ? AND name = ?", location.ID, zone.Name).FirstOrCreate(&zone).Error; err != nil {
		log.Fatal("Failed to seed zone: ", err)
	}

	assignment := geofence.StaffAssignment{
		StaffID:      staff.UserID,
		SupervisorID: supervisor.UserID,
		ZoneID:       &zone.ID,
		IsActive:     true,
	}
	if err := db.DB.Where("staff_id = ? AND is_active", staff.UserID).FirstOrCreate(&assignment).Error; err != nil {
		log.Fatal("Failed to seed assignment: ", err)
	}

	seedConfig(attendance.ConfigKeyGraceMinutes, "30")
	seedConfig(attendance.ConfigKeyMinClockIntervalHours, "8")

	fmt.Println("\nSeed complete. All accounts use password \"password123\".")
}

func seedUser(username, role, fullName string, supervisorID *string) auth.User {
	var existing auth.User
	if err := db.DB.First(&existing, "username = ?", username).Error; err == nil {
		fmt.Printf("  = %-12s already exists (%s)\n", username, existing.UserID)
		return existing
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password: ", err)
	}

	user := auth.User{
		UserID:         utils.GenerateUUID(),
		Username:       username,
		HashedPassword: string(hashed),
		FullName:       fullName,
		Role:           role,
		SupervisorID:   supervisorID,
		ShiftStartTime: "08:30",
		ShiftEndTime:   "17:00",
		IsActive:       true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		log.Fatalf("Failed to seed user %s: %v", username, err)
	}
	fmt.Printf("  + %-12s role=%s\n", username, role)
	return user
}

func seedConfig(key, value string) {
	row := attendance.SystemConfig{Key: key, Value: value}
	if err := db.DB.Where("key = ?", key).FirstOrCreate(&row).Error; err != nil {
		log.Fatal("Failed to seed system config: ", err)
	}
}
