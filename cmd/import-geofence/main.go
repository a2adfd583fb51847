package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/UtiliTrack/UT-Backend/internal/geofence"
	"github.com/UtiliTrack/UT-Backend/internal/kml"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Bulk-loads a KMZ/KML survey file into the geofence registry from the
// command line, for the initial import of districting surveys that are too
// big to push through the upload endpoint comfortably.
func main() {
	var (
		file     = flag.String("file", "", "path to .kmz or .kml survey file")
		importAs = flag.String("as", "locations", "import mode: locations or zones")
		location = flag.String("location", "", "target location UUID (required for zones)")
		radius   = flag.Float64("radius", 0, "override radius for point features (meters)")
	)
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}
	if *importAs != "locations" && *importAs != "zones" {
		log.Fatal("-as must be locations or zones")
	}

	godotenv.Load(".env.local")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	var locationID *uuid.UUID
	if *location != "" {
		id, err := uuid.Parse(*location)
		if err != nil {
			log.Fatalf("Invalid -location: %v", err)
		}
		locationID = &id
	} else if *importAs == "zones" {
		log.Fatal("-location is required when importing zones")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Read error: %v", err)
	}

	features, err := kml.Parse(data, *file)
	if err != nil {
		log.Fatalf("Parse error: %v", err)
	}
	fmt.Printf("Parsed %d feature(s) from %s\n\n", len(features), *file)

	result := geofence.ImportFeatures(db, features, *importAs, locationID, *radius)

	for _, item := range result.Imported {
		fmt.Printf("  + %s %q (%s)\n", item.Kind, item.Name, item.ID)
	}
	for _, itemErr := range result.Errors {
		fmt.Printf("  ! %q: %s\n", itemErr.Name, itemErr.Error)
	}
	fmt.Printf("\nImported %d, failed %d\n", len(result.Imported), len(result.Errors))
}
