package geofence

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/UtiliTrack/UT-Backend/internal/db"
	"github.com/UtiliTrack/UT-Backend/internal/kml"
	"github.com/UtiliTrack/UT-Backend/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxUploadBytes = 15 << 20 // survey KMZ files are small; 15MB is generous

type ImportedItem struct {
	Name string    `json:"name"`
	Kind string    `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

type ImportItemError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ImportResult is the partial-success summary of a batch import. Per-feature
// failures land in Errors without aborting the rest of the batch.
type ImportResult struct {
	Imported []ImportedItem    `json:"imported"`
	Errors   []ImportItemError `json:"errors"`
}

// ImportFeatures persists parsed features as zones or locations. In "zones"
// mode a target location is mandatory; features missing it fail individually.
func ImportFeatures(dbh *gorm.DB, features []kml.Feature, importAs string, locationID *uuid.UUID, defaultRadius float64) ImportResult {
	result := ImportResult{
		Imported: []ImportedItem{},
		Errors:   []ImportItemError{},
	}

	for _, feature := range features {
		radius := feature.RadiusM
		if feature.Kind == "point" && defaultRadius > 0 {
			radius = defaultRadius
		}

		switch importAs {
		case "zones":
			if locationID == nil {
				result.Errors = append(result.Errors, ImportItemError{
					Name:  feature.Name,
					Error: ErrMissingLocationID.Error(),
				})
				continue
			}
			// Zones are radius circles only; polygon rings are not attached.
			zone := Zone{
				LocationID: *locationID,
				Name:       feature.Name,
				CenterLat:  feature.CenterLat,
				CenterLng:  feature.CenterLng,
				RadiusM:    radius,
				IsActive:   true,
			}
			if err := dbh.Create(&zone).Error; err != nil {
				result.Errors = append(result.Errors, ImportItemError{Name: feature.Name, Error: err.Error()})
				continue
			}
			result.Imported = append(result.Imported, ImportedItem{Name: zone.Name, Kind: "zone", ID: zone.ID})

		default: // locations
			location := Location{
				Name:        feature.Name,
				Description: feature.Description,
				CenterLat:   feature.CenterLat,
				CenterLng:   feature.CenterLng,
				RadiusM:     radius,
				Boundaries:  Ring(feature.Boundaries),
			}
			if err := dbh.Create(&location).Error; err != nil {
				result.Errors = append(result.Errors, ImportItemError{Name: feature.Name, Error: err.Error()})
				continue
			}
			result.Imported = append(result.Imported, ImportedItem{Name: location.Name, Kind: "location", ID: location.ID})
		}
	}

	return result
}

// ImportUploadHandler accepts a multipart KMZ/KML upload (field "kmzFile")
// with options importAs (locations|zones), locationId, defaultRadius.
func ImportUploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("kmzFile")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "kmzFile field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	importAs := r.FormValue("importAs")
	if importAs == "" {
		importAs = "locations"
	}
	if importAs != "locations" && importAs != "zones" {
		utils.RespondError(w, http.StatusBadRequest, "importAs must be locations or zones")
		return
	}

	var locationID *uuid.UUID
	if raw := r.FormValue("locationId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid locationId")
			return
		}
		var location Location
		if err := db.DB.First(&location, "id = ?", id).Error; err != nil {
			utils.RespondError(w, http.StatusNotFound, "Target location not found")
			return
		}
		locationID = &id
	}

	var defaultRadius float64
	if raw := r.FormValue("defaultRadius"); raw != "" {
		defaultRadius, err = strconv.ParseFloat(raw, 64)
		if err != nil || defaultRadius <= 0 {
			utils.RespondError(w, http.StatusBadRequest, "Invalid defaultRadius")
			return
		}
	}

	features, err := kml.Parse(data, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, kml.ErrNoKMLInArchive),
			errors.Is(err, kml.ErrInvalidXML),
			errors.Is(err, kml.ErrNoFeaturesFound):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Import failed: %v", err))
		}
		return
	}

	result := ImportFeatures(db.DB, features, importAs, locationID, defaultRadius)
	utils.RespondSuccess(w, http.StatusOK, result)
}
