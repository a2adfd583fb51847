// Package kml parses KMZ archives and raw KML survey documents into geofence
// features. Polygon placemarks keep their boundary ring and get a derived
// centroid/radius circle; Point placemarks get a fixed default radius.
package kml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/UtiliTrack/UT-Backend/internal/geo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrNoKMLInArchive  = errors.New("no .kml entry found in archive")
	ErrInvalidXML      = errors.New("file is not valid KML/XML")
	ErrNoFeaturesFound = errors.New("no usable features found in file")
)

// PointRadiusMeters is the circle assigned to Point placemarks, which carry
// no extent of their own.
const PointRadiusMeters = 100

type Feature struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Kind        string       `json:"kind"` // "polygon" or "point"
	CenterLat   float64      `json:"center_lat"`
	CenterLng   float64      `json:"center_lng"`
	RadiusM     float64      `json:"radius_m"`
	Boundaries  [][2]float64 `json:"boundaries,omitempty"` // closed [lng, lat] ring, nil for points
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// Parse extracts geofence features from a KMZ archive or raw KML text.
// The filename is used only for archive sniffing alongside the zip magic.
func Parse(data []byte, filename string) ([]Feature, error) {
	if isArchive(data, filename) {
		kmlText, err := extractKML(data)
		if err != nil {
			return nil, err
		}
		data = kmlText
	}

	placemarks, err := decodePlacemarks(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidXML, err)
	}

	var features []Feature
	for i, pm := range placemarks {
		name := strings.TrimSpace(pm.Name)
		if name == "" {
			name = fmt.Sprintf("Feature %d", i+1)
		} else {
			name = titleCaser.String(name)
		}

		feature := Feature{
			Name:        name,
			Description: strings.TrimSpace(pm.Description),
		}

		switch {
		case pm.Polygon != nil:
			ring := parseCoordinates(pm.Polygon.Coordinates)
			if len(ring) == 0 {
				continue // nothing usable, skip silently
			}
			feature.Kind = "polygon"
			feature.CenterLat, feature.CenterLng, feature.RadiusM = geo.CentroidAndRadius(ring)
			feature.Boundaries = closeRing(ring)
		case pm.Point != nil:
			coords := parseCoordinates(pm.Point.Coordinates)
			if len(coords) == 0 {
				continue
			}
			feature.Kind = "point"
			feature.CenterLng = coords[0][0]
			feature.CenterLat = coords[0][1]
			feature.RadiusM = PointRadiusMeters
		default:
			continue
		}

		features = append(features, feature)
	}

	if len(features) == 0 {
		return nil, ErrNoFeaturesFound
	}
	return features, nil
}

func isArchive(data []byte, filename string) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".kmz") {
		return true
	}
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

// extractKML pulls the first *.kml entry out of a KMZ (zip) archive.
func extractKML(data []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidXML, err)
	}

	for _, entry := range reader.File {
		if !strings.HasSuffix(strings.ToLower(entry.Name), ".kml") {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidXML, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	return nil, ErrNoKMLInArchive
}

type placemark struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Polygon     *struct {
		Coordinates string `xml:"outerBoundaryIs>LinearRing>coordinates"`
	} `xml:"Polygon"`
	Point *struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"Point"`
}

// decodePlacemarks walks the token stream so Placemarks nested under Document
// or Folder elements at any depth are all found.
func decodePlacemarks(data []byte) ([]placemark, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var placemarks []placemark
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Placemark" {
			continue
		}

		var pm placemark
		if err := decoder.DecodeElement(&pm, &start); err != nil {
			return nil, err
		}
		placemarks = append(placemarks, pm)
	}

	return placemarks, nil
}

// parseCoordinates splits a KML coordinates block into [lng, lat] pairs.
// Tokens are whitespace-separated "lng,lat[,alt]" triples; malformed tokens
// are dropped rather than failing the placemark.
func parseCoordinates(text string) [][2]float64 {
	var points [][2]float64
	for _, token := range strings.Fields(text) {
		parts := strings.Split(token, ",")
		if len(parts) < 2 {
			continue
		}
		lng, err1 := strconv.ParseFloat(parts[0], 64)
		lat, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		points = append(points, [2]float64{lng, lat})
	}
	return points
}

// closeRing appends the first vertex when the ring isn't already closed.
func closeRing(ring [][2]float64) [][2]float64 {
	if len(ring) == 0 {
		return ring
	}
	first, last := ring[0], ring[len(ring)-1]
	if first != last {
		ring = append(ring, first)
	}
	return ring
}
