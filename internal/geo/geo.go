// Package geo holds the geometry used by geofence containment checks and
// KML/KMZ import: haversine distances, circle and polygon membership, and
// centroid/radius derivation for imported boundary rings.
package geo

import "math"

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance between two WGS84 points.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degToRad(lat2 - lat1)
	dLon := degToRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// WithinCircle reports whether the point is inside (or on) the circle.
func WithinCircle(lat, lng, centerLat, centerLng, radiusMeters float64) bool {
	return HaversineMeters(lat, lng, centerLat, centerLng) <= radiusMeters
}

// WithinPolygon runs a ray cast over a closed ring of [lng, lat] pairs.
// The ring must hold at least three distinct vertices plus the closing vertex.
func WithinPolygon(lat, lng float64, ring [][2]float64) bool {
	if len(ring) < 4 {
		return false
	}

	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		if (yi > lat) != (yj > lat) &&
			lng < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// CentroidAndRadius derives a circle from a set of [lng, lat] vertices.
// The centroid is the arithmetic mean of the vertices (not area-weighted,
// close enough for the small survey polygons we ingest); the radius is the
// max haversine distance from centroid to any vertex, ceiled to whole meters.
func CentroidAndRadius(points [][2]float64) (centerLat, centerLng, radiusMeters float64) {
	if len(points) == 0 {
		return 0, 0, 0
	}

	var sumLat, sumLng float64
	for _, p := range points {
		sumLng += p[0]
		sumLat += p[1]
	}
	centerLat = sumLat / float64(len(points))
	centerLng = sumLng / float64(len(points))

	var maxDist float64
	for _, p := range points {
		d := HaversineMeters(centerLat, centerLng, p[1], p[0])
		if d > maxDist {
			maxDist = d
		}
	}
	radiusMeters = math.Ceil(maxDist)
	return centerLat, centerLng, radiusMeters
}
