// Package geo provides the small amount of spatial math the scorers need:
// great-circle distance, centroids, and point-in-polygon containment tests
// against isochrone rings.
package geo

import (
	"math"

	"github.com/calebmb/pathfinder/pkg/models"
)

const earthRadiusKm = 6371

// HaversineKm returns the great-circle distance in kilometres between two points.
func HaversineKm(a, b models.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dlat := (b.Lat - a.Lat) * math.Pi / 180
	dlng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(h))
}

// Centroid returns the arithmetic centre of the given points.
// Returns a zero point if the slice is empty.
func Centroid(points []models.GeoPoint) models.GeoPoint {
	if len(points) == 0 {
		return models.GeoPoint{}
	}
	var lat, lng float64
	for _, p := range points {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(points))
	return models.GeoPoint{Lat: lat / n, Lng: lng / n}
}

// Ring is a closed polygon ring of [lng, lat] pairs, GeoJSON coordinate order.
type Ring [][2]float64

// Contains reports whether the point falls inside the ring, using the
// ray-casting test. An empty ring contains nothing.
func (r Ring) Contains(p models.GeoPoint) bool {
	n := len(r)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := r[i][0], r[i][1] // lng, lat
		xj, yj := r[j][0], r[j][1]
		if (yi > p.Lat) != (yj > p.Lat) &&
			p.Lng < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Isochrone is the reachable-area polygon for a venue within a travel-time
// contour, reduced from a GeoJSON FeatureCollection to its outer rings.
type Isochrone struct {
	// Rings holds the outer ring of each polygon feature, largest first.
	Rings []Ring
}

// Contains reports whether the point is inside any of the isochrone's rings.
func (iso *Isochrone) Contains(p models.GeoPoint) bool {
	if iso == nil {
		return false
	}
	for _, ring := range iso.Rings {
		if ring.Contains(p) {
			return true
		}
	}
	return false
}
