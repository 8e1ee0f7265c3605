package geo

import (
	"math"
	"testing"

	"github.com/calebmb/pathfinder/pkg/models"
)

func TestHaversineKm(t *testing.T) {
	// Toronto city hall to CN Tower, roughly 1.3 km.
	cityHall := models.GeoPoint{Lat: 43.6534, Lng: -79.3841}
	cnTower := models.GeoPoint{Lat: 43.6426, Lng: -79.3871}

	dist := HaversineKm(cityHall, cnTower)
	if dist < 1.0 || dist > 1.6 {
		t.Errorf("expected ~1.3 km, got %v", dist)
	}

	// Same point is zero distance.
	if d := HaversineKm(cityHall, cityHall); d != 0 {
		t.Errorf("expected 0 distance for identical points, got %v", d)
	}
}

func TestCentroid(t *testing.T) {
	points := []models.GeoPoint{
		{Lat: 0, Lng: 0},
		{Lat: 2, Lng: 4},
	}
	c := Centroid(points)
	if c.Lat != 1 || c.Lng != 2 {
		t.Errorf("expected centroid (1, 2), got (%v, %v)", c.Lat, c.Lng)
	}

	empty := Centroid(nil)
	if empty.Lat != 0 || empty.Lng != 0 {
		t.Errorf("expected zero centroid for empty input, got %+v", empty)
	}
}

func TestRingContains(t *testing.T) {
	// Unit square around the origin, [lng, lat] order.
	square := Ring{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	if !square.Contains(models.GeoPoint{Lat: 0, Lng: 0}) {
		t.Error("expected origin to be inside the square")
	}
	if square.Contains(models.GeoPoint{Lat: 2, Lng: 0}) {
		t.Error("expected point above the square to be outside")
	}
	if square.Contains(models.GeoPoint{Lat: 0, Lng: -3}) {
		t.Error("expected point left of the square to be outside")
	}

	var degenerate Ring
	if degenerate.Contains(models.GeoPoint{}) {
		t.Error("expected empty ring to contain nothing")
	}
}

func TestIsochroneContains(t *testing.T) {
	iso := &Isochrone{
		Rings: []Ring{
			{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}},
			{{9, 9}, {11, 9}, {11, 11}, {9, 11}},
		},
	}

	if !iso.Contains(models.GeoPoint{Lat: 10, Lng: 10}) {
		t.Error("expected point in second ring to be contained")
	}
	if iso.Contains(models.GeoPoint{Lat: 5, Lng: 5}) {
		t.Error("expected point between rings to be outside")
	}

	var nilIso *Isochrone
	if nilIso.Contains(models.GeoPoint{}) {
		t.Error("expected nil isochrone to contain nothing")
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := models.GeoPoint{Lat: 43.65, Lng: -79.38}
	b := models.GeoPoint{Lat: 43.70, Lng: -79.40}
	if d1, d2 := HaversineKm(a, b), HaversineKm(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("expected symmetric distance, got %v vs %v", d1, d2)
	}
}
