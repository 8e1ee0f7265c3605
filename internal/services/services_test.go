package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPlacesSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "basketball court" {
			t.Errorf("unexpected query param: %s", r.URL.Query().Get("query"))
		}
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("missing authorization header")
		}
		w.Write([]byte(`{"results": [
			{"fsq_id": "abc", "name": "Hoops Garage",
			 "geocodes": {"main": {"latitude": 43.65, "longitude": -79.38}},
			 "categories": [{"name": "Basketball Court"}],
			 "location": {"formatted_address": "1 Court St"},
			 "rating": 8.4}
		]}`))
	}))
	defer srv.Close()

	c := NewPlacesClient(srv.URL, "test-key")
	venues, err := c.Search(context.Background(), PlacesQuery{Query: "basketball court", Near: "Toronto"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(venues) != 1 {
		t.Fatalf("expected 1 venue, got %d", len(venues))
	}
	v := venues[0]
	if v.ID != "abc" || v.Name != "Hoops Garage" || v.Category != "Basketball Court" {
		t.Errorf("unexpected venue: %+v", v)
	}
	if v.Lat != 43.65 || v.Lng != -79.38 {
		t.Errorf("unexpected coordinates: %v, %v", v.Lat, v.Lng)
	}
}

func TestPlacesSearchNoKey(t *testing.T) {
	c := NewPlacesClient("http://unused", "")
	if _, err := c.Search(context.Background(), PlacesQuery{Query: "x"}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestPlacesSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewPlacesClient(srv.URL, "key")
	if _, err := c.Search(context.Background(), PlacesQuery{Query: "x"}); err == nil {
		t.Error("expected error on 429 response")
	}
}

func TestMapboxIsochrone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("polygons") != "true" {
			t.Error("expected polygons=true")
		}
		w.Write([]byte(`{"type": "FeatureCollection", "features": [
			{"geometry": {"type": "Polygon", "coordinates": [[[-79.4, 43.6], [-79.3, 43.6], [-79.3, 43.7], [-79.4, 43.7]]]}}
		]}`))
	}))
	defer srv.Close()

	c := NewMapboxClient(srv.URL, "token")
	iso, err := c.Isochrone(context.Background(), 43.65, -79.38, "driving", 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(iso.Rings) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(iso.Rings))
	}
	if len(iso.Rings[0]) != 4 {
		t.Errorf("expected 4 ring points, got %d", len(iso.Rings[0]))
	}
}

func TestMapboxIsochroneMultiPolygon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type": "FeatureCollection", "features": [
			{"geometry": {"type": "MultiPolygon", "coordinates": [[[[0,0],[1,0],[1,1]]]]}}
		]}`))
	}))
	defer srv.Close()

	c := NewMapboxClient(srv.URL, "token")
	iso, err := c.Isochrone(context.Background(), 0.5, 0.5, "walking", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(iso.Rings) != 1 {
		t.Errorf("expected 1 ring from multipolygon, got %d", len(iso.Rings))
	}
}

func TestMapboxIsochroneBadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type": "Point"}`))
	}))
	defer srv.Close()

	c := NewMapboxClient(srv.URL, "token")
	if _, err := c.Isochrone(context.Background(), 0, 0, "driving", 15); err == nil {
		t.Error("expected error for non-FeatureCollection response")
	}
}

func TestMapboxIsochroneNoToken(t *testing.T) {
	c := NewMapboxClient("http://unused", "")
	if _, err := c.Isochrone(context.Background(), 0, 0, "driving", 15); err == nil {
		t.Error("expected error without access token")
	}
}

func TestWeatherForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("units") != "metric" {
			t.Error("expected metric units")
		}
		w.Write([]byte(`{
			"weather": [{"description": "light rain"}],
			"main": {"temp": 18.5},
			"wind": {"speed": 5.0},
			"rain": {"1h": 2.4}
		}`))
	}))
	defer srv.Close()

	c := NewWeatherClient(srv.URL, "key")
	f, err := c.Forecast(context.Background(), 43.65, -79.38)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Summary != "light rain" {
		t.Errorf("unexpected summary %q", f.Summary)
	}
	if f.TempC != 18.5 {
		t.Errorf("unexpected temp %v", f.TempC)
	}
	if f.RainMM != 2.4 {
		t.Errorf("unexpected rain %v", f.RainMM)
	}
	if f.WindKmh != 18 {
		t.Errorf("expected 18 km/h wind (5 m/s), got %v", f.WindKmh)
	}
}

func TestEventsNearby(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Error("missing bearer token")
		}
		w.Write([]byte(`{"results": [
			{"title": "Waterfront Marathon", "category": "sports", "rank": 85, "start": "2025-05-04T08:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	c := NewEventsClient(srv.URL, "key")
	events, err := c.Nearby(context.Background(), 43.65, -79.38, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Title != "Waterfront Marathon" || events[0].Rank != 85 {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestReaderRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Court rental: $40/hour. Shoe rental: $5."))
	}))
	defer srv.Close()

	c := NewReaderClient(srv.URL)
	text, err := c.Read(context.Background(), "http://example.com/pricing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Court rental: $40/hour. Shoe rental: $5." {
		t.Errorf("unexpected page text: %q", text)
	}
}

func TestReaderReadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewReaderClient(srv.URL)
	if _, err := c.Read(context.Background(), "http://example.com/missing"); err == nil {
		t.Error("expected error on 404")
	}
	if _, err := c.Read(context.Background(), ""); err == nil {
		t.Error("expected error on empty URL")
	}
}
