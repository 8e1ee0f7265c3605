package agents

import (
	"context"
	"fmt"
	"testing"

	"github.com/calebmb/pathfinder/internal/geo"
	"github.com/calebmb/pathfinder/pkg/models"
)

func TestVibeMatcherScoresEachVenue(t *testing.T) {
	gen := &genByVenue{responses: map[string]string{
		"Hoops Garage":     `{"score": 0.9, "rationale": "serious pickup scene"}`,
		"Court and Coffee": `{"score": 0.4, "rationale": "more cafe than court"}`,
	}}
	m := NewVibeMatcher(gen, newTestSink())

	delta, err := m.Run(context.Background(), stateWithVenues(testVenues()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := delta.ScorerOutput
	if out == nil || out.Name != ScorerVibe {
		t.Fatalf("expected vibe namespace, got %+v", out)
	}
	if out.Scores["v1"].Score != 0.9 {
		t.Errorf("v1 score = %v, want 0.9", out.Scores["v1"].Score)
	}
	if out.Scores["v2"].Rationale != "more cafe than court" {
		t.Errorf("unexpected rationale: %q", out.Scores["v2"].Rationale)
	}
}

func TestVibeMatcherNeutralOnFailure(t *testing.T) {
	gen := &fakeGen{err: fmt.Errorf("model overloaded")}
	m := NewVibeMatcher(gen, newTestSink())

	delta, err := m.Run(context.Background(), stateWithVenues(testVenues()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for id, rec := range delta.ScorerOutput.Scores {
		if rec.Score != models.NeutralScore {
			t.Errorf("venue %s: expected neutral score, got %v", id, rec.Score)
		}
	}
	if len(delta.ScorerOutput.Scores) != 2 {
		t.Errorf("expected a record per venue, got %d", len(delta.ScorerOutput.Scores))
	}
}

func TestVibeMatcherClampsOutOfRange(t *testing.T) {
	gen := &fakeGen{resp: `{"score": 7.5, "rationale": "model got excited"}`}
	m := NewVibeMatcher(gen, newTestSink())

	delta, err := m.Run(context.Background(), stateWithVenues(testVenues()[:1]))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := delta.ScorerOutput.Scores["v1"].Score; got != 1.0 {
		t.Errorf("expected clamp to 1.0, got %v", got)
	}
}

func TestVibeMatcherEmptyCandidates(t *testing.T) {
	m := NewVibeMatcher(&fakeGen{}, newTestSink())
	delta, err := m.Run(context.Background(), stateWithVenues(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delta.ScorerOutput == nil || len(delta.ScorerOutput.Scores) != 0 {
		t.Errorf("expected well-formed empty output, got %+v", delta.ScorerOutput)
	}
}

// wideRing is a polygon comfortably containing downtown Toronto.
func wideRing() geo.Ring {
	return geo.Ring{
		{-79.5, 43.5}, {-79.2, 43.5}, {-79.2, 43.8}, {-79.5, 43.8},
	}
}

func TestAccessAnalystScoresNearbyVenue(t *testing.T) {
	iso := &geo.Isochrone{Rings: []geo.Ring{wideRing()}}
	a := NewAccessAnalyst(&fakeIsochrones{iso: iso}, newTestSink())

	st := stateWithVenues(testVenues())
	st.MemberLocations = []models.GeoPoint{
		{Lat: 43.650, Lng: -79.380},
		{Lat: 43.660, Lng: -79.390},
	}

	delta, err := a.Run(context.Background(), st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := delta.ScorerOutput.Scores["v1"]
	// Venue within 5km with an isochrone and all members inside:
	// 0.4*1.0 + 0.3*0.8 + 0.3*1.0 = 0.94
	if rec.Score != 0.94 {
		t.Errorf("expected composite 0.94, got %v", rec.Score)
	}
	if rec.Metrics["members_reachable"] != 2 || rec.Metrics["members_total"] != 2 {
		t.Errorf("unexpected reachability metrics: %v", rec.Metrics)
	}
	if len(delta.Isochrones) != 2 {
		t.Errorf("expected isochrones for both venues, got %d", len(delta.Isochrones))
	}
}

func TestAccessAnalystDegradesWithoutIsochrone(t *testing.T) {
	a := NewAccessAnalyst(&fakeIsochrones{err: fmt.Errorf("mapbox down")}, newTestSink())

	st := stateWithVenues(testVenues())
	delta, err := a.Run(context.Background(), st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No member locations and no isochrone: centroid distance ~0 for a
	// tight cluster, so 0.4*1.0 + 0.3*0.4 + 0.3*0.5 = 0.67.
	rec := delta.ScorerOutput.Scores["v1"]
	if rec.Score != 0.67 {
		t.Errorf("expected degraded composite 0.67, got %v", rec.Score)
	}
	if len(delta.Isochrones) != 0 {
		t.Errorf("expected no isochrones, got %d", len(delta.Isochrones))
	}
}

func TestAccessAnalystDistanceDecay(t *testing.T) {
	far := []models.Venue{
		{ID: "far", Name: "Distant Dome", Lat: 44.0, Lng: -79.38},
	}
	a := NewAccessAnalyst(&fakeIsochrones{err: fmt.Errorf("no data")}, newTestSink())

	st := stateWithVenues(far)
	st.MemberLocations = []models.GeoPoint{{Lat: 43.65, Lng: -79.38}}

	delta, err := a.Run(context.Background(), st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// ~39 km out: distance score floors at 0.2.
	// 0.4*0.2 + 0.3*0.4 + 0.3*0.5 = 0.35
	rec := delta.ScorerOutput.Scores["far"]
	if rec.Score != 0.35 {
		t.Errorf("expected floored composite 0.35, got %v", rec.Score)
	}
	if rec.Metrics["distance_km"] < 30 {
		t.Errorf("expected distance over 30km, got %v", rec.Metrics["distance_km"])
	}
}

func TestCostAnalystScoresFromPricingPage(t *testing.T) {
	gen := &fakeGen{resp: `{"cost_per_person": 10, "notes": "court rental split across the group"}`}
	reader := &fakeReader{pages: map[string]string{
		"http://hoops.example.com": "Court rental: $40/hour for up to 4 players.",
	}}
	c := NewCostAnalyst(gen, reader, newTestSink())

	delta, err := c.Run(context.Background(), stateWithVenues(testVenues()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// $10/person against a low budget (ceiling $25): under half the
	// ceiling scores full marks.
	if got := delta.ScorerOutput.Scores["v1"].Score; got != 1.0 {
		t.Errorf("expected full budget-fit score, got %v", got)
	}
	if delta.ScorerOutput.Scores["v1"].Metrics["cost_per_person"] != 10 {
		t.Errorf("expected cost metric carried: %v", delta.ScorerOutput.Scores["v1"].Metrics)
	}
}

func TestCostAnalystNeutralWithoutWebsite(t *testing.T) {
	c := NewCostAnalyst(&fakeGen{}, &fakeReader{}, newTestSink())

	delta, err := c.Run(context.Background(), stateWithVenues(testVenues()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// v2 has no website.
	if got := delta.ScorerOutput.Scores["v2"].Score; got != models.NeutralScore {
		t.Errorf("expected neutral for websiteless venue, got %v", got)
	}
}

func TestCostAnalystNeutralOnUnreadablePage(t *testing.T) {
	c := NewCostAnalyst(&fakeGen{}, &fakeReader{err: fmt.Errorf("reader down")}, newTestSink())

	delta, err := c.Run(context.Background(), stateWithVenues(testVenues()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := delta.ScorerOutput.Scores["v1"].Score; got != models.NeutralScore {
		t.Errorf("expected neutral on reader failure, got %v", got)
	}
}

func TestCostAnalystOverBudget(t *testing.T) {
	gen := &fakeGen{resp: `{"cost_per_person": 120, "notes": "premium membership required"}`}
	reader := &fakeReader{pages: map[string]string{
		"http://hoops.example.com": "Members only. $120 day pass.",
	}}
	c := NewCostAnalyst(gen, reader, newTestSink())

	delta, err := c.Run(context.Background(), stateWithVenues(testVenues()[:1]))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// $120 against a $25 ceiling is past double the ceiling: zero.
	if got := delta.ScorerOutput.Scores["v1"].Score; got != 0 {
		t.Errorf("expected zero budget-fit score, got %v", got)
	}
}
