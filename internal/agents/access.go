package agents

import (
	"context"
	"fmt"
	"math"

	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/internal/geo"
	"github.com/calebmb/pathfinder/internal/pipeline"
	"github.com/calebmb/pathfinder/pkg/models"
)

const (
	accessConcurrency    = 4
	accessProfile        = "driving"
	accessContourMinutes = 15

	// Distance score decay: full marks inside 5 km of the group centre,
	// linear decay to a 0.2 floor at 30 km.
	accessNearKm = 5.0
	accessFarKm  = 30.0

	// cityTravelKmh is the travel-minute estimate's assumed average speed.
	cityTravelKmh = 30.0
)

// AccessAnalyst is the travel-feasibility scorer. For each venue it fetches
// a reachability isochrone, measures the distance from the group centre, and
// counts how many members fall inside the isochrone, combining the three
// into a weighted composite.
type AccessAnalyst struct {
	mapbox IsochroneFetcher
	sink   *events.Sink
}

// NewAccessAnalyst creates the access scorer.
func NewAccessAnalyst(mapbox IsochroneFetcher, sink *events.Sink) *AccessAnalyst {
	return &AccessAnalyst{mapbox: mapbox, sink: sink}
}

// Name implements pipeline.Stage.
func (a *AccessAnalyst) Name() string { return ScorerAccess }

// accessResult is one venue's analysis: the score record plus the isochrone
// kept for transparency.
type accessResult struct {
	record    models.ScoreRecord
	isochrone *geo.Isochrone
}

// Run implements pipeline.Stage.
func (a *AccessAnalyst) Run(ctx context.Context, st *pipeline.State) (pipeline.Delta, error) {
	venues := st.CandidateVenues
	scores := make(map[string]models.ScoreRecord, len(venues))
	isochrones := make(map[string]*geo.Isochrone)
	out := pipeline.Delta{
		ScorerOutput: &pipeline.ScorerOutput{Name: ScorerAccess, Scores: scores},
		Isochrones:   isochrones,
	}
	if len(venues) == 0 {
		return out, nil
	}

	center := a.groupCenter(st)
	a.sink.Emitf(events.NodeAccess, "checking travel feasibility for %d venues from (%.4f, %.4f)",
		len(venues), center.Lat, center.Lng)

	tasks := make([]func(context.Context) (accessResult, error), len(venues))
	for i, v := range venues {
		v := v
		tasks[i] = func(ctx context.Context) (accessResult, error) {
			return a.analyzeVenue(ctx, v, center, st.MemberLocations), nil
		}
	}

	results := pipeline.RunConcurrent(ctx, tasks, accessConcurrency)
	withIso := 0
	for i, res := range results {
		if res.Failed() {
			scores[venues[i].ID] = models.NeutralScoreRecord("accessibility analysis unavailable")
			continue
		}
		scores[venues[i].ID] = res.Value.record
		if res.Value.isochrone != nil {
			isochrones[venues[i].ID] = res.Value.isochrone
			withIso++
		}
	}

	a.sink.Emitf(events.NodeAccess, "scored %d venues (%d with isochrones)", len(scores), withIso)
	return out, nil
}

// groupCenter is the member-location centroid, or the candidate-venue
// centroid when the request carried no member locations.
func (a *AccessAnalyst) groupCenter(st *pipeline.State) models.GeoPoint {
	if len(st.MemberLocations) > 0 {
		return geo.Centroid(st.MemberLocations)
	}
	points := make([]models.GeoPoint, len(st.CandidateVenues))
	for i, v := range st.CandidateVenues {
		points[i] = models.GeoPoint{Lat: v.Lat, Lng: v.Lng}
	}
	return geo.Centroid(points)
}

// analyzeVenue never fails; an unavailable isochrone just lowers the
// composite through the isochrone factor.
func (a *AccessAnalyst) analyzeVenue(ctx context.Context, v models.Venue, center models.GeoPoint, members []models.GeoPoint) accessResult {
	iso, err := a.mapbox.Isochrone(ctx, v.Lat, v.Lng, accessProfile, accessContourMinutes)
	if err != nil {
		a.sink.Emitf(events.NodeAccess, "warning: no isochrone for %s: %v", v.Name, err)
		iso = nil
	}

	distKm := geo.HaversineKm(center, models.GeoPoint{Lat: v.Lat, Lng: v.Lng})

	distScore := 1.0
	switch {
	case distKm >= accessFarKm:
		distScore = 0.2
	case distKm > accessNearKm:
		distScore = 1.0 - 0.8*((distKm-accessNearKm)/(accessFarKm-accessNearKm))
	}

	isoScore := 0.4
	if iso != nil {
		isoScore = 0.8
	}

	memberScore := models.NeutralScore
	reachable, total := 0, len(members)
	if iso != nil && total > 0 {
		for _, m := range members {
			if iso.Contains(m) {
				reachable++
			}
		}
		memberScore = float64(reachable) / float64(total)
	}

	score := 0.4*distScore + 0.3*isoScore + 0.3*memberScore
	avgTravelMin := math.Round(distKm / cityTravelKmh * 60)

	rationale := fmt.Sprintf("%.1f km from the group, ~%d min travel", distKm, int(avgTravelMin))
	if total > 0 {
		rationale += fmt.Sprintf(", %d/%d members within %d min", reachable, total, accessContourMinutes)
	}

	return accessResult{
		record: models.ScoreRecord{
			Score:     math.Round(score*100) / 100,
			Rationale: rationale,
			Metrics: map[string]float64{
				"distance_km":       math.Round(distKm*10) / 10,
				"avg_travel_min":    avgTravelMin,
				"max_travel_min":    math.Round(avgTravelMin * 1.8),
				"members_reachable": float64(reachable),
				"members_total":     float64(total),
			},
		},
		isochrone: iso,
	}
}
