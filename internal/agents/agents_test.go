package agents

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/internal/geo"
	"github.com/calebmb/pathfinder/internal/history"
	"github.com/calebmb/pathfinder/internal/pipeline"
	"github.com/calebmb/pathfinder/internal/services"
	"github.com/calebmb/pathfinder/pkg/models"
)

// Shared test fakes for the agent suite.

// fakeGen returns a canned response, or the same error, for every prompt.
// The call counter is atomic; stages invoke Generate from fan-out
// goroutines.
type fakeGen struct {
	resp  string
	err   error
	calls atomic.Int32
}

func (g *fakeGen) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	if g.err != nil {
		return "", g.err
	}
	return g.resp, nil
}

// genByVenue answers with a per-venue response keyed by a substring of the
// prompt, falling back to an error for unmatched prompts.
type genByVenue struct {
	responses map[string]string
}

func (g *genByVenue) Generate(ctx context.Context, prompt string) (string, error) {
	for key, resp := range g.responses {
		if strings.Contains(prompt, key) {
			return resp, nil
		}
	}
	return "", fmt.Errorf("no canned response for prompt")
}

type fakeSearcher struct {
	venues  []models.Venue
	err     error
	queries []services.PlacesQuery
}

func (f *fakeSearcher) Search(ctx context.Context, q services.PlacesQuery) ([]models.Venue, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.venues, nil
}

type fakeIsochrones struct {
	iso *geo.Isochrone
	err error
}

func (f *fakeIsochrones) Isochrone(ctx context.Context, lat, lng float64, profile string, contourMinutes int) (*geo.Isochrone, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.iso, nil
}

type fakeWeather struct {
	forecast *services.Forecast
	err      error
}

func (f *fakeWeather) Forecast(ctx context.Context, lat, lng float64) (*services.Forecast, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.forecast, nil
}

type fakeHappenings struct {
	events []services.LocalEvent
	err    error
}

func (f *fakeHappenings) Nearby(ctx context.Context, lat, lng float64, radiusKm int) ([]services.LocalEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type fakeReader struct {
	pages map[string]string
	err   error
}

func (f *fakeReader) Read(ctx context.Context, pageURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	page, ok := f.pages[pageURL]
	if !ok {
		return "", fmt.Errorf("no page for %s", pageURL)
	}
	return page, nil
}

type fakeHistory struct {
	past     []history.RiskEvent
	recorded []history.RiskEvent
	err      error
}

func (f *fakeHistory) RecentRisks(venueID string, since time.Time) ([]history.RiskEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []history.RiskEvent
	for _, ev := range f.past {
		if ev.VenueID == venueID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeHistory) RecordRisk(ev *history.RiskEvent) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, *ev)
	return nil
}

func testVenues() []models.Venue {
	return []models.Venue{
		{ID: "v1", Name: "Hoops Garage", Lat: 43.651, Lng: -79.383, Category: "basketball court", Website: "http://hoops.example.com"},
		{ID: "v2", Name: "Court and Coffee", Lat: 43.655, Lng: -79.380, Category: "cafe"},
	}
}

func stateWithVenues(venues []models.Venue) *pipeline.State {
	st := pipeline.NewState("basketball downtown", nil)
	st.ParsedIntent = models.Intent{Activity: "basketball", Budget: "low", Location: "downtown Toronto", Vibe: "competitive"}
	st.CandidateVenues = venues
	return st
}

func newTestSink() *events.Sink {
	return events.NewSink()
}
