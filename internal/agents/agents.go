// Package agents implements the pipeline stages: intent extraction
// (commander), venue discovery (scout), the three independent scorers (vibe,
// access, cost), the adversarial reviewer (critic), and the synthesiser that
// produces the final ranking.
//
// Stages degrade rather than fail: a collaborator error becomes a neutral
// score, an absent namespace, or an empty candidate list, with a warning on
// the event sink. Only programming errors surface to the executor.
package agents

import (
	"context"
	"time"

	"github.com/calebmb/pathfinder/internal/geo"
	"github.com/calebmb/pathfinder/internal/history"
	"github.com/calebmb/pathfinder/internal/services"
	"github.com/calebmb/pathfinder/pkg/models"
)

// VenueSearcher finds candidate venues. Implemented by services.PlacesClient.
type VenueSearcher interface {
	Search(ctx context.Context, q services.PlacesQuery) ([]models.Venue, error)
}

// IsochroneFetcher fetches reachability polygons. Implemented by
// services.MapboxClient.
type IsochroneFetcher interface {
	Isochrone(ctx context.Context, lat, lng float64, profile string, contourMinutes int) (*geo.Isochrone, error)
}

// ForecastFetcher fetches a weather forecast for a point. Implemented by
// services.WeatherClient.
type ForecastFetcher interface {
	Forecast(ctx context.Context, lat, lng float64) (*services.Forecast, error)
}

// HappeningsFetcher fetches nearby scheduled events. Implemented by
// services.EventsClient.
type HappeningsFetcher interface {
	Nearby(ctx context.Context, lat, lng float64, radiusKm int) ([]services.LocalEvent, error)
}

// PageReader fetches a web page as plain text. Implemented by
// services.ReaderClient.
type PageReader interface {
	Read(ctx context.Context, pageURL string) (string, error)
}

// RiskHistory looks up and records past venue problems. Implemented by
// history.Store.
type RiskHistory interface {
	RecentRisks(venueID string, since time.Time) ([]history.RiskEvent, error)
	RecordRisk(ev *history.RiskEvent) error
}

// defaultAgentWeights is the synthesis weighting used when the commander
// cannot produce one.
func defaultAgentWeights() map[string]float64 {
	return map[string]float64{
		ScorerVibe:   1.0,
		ScorerAccess: 1.0,
		ScorerCost:   1.0,
	}
}

// Scorer namespace names. These are the stage names of the scoring agents
// and the keys of the plan state's scorer_outputs map.
const (
	ScorerVibe   = "vibe"
	ScorerAccess = "access"
	ScorerCost   = "cost"
)
