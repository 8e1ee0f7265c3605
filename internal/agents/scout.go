package agents

import (
	"context"

	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/internal/pipeline"
	"github.com/calebmb/pathfinder/internal/services"
	"github.com/calebmb/pathfinder/pkg/models"
)

// Search radii in metres. A retry traversal widens the net instead of
// re-running the exact query that just got vetoed.
const (
	scoutRadiusM      = 10000
	scoutRetryRadiusM = 25000
	scoutLimit        = 10
)

// Scout is the discovery stage. It queries the places index for candidate
// venues matching the parsed intent. On a retry traversal it relaxes the
// filters: wider radius and no category restriction.
type Scout struct {
	places VenueSearcher
	sink   *events.Sink
}

// NewScout creates the discovery stage.
func NewScout(places VenueSearcher, sink *events.Sink) *Scout {
	return &Scout{places: places, sink: sink}
}

// Name implements pipeline.Stage.
func (s *Scout) Name() string { return events.NodeScout }

// Run implements pipeline.Stage.
func (s *Scout) Run(ctx context.Context, st *pipeline.State) (pipeline.Delta, error) {
	query := services.PlacesQuery{
		Query:   st.ParsedIntent.Activity,
		Near:    st.ParsedIntent.Location,
		RadiusM: scoutRadiusM,
		Limit:   scoutLimit,
	}
	if query.Query == "" {
		query.Query = st.RawRequest
	}

	if st.RetryCount > 0 {
		query.RadiusM = scoutRetryRadiusM
		query.Category = ""
		s.sink.Emitf(events.NodeScout, "retry %d: widening search to %dkm radius",
			st.RetryCount, query.RadiusM/1000)
	} else {
		s.sink.Emitf(events.NodeScout, "searching venues for %q near %q", query.Query, query.Near)
	}

	venues, err := s.places.Search(ctx, query)
	if err != nil {
		// An unreachable places index means no candidates, not a dead run.
		s.sink.Emitf(events.NodeScout, "warning: venue search failed: %v", err)
		empty := []models.Venue{}
		return pipeline.Delta{CandidateVenues: &empty}, nil
	}

	s.sink.Emitf(events.NodeScout, "found %d candidate venues", len(venues))
	return pipeline.Delta{CandidateVenues: &venues}, nil
}
