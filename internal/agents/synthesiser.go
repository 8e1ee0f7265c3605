package agents

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/internal/pipeline"
	"github.com/calebmb/pathfinder/pkg/models"
)

// Synthesiser is the synthesis stage. It folds every present scorer
// namespace into a weighted mean per venue, attaches the risk flags the
// critic raised, and emits the final ranking. A venue absent from a
// namespace is skipped in that venue's mean, never counted as zero; a venue
// absent from every namespace falls back to the neutral score.
type Synthesiser struct {
	sink *events.Sink
}

// NewSynthesiser creates the synthesis stage.
func NewSynthesiser(sink *events.Sink) *Synthesiser {
	return &Synthesiser{sink: sink}
}

// Name implements pipeline.Stage.
func (s *Synthesiser) Name() string { return events.NodeSynthesiser }

// Run implements pipeline.Stage.
func (s *Synthesiser) Run(ctx context.Context, st *pipeline.State) (pipeline.Delta, error) {
	ranked := make([]models.RankedVenue, 0, len(st.CandidateVenues))
	if len(st.CandidateVenues) == 0 {
		return pipeline.Delta{RankedResults: &ranked}, nil
	}

	s.sink.Emitf(events.NodeSynthesiser, "synthesising ranking from %d scorer namespaces", len(st.ScorerOutputs))

	for _, v := range st.CandidateVenues {
		ranked = append(ranked, s.rankVenue(v, st))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Venue.Name < ranked[j].Venue.Name
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if len(ranked) > 0 {
		s.sink.Emitf(events.NodeSynthesiser, "top pick: %s (%.2f)", ranked[0].Venue.Name, ranked[0].Score)
	}
	return pipeline.Delta{RankedResults: &ranked}, nil
}

// rankVenue computes one venue's weighted composite and rationale.
func (s *Synthesiser) rankVenue(v models.Venue, st *pipeline.State) models.RankedVenue {
	var (
		weightedSum   float64
		weightTotal   float64
		contributions = make(map[string]float64)
		rationales    []string
	)

	// Deterministic namespace walk for stable rationale ordering.
	names := make([]string, 0, len(st.ScorerOutputs))
	for name := range st.ScorerOutputs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rec, ok := st.ScorerOutputs[name][v.ID]
		if !ok {
			// Absent means the scorer could not evaluate this venue;
			// it contributes nothing rather than dragging the mean down.
			continue
		}
		weight := 1.0
		if w, ok := st.AgentWeights[name]; ok {
			if w <= 0 {
				// An explicit zero deactivates the scorer's contribution;
				// only absent entries get the default weight.
				continue
			}
			weight = w
		}
		weightedSum += weight * rec.Score
		weightTotal += weight
		contributions[name] = rec.Score
		if rec.Rationale != "" {
			rationales = append(rationales, rec.Rationale)
		}
	}

	score := models.NeutralScore
	if weightTotal > 0 {
		score = weightedSum / weightTotal
	}

	why := strings.Join(rationales, "; ")
	if why == "" {
		why = "no scorer could evaluate this venue"
	}

	return models.RankedVenue{
		Venue:         v,
		Score:         math.Round(score*100) / 100,
		Why:           why,
		WatchOut:      watchOut(st.RiskFlags[v.ID]),
		Contributions: contributions,
	}
}

// watchOut condenses the critic's flags into one warning line, worst first.
func watchOut(flags []models.RiskFlag) string {
	if len(flags) == 0 {
		return ""
	}
	rank := map[string]int{"high": 0, "medium": 1, "low": 2}
	sorted := append([]models.RiskFlag(nil), flags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank[sorted[i].Severity] < rank[sorted[j].Severity]
	})

	parts := make([]string, len(sorted))
	for i, f := range sorted {
		parts[i] = fmt.Sprintf("%s: %s", f.Severity, f.Detail)
	}
	return strings.Join(parts, "; ")
}
