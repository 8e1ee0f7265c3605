package agents

import (
	"context"
	"fmt"

	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/internal/llm"
	"github.com/calebmb/pathfinder/internal/pipeline"
	"github.com/calebmb/pathfinder/pkg/models"
)

// vibeConcurrency bounds the per-venue model calls within one scoring pass.
const vibeConcurrency = 3

// VibeMatcher is the style-fit scorer. It asks the model how well each
// venue's character matches the requested vibe. A venue whose call fails
// gets a neutral record rather than being dropped.
type VibeMatcher struct {
	gen  llm.Generator
	sink *events.Sink
}

// NewVibeMatcher creates the vibe scorer.
func NewVibeMatcher(gen llm.Generator, sink *events.Sink) *VibeMatcher {
	return &VibeMatcher{gen: gen, sink: sink}
}

// Name implements pipeline.Stage.
func (m *VibeMatcher) Name() string { return ScorerVibe }

// Run implements pipeline.Stage.
func (m *VibeMatcher) Run(ctx context.Context, st *pipeline.State) (pipeline.Delta, error) {
	venues := st.CandidateVenues
	scores := make(map[string]models.ScoreRecord, len(venues))
	if len(venues) == 0 {
		return pipeline.Delta{ScorerOutput: &pipeline.ScorerOutput{Name: ScorerVibe, Scores: scores}}, nil
	}

	m.sink.Emitf(events.NodeVibe, "scoring style fit for %d venues", len(venues))

	tasks := make([]func(context.Context) (models.ScoreRecord, error), len(venues))
	for i, v := range venues {
		v := v
		tasks[i] = func(ctx context.Context) (models.ScoreRecord, error) {
			return m.scoreVenue(ctx, st.ParsedIntent, v)
		}
	}

	results := pipeline.RunConcurrent(ctx, tasks, vibeConcurrency)
	for i, res := range results {
		if res.Failed() {
			m.sink.Emitf(events.NodeVibe, "warning: %s unscored, using neutral: %v", venues[i].Name, res.Err)
			scores[venues[i].ID] = models.NeutralScoreRecord("style fit unavailable")
			continue
		}
		scores[venues[i].ID] = res.Value
	}

	return pipeline.Delta{ScorerOutput: &pipeline.ScorerOutput{Name: ScorerVibe, Scores: scores}}, nil
}

func (m *VibeMatcher) scoreVenue(ctx context.Context, intent models.Intent, v models.Venue) (models.ScoreRecord, error) {
	vibe := intent.Vibe
	if vibe == "" {
		vibe = "a good time for the group"
	}

	prompt := fmt.Sprintf(`Rate how well this venue matches the requested atmosphere.

Requested: %s (%s)
Venue: %s (%s), rating %.1f

Respond with exact JSON, nothing else:
{"score": 0.0, "rationale": "one short sentence"}

Score from 0.0 (completely wrong atmosphere) to 1.0 (perfect match).`,
		vibe, intent.Activity, v.Name, v.Category, v.Rating)

	resp, err := m.gen.Generate(ctx, prompt)
	if err != nil {
		return models.ScoreRecord{}, err
	}

	raw, err := llm.ExtractJSON(resp)
	if err != nil {
		return models.ScoreRecord{}, err
	}

	score := llm.Field(raw, "score")
	if !score.Exists() {
		return models.ScoreRecord{}, fmt.Errorf("vibe contract: missing score")
	}

	rec := models.ScoreRecord{
		Score:     clamp01(score.Float()),
		Rationale: llm.Field(raw, "rationale").String(),
	}
	return rec, nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
