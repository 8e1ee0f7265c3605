package agents

import (
	"context"
	"fmt"

	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/internal/llm"
	"github.com/calebmb/pathfinder/internal/pipeline"
	"github.com/calebmb/pathfinder/pkg/models"
)

const costConcurrency = 3

// Budget band ceilings in dollars per person, used to turn an extracted
// per-person cost into a budget-fit score.
var budgetCeiling = map[string]float64{
	"low":    25,
	"medium": 60,
	"high":   150,
}

// CostAnalyst is the no-surprises scorer. It reads each venue's website
// through the page reader, has the model extract a per-person cost estimate,
// and scores the venue against the group's budget band. Venues without a
// website, or with an unreadable one, get a neutral record.
type CostAnalyst struct {
	gen    llm.Generator
	reader PageReader
	sink   *events.Sink
}

// NewCostAnalyst creates the cost scorer.
func NewCostAnalyst(gen llm.Generator, reader PageReader, sink *events.Sink) *CostAnalyst {
	return &CostAnalyst{gen: gen, reader: reader, sink: sink}
}

// Name implements pipeline.Stage.
func (c *CostAnalyst) Name() string { return ScorerCost }

// Run implements pipeline.Stage.
func (c *CostAnalyst) Run(ctx context.Context, st *pipeline.State) (pipeline.Delta, error) {
	venues := st.CandidateVenues
	scores := make(map[string]models.ScoreRecord, len(venues))
	if len(venues) == 0 {
		return pipeline.Delta{ScorerOutput: &pipeline.ScorerOutput{Name: ScorerCost, Scores: scores}}, nil
	}

	budget := st.ParsedIntent.Budget
	if _, ok := budgetCeiling[budget]; !ok {
		budget = "medium"
	}
	c.sink.Emitf(events.NodeCost, "auditing costs for %d venues against a %s budget", len(venues), budget)

	tasks := make([]func(context.Context) (models.ScoreRecord, error), len(venues))
	for i, v := range venues {
		v := v
		tasks[i] = func(ctx context.Context) (models.ScoreRecord, error) {
			return c.scoreVenue(ctx, v, budget)
		}
	}

	results := pipeline.RunConcurrent(ctx, tasks, costConcurrency)
	for i, res := range results {
		if res.Failed() {
			c.sink.Emitf(events.NodeCost, "warning: %s unaudited, using neutral: %v", venues[i].Name, res.Err)
			scores[venues[i].ID] = models.NeutralScoreRecord("cost data unavailable")
			continue
		}
		scores[venues[i].ID] = res.Value
	}

	return pipeline.Delta{ScorerOutput: &pipeline.ScorerOutput{Name: ScorerCost, Scores: scores}}, nil
}

func (c *CostAnalyst) scoreVenue(ctx context.Context, v models.Venue, budget string) (models.ScoreRecord, error) {
	if v.Website == "" {
		return models.NeutralScoreRecord("no website listed, cost unverified"), nil
	}

	page, err := c.reader.Read(ctx, v.Website)
	if err != nil {
		return models.NeutralScoreRecord("pricing page unreadable, cost unverified"), nil
	}

	prompt := fmt.Sprintf(`Extract the realistic cost per person for a group visit from this
venue's page text. Include hidden fees, rentals, and minimum spends.

Venue: %s (%s)
Page text:
%s

Respond with exact JSON, nothing else:
{"cost_per_person": 0.0, "notes": "one short sentence on what the cost covers"}

Use your best estimate if the page has no explicit prices.`, v.Name, v.Category, page)

	resp, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return models.ScoreRecord{}, err
	}
	raw, err := llm.ExtractJSON(resp)
	if err != nil {
		return models.ScoreRecord{}, err
	}

	costField := llm.Field(raw, "cost_per_person")
	if !costField.Exists() {
		return models.ScoreRecord{}, fmt.Errorf("cost contract: missing cost_per_person")
	}
	cost := costField.Float()
	if cost < 0 {
		cost = 0
	}

	ceiling := budgetCeiling[budget]
	// Full marks at or under half the ceiling, linear decay to zero at
	// double the ceiling.
	var score float64
	switch {
	case cost <= ceiling/2:
		score = 1.0
	case cost >= ceiling*2:
		score = 0.0
	default:
		score = 1.0 - (cost-ceiling/2)/(ceiling*1.5)
	}

	rationale := fmt.Sprintf("~$%.0f/person against a %s budget", cost, budget)
	if notes := llm.Field(raw, "notes").String(); notes != "" {
		rationale += ": " + notes
	}

	return models.ScoreRecord{
		Score:     clamp01(score),
		Rationale: rationale,
		Metrics:   map[string]float64{"cost_per_person": cost},
	}, nil
}
