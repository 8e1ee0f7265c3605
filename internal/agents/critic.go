package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/internal/history"
	"github.com/calebmb/pathfinder/internal/llm"
	"github.com/calebmb/pathfinder/internal/pipeline"
	"github.com/calebmb/pathfinder/internal/services"
	"github.com/calebmb/pathfinder/pkg/models"
)

const (
	// criticTopN bounds the review to the leading candidates to save time
	// and tokens; the rest inherit no flags.
	criticTopN = 3

	criticConcurrency = 3
	criticEventsKm    = 5

	// criticHistoryWindow is how far back past venue problems stay relevant.
	criticHistoryWindow = 180 * 24 * time.Hour
)

// Critic is the adversarial review stage. For each of the top candidates it
// gathers the weather forecast, nearby scheduled happenings, and recorded
// past problems, then asks the model to find dealbreakers. Any fast-fail
// among the reviewed venues raises the veto.
type Critic struct {
	gen     llm.Generator
	weather ForecastFetcher
	nearby  HappeningsFetcher
	hist    RiskHistory
	sink    *events.Sink
}

// NewCritic creates the review stage. hist may be nil when no history store
// is configured.
func NewCritic(gen llm.Generator, weather ForecastFetcher, nearby HappeningsFetcher, hist RiskHistory, sink *events.Sink) *Critic {
	return &Critic{gen: gen, weather: weather, nearby: nearby, hist: hist, sink: sink}
}

// Name implements pipeline.Stage.
func (c *Critic) Name() string { return events.NodeCritic }

// criticContract is the JSON contract the model output must satisfy.
type criticContract struct {
	Risks          []models.RiskFlag `json:"risks"`
	FastFail       bool              `json:"fast_fail"`
	FastFailReason string            `json:"fast_fail_reason"`
}

// safeFallback is what a failed review degrades to: no flags, no veto.
func safeFallback() criticContract {
	return criticContract{Risks: []models.RiskFlag{}}
}

// Run implements pipeline.Stage.
func (c *Critic) Run(ctx context.Context, st *pipeline.State) (pipeline.Delta, error) {
	flags := make(map[string][]models.RiskFlag)
	veto := false
	vetoReason := ""
	out := func() pipeline.Delta {
		return pipeline.Delta{RiskFlags: flags, Veto: &veto, VetoReason: &vetoReason}
	}

	candidates := st.CandidateVenues
	if len(candidates) == 0 {
		return out(), nil
	}
	if len(candidates) > criticTopN {
		candidates = candidates[:criticTopN]
	}

	c.sink.Emitf(events.NodeCritic, "stress-testing top %d venues", len(candidates))

	tasks := make([]func(context.Context) (criticContract, error), len(candidates))
	for i, v := range candidates {
		v := v
		tasks[i] = func(ctx context.Context) (criticContract, error) {
			return c.reviewVenue(ctx, st.ParsedIntent, v)
		}
	}

	results := pipeline.RunConcurrent(ctx, tasks, criticConcurrency)
	for i, res := range results {
		v := candidates[i]
		verdict := res.Value
		if res.Failed() {
			c.sink.Emitf(events.NodeCritic, "warning: review failed for %s, assuming no risks: %v", v.Name, res.Err)
			verdict = safeFallback()
		}

		flags[v.ID] = verdict.Risks
		if verdict.FastFail && !veto {
			veto = true
			vetoReason = verdict.FastFailReason
			if vetoReason == "" {
				vetoReason = fmt.Sprintf("critical risk at %s", v.Name)
			}
			c.recordVeto(v, vetoReason)
		}
	}

	if veto {
		c.sink.Emitf(events.NodeCritic, "veto: %s", vetoReason)
	} else {
		c.sink.Emitf(events.NodeCritic, "review passed, %d venues flagged", flaggedCount(flags))
	}
	return out(), nil
}

// reviewVenue gathers real-world context and asks the model for dealbreakers.
// Context fetches degrade to empty; only model or contract failures error.
func (c *Critic) reviewVenue(ctx context.Context, intent models.Intent, v models.Venue) (criticContract, error) {
	forecast, err := c.weather.Forecast(ctx, v.Lat, v.Lng)
	if err != nil {
		c.sink.Emitf(events.NodeCritic, "warning: no forecast for %s: %v", v.Name, err)
		forecast = nil
	}

	happenings, err := c.nearby.Nearby(ctx, v.Lat, v.Lng, criticEventsKm)
	if err != nil {
		c.sink.Emitf(events.NodeCritic, "warning: no local events for %s: %v", v.Name, err)
		happenings = nil
	}

	pastRisks := c.pastRisks(v.ID)

	prompt := c.buildPrompt(intent, v, forecast, happenings, pastRisks)
	resp, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return criticContract{}, err
	}
	raw, err := llm.ExtractJSON(resp)
	if err != nil {
		return criticContract{}, err
	}

	var verdict criticContract
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return criticContract{}, fmt.Errorf("review contract: %w", err)
	}
	if verdict.Risks == nil {
		verdict.Risks = []models.RiskFlag{}
	}
	return verdict, nil
}

func (c *Critic) buildPrompt(intent models.Intent, v models.Venue, forecast *services.Forecast, happenings []services.LocalEvent, pastRisks []string) string {
	intentJSON, _ := json.Marshal(intent)

	weatherLine := "unavailable"
	if forecast != nil {
		weatherLine = fmt.Sprintf("%s, %.1f°C, %.1fmm rain, wind %.0f km/h",
			forecast.Summary, forecast.TempC, forecast.RainMM, forecast.WindKmh)
	}

	eventsLine := "none found"
	if len(happenings) > 0 {
		parts, _ := json.Marshal(happenings)
		eventsLine = string(parts)
	}

	historyLine := "none on record"
	if len(pastRisks) > 0 {
		parts, _ := json.Marshal(pastRisks)
		historyLine = string(parts)
	}

	return fmt.Sprintf(`You are an adversarial plan reviewer. Find reasons why this venue
would RUIN the group's plan. Look for dealbreakers.

User intent: %s
Venue: %s (%s)
Weather: %s
Nearby events: %s
Past problems at this venue: %s

A fast-fail means the venue is unusable for this plan (outdoor activity with
heavy rain, a marathon blocking access, a repeat of a recorded past failure).
Ordinary drawbacks are risks, not fast-fails.

Respond with exact JSON, nothing else:
{
  "risks": [{"type": "weather/event/history", "severity": "high/medium/low", "detail": "explanation"}],
  "fast_fail": false,
  "fast_fail_reason": "short reason when fast_fail is true"
}`, intentJSON, v.Name, v.Category, weatherLine, eventsLine, historyLine)
}

// pastRisks returns the venue's recorded problems within the history window.
func (c *Critic) pastRisks(venueID string) []string {
	if c.hist == nil {
		return nil
	}
	records, err := c.hist.RecentRisks(venueID, time.Now().Add(-criticHistoryWindow))
	if err != nil {
		c.sink.Emitf(events.NodeCritic, "warning: history lookup failed for %s: %v", venueID, err)
		return nil
	}
	risks := make([]string, 0, len(records))
	for _, r := range records {
		risks = append(risks, r.Detail)
	}
	return risks
}

// recordVeto persists the veto so future runs see this venue's failure.
func (c *Critic) recordVeto(v models.Venue, reason string) {
	if c.hist == nil {
		return
	}
	err := c.hist.RecordRisk(&history.RiskEvent{
		ID:         uuid.NewString(),
		VenueID:    v.ID,
		EventType:  "veto",
		Severity:   "high",
		Detail:     reason,
		ObservedAt: time.Now(),
	})
	if err != nil {
		c.sink.Emitf(events.NodeCritic, "warning: could not record veto for %s: %v", v.Name, err)
	}
}

func flaggedCount(flags map[string][]models.RiskFlag) int {
	n := 0
	for _, f := range flags {
		if len(f) > 0 {
			n++
		}
	}
	return n
}
