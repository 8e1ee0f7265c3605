package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/internal/llm"
	"github.com/calebmb/pathfinder/internal/pipeline"
	"github.com/calebmb/pathfinder/pkg/models"
)

// Commander is the intent stage. It turns the raw natural-language request
// into a structured intent, a complexity tier, and per-scorer synthesis
// weights. Malformed or failed model output falls back to a heuristic
// default; the commander never errors into the executor.
type Commander struct {
	gen     llm.Generator
	sink    *events.Sink
	profile map[string]float64
}

// NewCommander creates the intent stage.
func NewCommander(gen llm.Generator, sink *events.Sink) *Commander {
	return &Commander{gen: gen, sink: sink}
}

// UseWeightProfile pins the synthesis weights to a configured profile,
// overriding whatever weighting the model suggests.
func (c *Commander) UseWeightProfile(weights map[string]float64) {
	c.profile = weights
}

// Name implements pipeline.Stage.
func (c *Commander) Name() string { return events.NodeCommander }

// commanderContract is the JSON contract the model output must satisfy.
type commanderContract struct {
	ParsedIntent   models.Intent      `json:"parsed_intent"`
	ComplexityTier string             `json:"complexity_tier"`
	ActiveAgents   []string           `json:"active_agents"`
	AgentWeights   map[string]float64 `json:"agent_weights"`
}

// Run implements pipeline.Stage.
func (c *Commander) Run(ctx context.Context, st *pipeline.State) (pipeline.Delta, error) {
	c.sink.Emit(events.NodeCommander, "parsing request intent")

	contract, err := c.extract(ctx, st.RawRequest)
	if err != nil {
		c.sink.Emitf(events.NodeCommander, "warning: intent extraction failed (%v), using heuristic fallback", err)
		contract = heuristicIntent(st.RawRequest)
	}

	tier := models.ComplexityTier(contract.ComplexityTier)
	if !tier.Valid() {
		tier = models.TierComplex
	}
	weights := contract.AgentWeights
	if len(weights) == 0 {
		weights = defaultAgentWeights()
	}
	if len(c.profile) > 0 {
		weights = c.profile
	}
	active := activeScorerSet(contract.ActiveAgents, tier)

	c.sink.Emitf(events.NodeCommander, "intent: %s for %d people, %s budget (%s), activating %s",
		contract.ParsedIntent.Activity, contract.ParsedIntent.GroupSize,
		contract.ParsedIntent.Budget, tier, strings.Join(active, ", "))

	intent := contract.ParsedIntent
	return pipeline.Delta{
		ParsedIntent:   &intent,
		ComplexityTier: tier,
		ActiveAgents:   &active,
		AgentWeights:   weights,
	}, nil
}

// activeScorerSet reduces the model's requested agent set to known scorer
// names. An empty or fully unrecognized request falls back to the tier
// default: simple requests skip the travel analysis and its isochrone
// calls, everything else runs the full scorer set.
func activeScorerSet(requested []string, tier models.ComplexityTier) []string {
	seen := make(map[string]bool, len(requested))
	active := make([]string, 0, len(requested))
	for _, name := range requested {
		switch name {
		case ScorerVibe, ScorerAccess, ScorerCost:
			if !seen[name] {
				seen[name] = true
				active = append(active, name)
			}
		}
	}
	if len(active) > 0 {
		return active
	}
	if tier == models.TierSimple {
		return []string{ScorerVibe, ScorerCost}
	}
	return []string{ScorerVibe, ScorerAccess, ScorerCost}
}

func (c *Commander) extract(ctx context.Context, rawRequest string) (commanderContract, error) {
	prompt := fmt.Sprintf(`You are the planning commander for a group activity service.
Parse the user's request into structured intent.

Request: %q

Respond with exact JSON, nothing else:
{
  "parsed_intent": {
    "activity": "what they want to do",
    "group_size": 0,
    "budget": "low/medium/high",
    "location": "where, if stated",
    "vibe": "desired atmosphere, if stated",
    "when": "time expression, if stated"
  },
  "complexity_tier": "tier_1/tier_2/tier_3",
  "active_agents": ["vibe", "access", "cost"],
  "agent_weights": {"vibe": 1.0, "access": 1.0, "cost": 1.0}
}

tier_1 is a direct request with an obvious answer, tier_2 a typical group
plan, tier_3 ambiguous or multi-constraint. List in active_agents only the
scorers the request actually needs, and weight them by how much it
emphasizes style (vibe), travel (access), and price (cost).`, rawRequest)

	resp, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return commanderContract{}, err
	}

	raw, err := llm.ExtractJSON(resp)
	if err != nil {
		return commanderContract{}, err
	}

	var contract commanderContract
	if err := json.Unmarshal([]byte(raw), &contract); err != nil {
		return commanderContract{}, fmt.Errorf("intent contract: %w", err)
	}
	if contract.ParsedIntent.IsZero() {
		return commanderContract{}, fmt.Errorf("intent contract: no fields extracted")
	}
	return contract, nil
}

// heuristicIntent builds a conservative intent when the model is unavailable:
// the whole request as the activity, a medium budget, and the complex tier so
// every scorer stays active at full weight.
func heuristicIntent(rawRequest string) commanderContract {
	activity := strings.ToLower(strings.TrimSpace(rawRequest))

	budget := "medium"
	for _, word := range []string{"cheap", "budget", "free", "affordable"} {
		if strings.Contains(activity, word) {
			budget = "low"
			break
		}
	}
	for _, word := range []string{"fancy", "upscale", "premium", "splurge"} {
		if strings.Contains(activity, word) {
			budget = "high"
			break
		}
	}

	return commanderContract{
		ParsedIntent: models.Intent{
			Activity: activity,
			Budget:   budget,
		},
		ComplexityTier: string(models.TierComplex),
		AgentWeights:   defaultAgentWeights(),
	}
}
