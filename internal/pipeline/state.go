package pipeline

import (
	"github.com/calebmb/pathfinder/internal/geo"
	"github.com/calebmb/pathfinder/pkg/models"
)

// Key identifies one plan-state field for write-ownership checks.
// Each key is owned by exactly one pipeline role; the executor rejects a
// stage update that carries a key outside the stage's ownership.
type Key string

const (
	KeyParsedIntent    Key = "parsed_intent"
	KeyComplexityTier  Key = "complexity_tier"
	KeyActiveAgents    Key = "active_agents"
	KeyAgentWeights    Key = "agent_weights"
	KeyCandidateVenues Key = "candidate_venues"
	KeyScorerOutputs   Key = "scorer_outputs"
	KeyIsochrones      Key = "isochrones"
	KeyRiskFlags       Key = "risk_flags"
	KeyVeto            Key = "veto"
	KeyVetoReason      Key = "veto_reason"
	KeyRankedResults   Key = "ranked_results"
)

// State is the plan state threaded through one pipeline run. It is created
// once per request, owned exclusively by the executor between stage merges,
// and discarded after the terminal state is returned.
type State struct {
	// RawRequest is the original natural-language request. Immutable.
	RawRequest string
	// MemberLocations are the group members' locations, forwarded from the
	// request. Immutable.
	MemberLocations []models.GeoPoint

	// ParsedIntent is written once by the intent stage.
	ParsedIntent models.Intent
	// ComplexityTier classifies the request; written by the intent stage.
	ComplexityTier models.ComplexityTier
	// ActiveAgents names the scorers activated for this run; written by
	// the intent stage. Empty activates every configured scorer.
	ActiveAgents []string
	// AgentWeights maps scorer name to its synthesis weight; written by the
	// intent stage.
	AgentWeights map[string]float64

	// CandidateVenues is written by the discovery stage, read-only within a
	// pass, and cleared on a retry traversal.
	CandidateVenues []models.Venue

	// ScorerOutputs maps scorer name to venue id to score record. Each
	// scorer writes only its own namespace. Venue ids absent from a
	// namespace signal per-venue failure, not a zero score.
	ScorerOutputs map[string]map[string]models.ScoreRecord
	// Isochrones holds reachability polygons by venue id, produced by the
	// access scorer.
	Isochrones map[string]*geo.Isochrone

	// RiskFlags, Veto and VetoReason are produced by the review stage.
	RiskFlags  map[string][]models.RiskFlag
	Veto       bool
	VetoReason string

	// RetryCount is incremented by the executor once per retry traversal.
	RetryCount int
	// Degraded is set by the executor when the retry budget is exhausted
	// with the reviewer still objecting.
	Degraded bool

	// RankedResults is the terminal output, written by the synthesis stage.
	RankedResults []models.RankedVenue
}

// NewState creates the plan state for one request.
func NewState(rawRequest string, memberLocations []models.GeoPoint) *State {
	return &State{
		RawRequest:      rawRequest,
		MemberLocations: memberLocations,
		ScorerOutputs:   make(map[string]map[string]models.ScoreRecord),
		Isochrones:      make(map[string]*geo.Isochrone),
		RiskFlags:       make(map[string][]models.RiskFlag),
	}
}

// Clone returns a copy of the state for handing to a stage. Top-level maps
// and slices are copied so a misbehaving stage cannot mutate the executor's
// copy in place; venue and score values are treated as immutable records.
func (s *State) Clone() *State {
	cp := *s
	cp.MemberLocations = append([]models.GeoPoint(nil), s.MemberLocations...)
	cp.ActiveAgents = append([]string(nil), s.ActiveAgents...)
	cp.CandidateVenues = append([]models.Venue(nil), s.CandidateVenues...)
	cp.RankedResults = append([]models.RankedVenue(nil), s.RankedResults...)

	cp.AgentWeights = copyMap(s.AgentWeights)
	cp.Isochrones = copyMap(s.Isochrones)

	cp.ScorerOutputs = make(map[string]map[string]models.ScoreRecord, len(s.ScorerOutputs))
	for name, scores := range s.ScorerOutputs {
		cp.ScorerOutputs[name] = copyMap(scores)
	}

	cp.RiskFlags = make(map[string][]models.RiskFlag, len(s.RiskFlags))
	for id, flags := range s.RiskFlags {
		cp.RiskFlags[id] = append([]models.RiskFlag(nil), flags...)
	}

	return &cp
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	cp := make(map[K]V, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Result reduces the terminal state to the client-facing plan result.
func (s *State) Result() *models.PlanResult {
	res := &models.PlanResult{
		Venues:  s.RankedResults,
		Retries: s.RetryCount,
	}
	if res.Venues == nil {
		res.Venues = []models.RankedVenue{}
	}
	if s.Degraded {
		res.Degraded = true
		res.VetoReason = s.VetoReason
	}
	return res
}

// ScorerOutput is one scorer's contribution for a pass: its namespace name
// and the per-venue records it produced.
type ScorerOutput struct {
	// Name is the scorer namespace (e.g., "vibe", "access", "cost").
	Name string
	// Scores maps venue id to the scorer's record. Venues the scorer could
	// not evaluate are simply absent.
	Scores map[string]models.ScoreRecord
}

// Delta is a stage's partial state update. Only the fields a stage owns may
// be set; the executor validates ownership before merging. Pointer fields
// distinguish "unset" from an intentional empty value.
type Delta struct {
	ParsedIntent   *models.Intent
	ComplexityTier models.ComplexityTier
	ActiveAgents   *[]string
	AgentWeights   map[string]float64

	CandidateVenues *[]models.Venue

	ScorerOutput *ScorerOutput
	Isochrones   map[string]*geo.Isochrone

	RiskFlags  map[string][]models.RiskFlag
	Veto       *bool
	VetoReason *string

	RankedResults *[]models.RankedVenue
}

// Keys returns the set of state keys this delta writes.
func (d Delta) Keys() []Key {
	var keys []Key
	if d.ParsedIntent != nil {
		keys = append(keys, KeyParsedIntent)
	}
	if d.ComplexityTier != "" {
		keys = append(keys, KeyComplexityTier)
	}
	if d.ActiveAgents != nil {
		keys = append(keys, KeyActiveAgents)
	}
	if d.AgentWeights != nil {
		keys = append(keys, KeyAgentWeights)
	}
	if d.CandidateVenues != nil {
		keys = append(keys, KeyCandidateVenues)
	}
	if d.ScorerOutput != nil {
		keys = append(keys, KeyScorerOutputs)
	}
	if d.Isochrones != nil {
		keys = append(keys, KeyIsochrones)
	}
	if d.RiskFlags != nil {
		keys = append(keys, KeyRiskFlags)
	}
	if d.Veto != nil {
		keys = append(keys, KeyVeto)
	}
	if d.VetoReason != nil {
		keys = append(keys, KeyVetoReason)
	}
	if d.RankedResults != nil {
		keys = append(keys, KeyRankedResults)
	}
	return keys
}

// apply merges a validated delta into the state. Scorer outputs are merged
// into the scorer's own namespace; everything else overwrites the owning
// stage's keys.
func (s *State) apply(d Delta) {
	if d.ParsedIntent != nil {
		s.ParsedIntent = *d.ParsedIntent
	}
	if d.ComplexityTier != "" {
		s.ComplexityTier = d.ComplexityTier
	}
	if d.ActiveAgents != nil {
		s.ActiveAgents = *d.ActiveAgents
	}
	if d.AgentWeights != nil {
		s.AgentWeights = d.AgentWeights
	}
	if d.CandidateVenues != nil {
		s.CandidateVenues = *d.CandidateVenues
	}
	if d.ScorerOutput != nil {
		if s.ScorerOutputs == nil {
			s.ScorerOutputs = make(map[string]map[string]models.ScoreRecord)
		}
		s.ScorerOutputs[d.ScorerOutput.Name] = d.ScorerOutput.Scores
	}
	if d.Isochrones != nil {
		if s.Isochrones == nil {
			s.Isochrones = make(map[string]*geo.Isochrone)
		}
		for id, iso := range d.Isochrones {
			s.Isochrones[id] = iso
		}
	}
	if d.RiskFlags != nil {
		s.RiskFlags = d.RiskFlags
	}
	if d.Veto != nil {
		s.Veto = *d.Veto
	}
	if d.VetoReason != nil {
		s.VetoReason = *d.VetoReason
	}
	if d.RankedResults != nil {
		s.RankedResults = *d.RankedResults
	}
}

// resetForRetry clears the discovery and scoring products before a retry
// traversal re-enters discovery. The parsed intent and retry count survive.
func (s *State) resetForRetry() {
	s.CandidateVenues = nil
	s.ScorerOutputs = make(map[string]map[string]models.ScoreRecord)
	s.Isochrones = make(map[string]*geo.Isochrone)
	s.RiskFlags = make(map[string][]models.RiskFlag)
	s.Veto = false
	// VetoReason survives so an exhausted retry budget can carry the last
	// objection into the degraded result.
}
