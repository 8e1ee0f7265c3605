package models

// RankedVenue is one entry in the final ranked recommendation.
type RankedVenue struct {
	// Rank is the 1-based position in the ranking.
	Rank int `json:"rank"`
	// Venue is the recommended venue.
	Venue Venue `json:"venue"`
	// Score is the composite score across all contributing scorers.
	Score float64 `json:"score"`
	// Why summarizes why this venue ranked where it did.
	Why string `json:"why"`
	// WatchOut lists caveats drawn from risk flags, if any.
	WatchOut string `json:"watch_out,omitempty"`
	// Contributions maps scorer name to that scorer's score for this venue.
	// Scorers that produced no record for the venue are absent, not zero.
	Contributions map[string]float64 `json:"contributions,omitempty"`
}

// PlanResult is the terminal output of one pipeline run.
type PlanResult struct {
	// Venues is the ranked recommendation, possibly empty.
	Venues []RankedVenue `json:"venues"`
	// Degraded is true when the retry budget was exhausted with the
	// reviewer still objecting; the result is best-available.
	Degraded bool `json:"degraded,omitempty"`
	// VetoReason carries the reviewer's objection when Degraded is set.
	VetoReason string `json:"veto_reason,omitempty"`
	// Retries is the number of discovery retries that were taken.
	Retries int `json:"retries,omitempty"`
}
