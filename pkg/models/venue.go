package models

// Venue represents a candidate venue discovered for a plan request.
type Venue struct {
	// ID is the unique identifier for this venue (provider id or generated).
	ID string `json:"venue_id"`
	// Name is the display name of the venue.
	Name string `json:"name"`
	// Lat is the latitude of the venue.
	Lat float64 `json:"lat"`
	// Lng is the longitude of the venue.
	Lng float64 `json:"lng"`
	// Category is the venue category (e.g., "cafe", "sports_court").
	Category string `json:"category"`
	// Address is the formatted street address, if known.
	Address string `json:"address,omitempty"`
	// Website is the venue website URL, if known.
	Website string `json:"website,omitempty"`
	// Rating is the provider rating (0 when unknown).
	Rating float64 `json:"rating,omitempty"`
}

// ScoreRecord holds one scorer's verdict for one venue.
// Scores are normalized to the 0.0-1.0 range.
type ScoreRecord struct {
	// Score is the normalized score for the venue.
	Score float64 `json:"score"`
	// Rationale is a short human-readable explanation of the score.
	Rationale string `json:"rationale,omitempty"`
	// Metrics carries scorer-specific numbers (e.g., distance_km, avg_travel_min).
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// NeutralScore is the score assigned when a scorer cannot evaluate a venue
// but still wants to contribute a well-formed record.
const NeutralScore = 0.5

// NeutralScoreRecord returns a neutral default record with the given rationale.
func NeutralScoreRecord(rationale string) ScoreRecord {
	return ScoreRecord{Score: NeutralScore, Rationale: rationale}
}

// RiskFlag describes one real-world risk identified for a venue.
type RiskFlag struct {
	// Type is the risk category: "weather", "event", or "history".
	Type string `json:"type"`
	// Severity is one of "high", "medium", or "low".
	Severity string `json:"severity"`
	// Detail explains the risk.
	Detail string `json:"detail"`
}

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
