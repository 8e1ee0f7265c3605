package models

// ComplexityTier classifies how much analysis a request warrants.
type ComplexityTier string

const (
	// TierSimple covers direct requests with an obvious answer.
	TierSimple ComplexityTier = "tier_1"
	// TierStandard covers typical group planning requests.
	TierStandard ComplexityTier = "tier_2"
	// TierComplex covers ambiguous or multi-constraint requests.
	TierComplex ComplexityTier = "tier_3"
)

// Valid returns true if the tier is a known value.
func (t ComplexityTier) Valid() bool {
	switch t {
	case TierSimple, TierStandard, TierComplex:
		return true
	default:
		return false
	}
}

// Intent is the structured interpretation of a raw plan request.
type Intent struct {
	// Activity is the kind of activity requested (e.g., "basketball").
	Activity string `json:"activity"`
	// GroupSize is the number of people in the group.
	GroupSize int `json:"group_size"`
	// Budget is the budget band: "low", "medium", or "high".
	Budget string `json:"budget"`
	// Location is the area the group wants to meet in.
	Location string `json:"location"`
	// Vibe describes the desired atmosphere (e.g., "aesthetic", "chill").
	Vibe string `json:"vibe"`
	// When is the requested time expression, if any.
	When string `json:"when,omitempty"`
}

// IsZero returns true if no intent fields were extracted.
func (i Intent) IsZero() bool {
	return i.Activity == "" && i.GroupSize == 0 && i.Budget == "" &&
		i.Location == "" && i.Vibe == "" && i.When == ""
}
