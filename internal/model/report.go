package model

import "strconv"

// Recommendation is one ranked land-use suggestion from the external
// recommendation component. Score is kept opaque (number or string) because
// upstream rankers disagree about its type.
type Recommendation struct {
	Type        string `json:"type,omitempty"`
	UsageType   string `json:"usage_type,omitempty"`
	Score       any    `json:"score,omitempty"`
	Description string `json:"description,omitempty"`
}

// Usage returns the recommendation's land-use label, preferring Type.
func (r Recommendation) Usage() string {
	if r.Type != "" {
		return r.Type
	}
	return r.UsageType
}

// ScoreValue parses the opaque score as a float. ok is false when the score
// is absent or non-numeric.
func (r Recommendation) ScoreValue() (float64, bool) {
	switch t := r.Score.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Report is the synthesized site-utilization report. Produced fresh per
// request; never cached.
type Report struct {
	Summary  string   `json:"summary"`
	Insights []string `json:"insights"`
	Actions  []string `json:"actions"`
}
