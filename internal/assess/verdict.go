package assess

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Severity levels attached to a verdict when a violation is found.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Verdict is the external contract of one assessment. Downstream report and
// email formatting pattern-match on these field names, so they must stay
// stable.
type Verdict struct {
	ViolationFound    bool       `json:"violation_found"`
	Message           string     `json:"message"`
	Confidence        Confidence `json:"confidence"`
	RecommendedAction string     `json:"recommended_action"`
	ViolatingObjects  []string   `json:"violating_objects,omitempty"`
	MatchingRules     []string   `json:"matching_rules,omitempty"`
	Severity          string     `json:"severity,omitempty"`
}

// Confidence is a float in [0,1] that tolerates the inconsistent shapes
// upstream backends produce: plain numbers, numeric strings, or objects with
// a value/score/confidence key. Anything unusable coerces to 0.
type Confidence float64

// UnmarshalJSON coerces the supported shapes into a clamped float.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		*c = clampConfidence(number)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			*c = clampConfidence(parsed)
			return nil
		}
		*c = 0
		return nil
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(data, &nested); err == nil {
		for _, key := range []string{"value", "score", "confidence"} {
			if raw, ok := nested[key]; ok {
				var v float64
				if err := json.Unmarshal(raw, &v); err == nil {
					*c = clampConfidence(v)
					return nil
				}
			}
		}
		// No known key; take the first numeric value.
		for _, raw := range nested {
			var v float64
			if err := json.Unmarshal(raw, &v); err == nil {
				*c = clampConfidence(v)
				return nil
			}
		}
	}

	*c = 0
	return nil
}

func clampConfidence(v float64) Confidence {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return Confidence(v)
}

// sanitize enforces the verdict invariants: a found violation always carries
// a message, a severity, and a positive confidence.
func sanitize(v Verdict) Verdict {
	v.Message = strings.TrimSpace(v.Message)
	v.RecommendedAction = strings.TrimSpace(v.RecommendedAction)
	v.Severity = strings.ToLower(strings.TrimSpace(v.Severity))
	switch v.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
	default:
		v.Severity = ""
	}
	if v.ViolationFound {
		if v.Message == "" {
			v.Message = "Potential policy violation detected."
		}
		if v.Severity == "" {
			v.Severity = SeverityMedium
		}
		if v.Confidence <= 0 {
			v.Confidence = 0.5
		}
		if v.RecommendedAction == "" {
			v.RecommendedAction = "Manual review recommended"
		}
	}
	return v
}
