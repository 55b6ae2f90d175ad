package report

import (
	"fmt"
	"strings"

	"hall-compliance/internal/assess"
)

// Summarize renders a verdict as the plain-text block used in reports and
// notice emails.
func Summarize(verdict assess.Verdict) string {
	if !verdict.ViolationFound {
		if verdict.Message != "" {
			return verdict.Message
		}
		return "No violations detected."
	}

	parts := []string{"POLICY VIOLATION DETECTED"}

	if len(verdict.ViolatingObjects) > 0 {
		parts = append(parts, fmt.Sprintf("Violating objects: %s", strings.Join(verdict.ViolatingObjects, ", ")))
	}
	if len(verdict.MatchingRules) > 0 {
		shown := verdict.MatchingRules
		if len(shown) > 2 {
			shown = shown[:2]
		}
		parts = append(parts, fmt.Sprintf("Policy rules violated: %s", strings.Join(shown, ", ")))
	}

	severity := verdict.Severity
	if severity == "" {
		severity = assess.SeverityMedium
	}
	parts = append(parts, fmt.Sprintf("Severity: %s", strings.ToUpper(severity)))
	parts = append(parts, fmt.Sprintf("Confidence: %.1f%%", float64(verdict.Confidence)*100))

	action := verdict.RecommendedAction
	if action == "" {
		action = "Review required"
	}
	parts = append(parts, fmt.Sprintf("Recommended action: %s", action))

	return strings.Join(parts, "\n")
}
