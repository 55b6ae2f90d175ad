package assess

import (
	"encoding/json"
	"strings"
)

// parseResponse recovers a verdict from whatever the generative backend
// returned: a direct JSON parse, then the first-to-last brace span, then a
// keyword scan over the raw text. It never fails; the worst case is a
// medium-severity manual-review verdict wrapping the raw text.
func parseResponse(content string) Verdict {
	content = stripFences(content)

	if verdict, ok := tryJSON(content); ok {
		return sanitize(verdict)
	}

	if span := braceSpan(content); span != "" && span != content {
		if verdict, ok := tryJSON(span); ok {
			return sanitize(verdict)
		}
	}

	return sanitize(heuristicVerdict(content))
}

func tryJSON(content string) (Verdict, bool) {
	var verdict Verdict
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return Verdict{}, false
	}
	return verdict, true
}

// braceSpan returns the widest {...} span in the text, greedy on both ends.
func braceSpan(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

// stripFences removes a surrounding markdown code fence when present.
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexRune(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// heuristicVerdict is the last-resort text scan for responses with no
// parseable JSON at all.
func heuristicVerdict(content string) Verdict {
	lower := strings.ToLower(content)
	found := strings.Contains(lower, "violation") ||
		strings.Contains(lower, "prohibited") ||
		strings.Contains(lower, "not allowed")

	return Verdict{
		ViolationFound:    found,
		Message:           content,
		Confidence:        0.5,
		RecommendedAction: "Manual review recommended",
		Severity:          SeverityMedium,
	}
}
