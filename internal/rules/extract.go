package rules

import (
	"regexp"
	"strings"

	"hall-compliance/internal/textproc"
)

const (
	chunkSize    = 500
	chunkOverlap = 100
	minRuleLen   = 20
)

// cuePatterns are scanned in order against every chunk. Each matches a clause
// that opens with a trigger phrase and runs to the next period.
var cuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:prohibited|not allowed|forbidden|banned|restricted)[^.]*\.`),
	regexp.MustCompile(`(?i)(?:violation|violate|against policy)[^.]*\.`),
	regexp.MustCompile(`(?i)(?:must not|cannot|shall not|may not)[^.]*\.`),
	regexp.MustCompile(`(?i)(?:required|mandatory|must)[^.]*\.`),
	regexp.MustCompile(`(?i)(?:safety|fire|security)[^.]*\.`),
	regexp.MustCompile(`(?i)(?:appliance|equipment|device)[^.]*\.`),
	regexp.MustCompile(`(?i)(?:pet|animal|pet policy)[^.]*\.`),
	regexp.MustCompile(`(?i)(?:alcohol|drinking|beverage)[^.]*\.`),
	regexp.MustCompile(`(?i)(?:smoking|tobacco|vape)[^.]*\.`),
	regexp.MustCompile(`(?i)(?:candle|flame|fire|burning)[^.]*\.`),
}

var whitespace = regexp.MustCompile(`\s+`)

// Extract scans policy text for rule-like sentences. The text is chunked with
// overlap so clauses straddling a window boundary are still seen whole;
// duplicates introduced by the overlap are removed on normalized text,
// preserving first-seen order. Empty input yields no drafts.
func Extract(text string) []Draft {
	text = textproc.Clean(text)
	if text == "" {
		return nil
	}

	chunks := textproc.Chunk(text, chunkSize, chunkOverlap)

	var drafts []Draft
	seen := make(map[string]struct{})
	for i, chunk := range chunks {
		for _, pattern := range cuePatterns {
			for _, match := range pattern.FindAllString(chunk, -1) {
				ruleText := strings.TrimSpace(match)
				if len(ruleText) <= minRuleLen {
					continue
				}
				key := NormalizeText(ruleText)
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				drafts = append(drafts, Draft{
					Text:       ruleText,
					ChunkIndex: i,
					Pattern:    pattern.String(),
				})
			}
		}
	}
	return drafts
}

// NormalizeText lowercases and collapses whitespace so case and spacing
// variants of the same sentence dedupe to one rule.
func NormalizeText(text string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}
