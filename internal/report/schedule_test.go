package report

import (
	"strings"
	"testing"
	"time"

	"hall-compliance/internal/assess"
)

func TestNextBusinessDay(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected time.Time
	}{
		{
			"monday to tuesday",
			time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC),
		},
		{
			"friday skips to monday",
			time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
		},
		{
			"saturday skips to monday",
			time.Date(2024, 3, 9, 9, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
		},
		{
			"sunday to monday",
			time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NextBusinessDay(tc.now)
			if !got.Equal(tc.expected) {
				t.Fatalf("expected %v got %v", tc.expected, got)
			}
			if got.Weekday() == time.Saturday || got.Weekday() == time.Sunday {
				t.Fatalf("landed on a weekend: %v", got.Weekday())
			}
		})
	}
}

func TestFormatMeeting(t *testing.T) {
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	got := FormatMeeting(day)
	if got != "Monday, March 11, 2024 at 2:00 PM" {
		t.Fatalf("unexpected format: %q", got)
	}
}

func TestSummarizeNoViolation(t *testing.T) {
	got := Summarize(assess.Verdict{Message: "No objects detected that require policy assessment."})
	if got != "No objects detected that require policy assessment." {
		t.Fatalf("unexpected summary: %q", got)
	}
	if Summarize(assess.Verdict{}) != "No violations detected." {
		t.Fatal("empty verdict should use default message")
	}
}

func TestSummarizeViolation(t *testing.T) {
	verdict := assess.Verdict{
		ViolationFound:    true,
		Message:           "Contraband found.",
		Confidence:        0.99,
		RecommendedAction: "IMMEDIATE REMOVAL REQUIRED - Contact campus security immediately",
		ViolatingObjects:  []string{"knife", "candle"},
		MatchingRules:     []string{"rule one", "rule two", "rule three"},
		Severity:          assess.SeverityCritical,
	}

	got := Summarize(verdict)
	if !strings.HasPrefix(got, "POLICY VIOLATION DETECTED") {
		t.Fatalf("missing header: %q", got)
	}
	if !strings.Contains(got, "knife, candle") {
		t.Fatalf("missing objects: %q", got)
	}
	if strings.Contains(got, "rule three") {
		t.Fatal("should show at most two rules")
	}
	if !strings.Contains(got, "Severity: CRITICAL") {
		t.Fatalf("missing severity: %q", got)
	}
	if !strings.Contains(got, "Confidence: 99.0%") {
		t.Fatalf("missing confidence: %q", got)
	}
	if !strings.Contains(got, "Contact campus security") {
		t.Fatalf("missing action: %q", got)
	}
}
