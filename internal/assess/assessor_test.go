package assess

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"hall-compliance/internal/rules"
	"hall-compliance/internal/vision"
)

type fakeGenerator struct {
	enabled  bool
	response string
	err      error
	prompt   string
}

func (f *fakeGenerator) Enabled() bool { return f.enabled }

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func sampleRules() []rules.Rule {
	return []rules.Rule{
		{ID: "handbook_0", Text: "Microwaves are prohibited in all rooms.", Category: "Appliance Policy"},
		{ID: "handbook_1", Text: "Quiet hours begin at {10} PM.", Category: "Noise Policy"},
	}
}

func TestAssessNoObjects(t *testing.T) {
	assessor := NewAssessor(nil, time.Second)
	verdict := assessor.Assess(context.Background(), nil, sampleRules(), nil)
	if verdict.ViolationFound {
		t.Fatal("no objects should never be a violation")
	}
	if verdict.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0 got %f", float64(verdict.Confidence))
	}
	if verdict.RecommendedAction != "No action required" {
		t.Fatalf("unexpected action: %q", verdict.RecommendedAction)
	}
}

func TestAssessContrabandFastPath(t *testing.T) {
	// The contraband path runs before rule retrieval, so it fires even with
	// no rules and no generator.
	assessor := NewAssessor(nil, time.Second)
	objects := []vision.DetectedObject{
		{Label: "knife", Confidence: 0.9, Category: "Weapon Violation"},
	}

	verdict := assessor.Assess(context.Background(), objects, nil, nil)
	if !verdict.ViolationFound {
		t.Fatal("expected contraband violation")
	}
	if verdict.Severity != SeverityCritical {
		t.Fatalf("expected critical severity got %q", verdict.Severity)
	}
	if verdict.Confidence != 0.99 {
		t.Fatalf("expected confidence 0.99 got %f", float64(verdict.Confidence))
	}
	if len(verdict.ViolatingObjects) != 1 || verdict.ViolatingObjects[0] != "knife" {
		t.Fatalf("unexpected violating objects: %v", verdict.ViolatingObjects)
	}
	if !strings.Contains(verdict.Message, "CRITICAL POLICY VIOLATION DETECTED") {
		t.Fatalf("unexpected message: %q", verdict.Message)
	}
}

func TestAssessNoRules(t *testing.T) {
	assessor := NewAssessor(nil, time.Second)
	objects := []vision.DetectedObject{
		{Label: "lamp", Confidence: 0.7, Category: "Furniture"},
	}

	verdict := assessor.Assess(context.Background(), objects, nil, nil)
	if verdict.ViolationFound {
		t.Fatal("benign object without rules should not be a violation")
	}
	if verdict.Confidence != 0.0 {
		t.Fatalf("expected confidence 0.0 got %f", float64(verdict.Confidence))
	}
	if verdict.RecommendedAction != "Upload policy document for assessment" {
		t.Fatalf("unexpected action: %q", verdict.RecommendedAction)
	}
}

func TestAssessGeneratorDisabled(t *testing.T) {
	assessor := NewAssessor(&fakeGenerator{enabled: false}, time.Second)
	objects := []vision.DetectedObject{
		{Label: "lamp", Confidence: 0.7, Category: "Furniture"},
	}

	verdict := assessor.Assess(context.Background(), objects, sampleRules(), nil)
	if verdict.ViolationFound {
		t.Fatal("disabled backend must not report a violation")
	}
	if !strings.HasPrefix(verdict.Message, "Error during assessment:") {
		t.Fatalf("unexpected message: %q", verdict.Message)
	}
	if verdict.RecommendedAction != "Manual review required" {
		t.Fatalf("unexpected action: %q", verdict.RecommendedAction)
	}
}

func TestAssessGeneratorError(t *testing.T) {
	generator := &fakeGenerator{enabled: true, err: errors.New("upstream timeout")}
	assessor := NewAssessor(generator, time.Second)
	objects := []vision.DetectedObject{
		{Label: "poster", Confidence: 0.6, Category: "Decorations"},
	}

	verdict := assessor.Assess(context.Background(), objects, sampleRules(), nil)
	if verdict.ViolationFound {
		t.Fatal("backend errors must degrade to a non-violation")
	}
	if !strings.Contains(verdict.Message, "upstream timeout") {
		t.Fatalf("expected error propagated into message, got %q", verdict.Message)
	}
	if verdict.Confidence != 0.0 {
		t.Fatalf("expected confidence 0.0 got %f", float64(verdict.Confidence))
	}
}

func TestAssessParsesJSONResponse(t *testing.T) {
	generator := &fakeGenerator{
		enabled: true,
		response: `{"violation_found": true, "message": "Space heater violates appliance policy.",
			"confidence": 0.87, "recommended_action": "Remove the heater", "severity": "high",
			"violating_objects": ["space heater"]}`,
	}
	assessor := NewAssessor(generator, time.Second)
	objects := []vision.DetectedObject{
		{Label: "space heater", Confidence: 0.8, Category: "Appliance Violation"},
	}

	verdict := assessor.Assess(context.Background(), objects, sampleRules(), &vision.Context{RoomType: "standard room"})
	if !verdict.ViolationFound {
		t.Fatal("expected violation from backend response")
	}
	if verdict.Severity != SeverityHigh {
		t.Fatalf("expected high severity got %q", verdict.Severity)
	}
	if verdict.Confidence != 0.87 {
		t.Fatalf("expected confidence 0.87 got %f", float64(verdict.Confidence))
	}

	// Prompt carries objects, rules, and the room hint; rule braces are escaped.
	if !strings.Contains(generator.prompt, "space heater") {
		t.Fatal("prompt missing detected object")
	}
	if !strings.Contains(generator.prompt, "Microwaves are prohibited in all rooms.") {
		t.Fatal("prompt missing policy rule")
	}
	if !strings.Contains(generator.prompt, "{{10}}") {
		t.Fatal("prompt did not escape braces in rule text")
	}
	if !strings.Contains(generator.prompt, "Image Context: standard room") {
		t.Fatal("prompt missing image context")
	}
}

func TestAssessMalformedResponseFallsBack(t *testing.T) {
	generator := &fakeGenerator{
		enabled:  true,
		response: "The space heater is prohibited by the appliance rules in the handbook.",
	}
	assessor := NewAssessor(generator, time.Second)
	objects := []vision.DetectedObject{
		{Label: "space heater", Confidence: 0.8, Category: "Appliance Violation"},
	}

	verdict := assessor.Assess(context.Background(), objects, sampleRules(), nil)
	if !verdict.ViolationFound {
		t.Fatal("keyword heuristic should flag prohibition language")
	}
	if verdict.Confidence != 0.5 {
		t.Fatalf("expected fallback confidence 0.5 got %f", float64(verdict.Confidence))
	}
	if verdict.Severity != SeverityMedium {
		t.Fatalf("expected medium severity got %q", verdict.Severity)
	}
}

func TestParseResponseFencedJSON(t *testing.T) {
	content := "```json\n{\"violation_found\": true, \"message\": \"Candle found.\", \"confidence\": 0.9, \"recommended_action\": \"Remove it\", \"severity\": \"high\"}\n```"
	verdict := parseResponse(content)
	if !verdict.ViolationFound || verdict.Severity != SeverityHigh {
		t.Fatalf("fenced JSON not parsed: %+v", verdict)
	}
}

func TestParseResponseBraceSpan(t *testing.T) {
	content := `Here is my assessment: {"violation_found": false, "message": "All clear.", "confidence": 0.95, "recommended_action": "No action required"} Let me know if you need more.`
	verdict := parseResponse(content)
	if verdict.ViolationFound {
		t.Fatalf("expected no violation: %+v", verdict)
	}
	if verdict.Message != "All clear." {
		t.Fatalf("brace span not extracted: %q", verdict.Message)
	}
}

func TestConfidenceCoercion(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected float64
	}{
		{"number", `0.75`, 0.75},
		{"string", `"0.6"`, 0.6},
		{"padded string", `" 0.4 "`, 0.4},
		{"nested value", `{"value": 0.8}`, 0.8},
		{"nested score", `{"score": 0.3}`, 0.3},
		{"nested confidence", `{"confidence": 0.9}`, 0.9},
		{"nested unknown key", `{"likelihood": 0.2}`, 0.2},
		{"clamped high", `1.7`, 1},
		{"clamped negative", `-0.5`, 0},
		{"garbage string", `"very likely"`, 0},
		{"null", `null`, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c Confidence
			if err := json.Unmarshal([]byte(tc.payload), &c); err != nil {
				t.Fatal(err)
			}
			if float64(c) != tc.expected {
				t.Fatalf("expected %f got %f", tc.expected, float64(c))
			}
		})
	}
}

func TestSanitizeViolationDefaults(t *testing.T) {
	verdict := sanitize(Verdict{ViolationFound: true, Severity: "EXTREME"})
	if verdict.Message == "" {
		t.Fatal("found violation must carry a message")
	}
	if verdict.Severity != SeverityMedium {
		t.Fatalf("unknown severity should default to medium, got %q", verdict.Severity)
	}
	if verdict.Confidence != 0.5 {
		t.Fatalf("zero confidence should default to 0.5, got %f", float64(verdict.Confidence))
	}
	if verdict.RecommendedAction == "" {
		t.Fatal("found violation must carry an action")
	}
}

func TestNormalizeObjectsClamps(t *testing.T) {
	objects := normalizeObjects([]vision.DetectedObject{
		{Label: "lamp", Confidence: 1.4},
		{Label: "desk", Confidence: -0.2},
	})
	if objects[0].Confidence != 1 || objects[1].Confidence != 0 {
		t.Fatalf("confidences not clamped: %+v", objects)
	}
}
