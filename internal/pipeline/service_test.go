package pipeline

import (
	"context"
	"image"
	"strings"
	"testing"
	"time"

	"hall-compliance/internal/assess"
	"hall-compliance/internal/index"
	"hall-compliance/internal/vision"
)

func newTestService(t *testing.T, logits map[string]float64) *Service {
	t.Helper()
	idx, err := index.NewKeywordIndex(nil)
	if err != nil {
		t.Fatal(err)
	}
	detector := vision.NewDetector(&vision.StaticBackend{Logits: logits, Baseline: -10})
	assessor := assess.NewAssessor(nil, time.Second)
	return New(detector, idx, assessor, nil, 0.3)
}

func TestReportFlagsContraband(t *testing.T) {
	service := newTestService(t, map[string]float64{"microwave": 10})
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))

	report := service.Report(context.Background(), img, "handbook",
		"Microwaves are prohibited in all rooms. Quiet hours must be observed after 10 PM.")

	if len(report.ImageAnalysis.DetectedObjects) == 0 {
		t.Fatal("expected detected objects")
	}
	if report.ImageAnalysis.DetectedObjects[0].Label != "microwave" {
		t.Fatalf("expected microwave first, got %q", report.ImageAnalysis.DetectedObjects[0].Label)
	}
	if !report.ImageAnalysis.Summary.ViolationDetected {
		t.Fatal("detection summary should flag the violation")
	}
	if report.ImageAnalysis.Context.RoomType != "standard room" {
		t.Fatalf("unexpected room type: %q", report.ImageAnalysis.Context.RoomType)
	}

	if report.PolicyAnalysis.Summary.TotalRules == 0 {
		t.Fatal("policy text should have produced rules")
	}

	if !report.Verdict.ViolationFound {
		t.Fatal("expected violation verdict")
	}
	if report.Verdict.Severity != assess.SeverityCritical {
		t.Fatalf("expected critical severity got %q", report.Verdict.Severity)
	}
	if len(report.Verdict.ViolatingObjects) != 1 || report.Verdict.ViolatingObjects[0] != "microwave" {
		t.Fatalf("unexpected violating objects: %v", report.Verdict.ViolatingObjects)
	}
	if report.ComplianceStatus != "non_compliant" {
		t.Fatalf("expected non_compliant got %q", report.ComplianceStatus)
	}
}

func TestReportNoDetections(t *testing.T) {
	// Uniform logits leave every label below the 0.3 threshold.
	service := newTestService(t, nil)
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))

	report := service.Report(context.Background(), img, "handbook", "")

	if len(report.ImageAnalysis.DetectedObjects) != 0 {
		t.Fatalf("expected no detections, got %d", len(report.ImageAnalysis.DetectedObjects))
	}
	if report.Verdict.ViolationFound {
		t.Fatal("no detections should be compliant")
	}
	if report.Verdict.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0 got %f", float64(report.Verdict.Confidence))
	}
	if report.ComplianceStatus != "compliant" {
		t.Fatalf("expected compliant got %q", report.ComplianceStatus)
	}
}

func TestIndexPolicyAndSearch(t *testing.T) {
	service := newTestService(t, nil)
	ctx := context.Background()

	summary, err := service.IndexPolicy(ctx, "handbook",
		"Microwaves are prohibited in all rooms. Pets are not allowed in the building.")
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalRules == 0 {
		t.Fatal("expected rules from policy text")
	}
	if summary.Categories["Pet Policy"] != 1 {
		t.Fatalf("unexpected category counts: %v", summary.Categories)
	}

	matches, err := service.SearchRules(ctx, "pets allowed building", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Fatal("expected search matches")
	}
	if !strings.Contains(matches[0].Rule.Text, "Pets") {
		t.Fatalf("unexpected top match: %q", matches[0].Rule.Text)
	}

	if err := service.ClearRules(ctx); err != nil {
		t.Fatal(err)
	}
	matches, err = service.SearchRules(ctx, "pets allowed building", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches after clear, got %d", len(matches))
	}
}

func TestIndexPolicyNoRules(t *testing.T) {
	service := newTestService(t, nil)

	summary, err := service.IndexPolicy(context.Background(), "handbook", "Welcome to your new home!")
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalRules != 0 {
		t.Fatalf("expected empty summary got %+v", summary)
	}
	if summary.Categories == nil {
		t.Fatal("categories map should be non-nil")
	}
}

func TestAssessObjectsWithoutRules(t *testing.T) {
	service := newTestService(t, nil)
	objects := []vision.DetectedObject{
		{Label: "lamp", Confidence: 0.8, Category: "Furniture"},
	}

	verdict := service.AssessObjects(context.Background(), objects, nil)
	if verdict.ViolationFound {
		t.Fatal("benign object without rules should not be a violation")
	}
	if verdict.RecommendedAction != "Upload policy document for assessment" {
		t.Fatalf("unexpected action: %q", verdict.RecommendedAction)
	}
}

func TestCheckObjectContraband(t *testing.T) {
	service := newTestService(t, nil)

	verdict := service.CheckObject(context.Background(), "candle", "", 0.9)
	if !verdict.ViolationFound {
		t.Fatal("candle spot check should be a violation")
	}
	if verdict.Severity != assess.SeverityCritical {
		t.Fatalf("expected critical severity got %q", verdict.Severity)
	}
	if len(verdict.MatchingRules) == 0 || !strings.Contains(verdict.MatchingRules[0], "Fire safety policy") {
		t.Fatalf("expected fire safety policy cited: %v", verdict.MatchingRules)
	}
}

func TestHistoryWithoutDatabase(t *testing.T) {
	service := newTestService(t, nil)
	assessments, err := service.History(10)
	if err != nil {
		t.Fatal(err)
	}
	if assessments != nil {
		t.Fatalf("expected no history without a database, got %v", assessments)
	}
}
