package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"strings"

	"github.com/sirupsen/logrus"

	"hall-compliance/internal/assess"
	"hall-compliance/internal/index"
	"hall-compliance/internal/rules"
	"hall-compliance/internal/store"
	"hall-compliance/internal/vision"
)

const rulesPerObject = 2

// Service runs the full compliance pipeline for one (image, policy) pair:
// image scoring, rule extraction and indexing, per-object rule retrieval,
// and assessment. Constructed once at process start and shared by handlers.
type Service struct {
	detector  *vision.Detector
	ruleIndex index.Index
	assessor  *assess.Assessor
	db        *store.Database
	threshold float64
}

// New wires the pipeline. db may be nil to skip assessment persistence.
func New(detector *vision.Detector, ruleIndex index.Index, assessor *assess.Assessor, db *store.Database, threshold float64) *Service {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.3
	}
	return &Service{
		detector:  detector,
		ruleIndex: ruleIndex,
		assessor:  assessor,
		db:        db,
		threshold: threshold,
	}
}

// ImageAnalysis is the detection side of a compliance report.
type ImageAnalysis struct {
	DetectedObjects []vision.DetectedObject `json:"detected_objects"`
	Summary         vision.Summary          `json:"detection_summary"`
	Context         vision.Context          `json:"image_context"`
}

// PolicyAnalysis is the rule side of a compliance report.
type PolicyAnalysis struct {
	Summary       rules.Summary `json:"policy_summary"`
	RelevantRules []index.Match `json:"relevant_rules"`
}

// ComplianceReport combines both sides with the verdict.
type ComplianceReport struct {
	ImageAnalysis    ImageAnalysis  `json:"image_analysis"`
	PolicyAnalysis   PolicyAnalysis `json:"policy_analysis"`
	Verdict          assess.Verdict `json:"violation_assessment"`
	ComplianceStatus string         `json:"compliance_status"`
}

// IndexPolicy extracts rules from policy text and indexes them under the
// document name, replacing any prior rules for that name. Unreadable or
// rule-free text yields an empty summary, not an error.
func (s *Service) IndexPolicy(ctx context.Context, documentName, policyText string) (rules.Summary, error) {
	drafts := rules.Extract(policyText)
	if len(drafts) == 0 {
		logrus.WithField("document", documentName).Info("no policy rules found")
		return rules.Summary{Categories: map[string]int{}}, nil
	}

	indexed, err := s.ruleIndex.Index(ctx, documentName, drafts)
	if err != nil {
		return rules.Summary{}, fmt.Errorf("index policy rules: %w", err)
	}
	if !indexed {
		return rules.Summary{Categories: map[string]int{}}, nil
	}
	return rules.Summarize(len(policyText), rules.Tag(documentName, drafts)), nil
}

// SearchRules queries the rule index directly.
func (s *Service) SearchRules(ctx context.Context, query string, k int) ([]index.Match, error) {
	return s.ruleIndex.Search(ctx, query, k)
}

// ClearRules wipes the rule index.
func (s *Service) ClearRules(ctx context.Context) error {
	return s.ruleIndex.Clear(ctx)
}

// Report runs the full pipeline. policyText may be empty when a document was
// indexed earlier; detection and assessment failures degrade to error
// verdicts rather than surfacing as errors.
func (s *Service) Report(ctx context.Context, img image.Image, documentName, policyText string) ComplianceReport {
	imageContext := vision.AnalyzeContext(img)

	objects, err := s.detector.Detect(ctx, img, s.threshold)
	if err != nil {
		logrus.WithError(err).Error("image scoring failed")
		verdict := assess.ErrorVerdict(fmt.Sprintf("image scoring failed: %v", err))
		s.persist(verdict, nil, imageContext.RoomType)
		return ComplianceReport{
			ImageAnalysis:    ImageAnalysis{Summary: vision.Summarize(nil), Context: imageContext},
			PolicyAnalysis:   PolicyAnalysis{Summary: rules.Summary{Categories: map[string]int{}}},
			Verdict:          verdict,
			ComplianceStatus: statusFor(verdict),
		}
	}

	var policySummary rules.Summary
	if strings.TrimSpace(policyText) != "" {
		policySummary, err = s.IndexPolicy(ctx, documentName, policyText)
		if err != nil {
			logrus.WithError(err).Error("policy indexing failed")
			policySummary = rules.Summary{Categories: map[string]int{}}
		}
	}

	relevant := s.retrieveRules(ctx, objects)

	verdict := s.assessor.Assess(ctx, objects, matchRules(relevant), &imageContext)
	s.persist(verdict, objects, imageContext.RoomType)

	return ComplianceReport{
		ImageAnalysis: ImageAnalysis{
			DetectedObjects: objects,
			Summary:         vision.Summarize(objects),
			Context:         imageContext,
		},
		PolicyAnalysis: PolicyAnalysis{
			Summary:       policySummary,
			RelevantRules: relevant,
		},
		Verdict:          verdict,
		ComplianceStatus: statusFor(verdict),
	}
}

// AssessObjects assesses caller-supplied detections against the current
// index, retrieving rules per object.
func (s *Service) AssessObjects(ctx context.Context, objects []vision.DetectedObject, imageContext *vision.Context) assess.Verdict {
	relevant := s.retrieveRules(ctx, objects)
	verdict := s.assessor.Assess(ctx, objects, matchRules(relevant), imageContext)
	roomType := ""
	if imageContext != nil {
		roomType = imageContext.RoomType
	}
	s.persist(verdict, objects, roomType)
	return verdict
}

// CheckObject is the single-object spot check: retrieve the rules closest to
// "label category" and assess just that object.
func (s *Service) CheckObject(ctx context.Context, label, category string, confidence float64) assess.Verdict {
	if category == "" {
		category = vision.CategorizeLabel(label)
	}
	object := vision.DetectedObject{Label: label, Confidence: confidence, Category: category}

	matches, err := s.ruleIndex.Search(ctx, label+" "+category, 3)
	if err != nil {
		logrus.WithError(err).Warn("rule retrieval failed for spot check")
	}
	verdict := s.assessor.Assess(ctx, []vision.DetectedObject{object}, matchRules(matches), nil)
	s.persist(verdict, []vision.DetectedObject{object}, "")
	return verdict
}

// History returns recently persisted assessments.
func (s *Service) History(limit int) ([]store.Assessment, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.RecentAssessments(limit)
}

// retrieveRules runs one index query per detected object and merges the
// results, dropping duplicate rules across objects.
func (s *Service) retrieveRules(ctx context.Context, objects []vision.DetectedObject) []index.Match {
	var merged []index.Match
	seen := make(map[string]struct{})
	for _, obj := range objects {
		matches, err := s.ruleIndex.Search(ctx, obj.Label+" "+obj.Category, rulesPerObject)
		if err != nil {
			logrus.WithError(err).WithField("object", obj.Label).Warn("rule retrieval failed")
			continue
		}
		for _, match := range matches {
			key := rules.NormalizeText(match.Rule.Text)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, match)
		}
	}
	return merged
}

func (s *Service) persist(verdict assess.Verdict, objects []vision.DetectedObject, roomType string) {
	if s.db == nil {
		return
	}
	record := store.Assessment{
		ViolationFound:    verdict.ViolationFound,
		Message:           verdict.Message,
		Confidence:        float64(verdict.Confidence),
		RecommendedAction: verdict.RecommendedAction,
		Severity:          verdict.Severity,
		RoomType:          roomType,
	}
	record.SetViolatingObjects(verdict.ViolatingObjects)
	record.SetMatchingRules(verdict.MatchingRules)
	if len(objects) > 0 {
		if payload, err := json.Marshal(objects); err == nil {
			record.DetectedObjectsJSON = string(payload)
		}
	}
	if err := s.db.SaveAssessment(&record); err != nil {
		logrus.WithError(err).Warn("persist assessment")
	}
}

func matchRules(matches []index.Match) []rules.Rule {
	out := make([]rules.Rule, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.Rule)
	}
	return out
}

func statusFor(verdict assess.Verdict) string {
	if verdict.ViolationFound {
		return "non_compliant"
	}
	return "compliant"
}
