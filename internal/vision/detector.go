package vision

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// DetectedObject is one vocabulary label the scorer ranked above threshold.
type DetectedObject struct {
	Label      string  `json:"object"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category"`
}

// Backend computes an image-to-text similarity score for every label, in
// label order. Scores are raw logits; the detector normalizes them.
type Backend interface {
	Scores(ctx context.Context, img image.Image, labels []string) ([]float64, error)
}

// Detector ranks a closed label vocabulary against an image.
type Detector struct {
	backend    Backend
	vocabulary []string
}

// NewDetector builds a detector over the full label vocabulary.
func NewDetector(backend Backend) *Detector {
	return &Detector{backend: backend, vocabulary: Vocabulary()}
}

// Detect scores the image against every vocabulary label, softmax-normalizes
// the scores, and returns the labels at or above threshold in descending
// confidence. A nil image yields no detections.
func (d *Detector) Detect(ctx context.Context, img image.Image, threshold float64) ([]DetectedObject, error) {
	if img == nil {
		return nil, nil
	}
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}

	logits, err := d.backend.Scores(ctx, img, d.vocabulary)
	if err != nil {
		return nil, fmt.Errorf("score image: %w", err)
	}
	if len(logits) != len(d.vocabulary) {
		return nil, fmt.Errorf("score count mismatch: want %d got %d", len(d.vocabulary), len(logits))
	}

	probs := softmax(logits)

	var detected []DetectedObject
	for i, p := range probs {
		if p >= threshold {
			detected = append(detected, DetectedObject{
				Label:      d.vocabulary[i],
				Confidence: p,
				Category:   CategorizeLabel(d.vocabulary[i]),
			})
		}
	}
	sort.SliceStable(detected, func(i, j int) bool {
		return detected[i].Confidence > detected[j].Confidence
	})

	logrus.WithFields(logrus.Fields{"objects": len(detected), "threshold": threshold}).Debug("image scored")
	return detected, nil
}

// Vocabulary exposes the label set the detector ranks against.
func (d *Detector) Vocabulary() []string {
	out := make([]string, len(d.vocabulary))
	copy(out, d.vocabulary)
	return out
}

// softmax normalizes logits into probabilities summing to 1. Degenerate
// inputs (all equal, or extreme values) still produce a valid distribution.
func softmax(logits []float64) []float64 {
	if len(logits) == 0 {
		return nil
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	if sum == 0 {
		uniform := 1.0 / float64(len(logits))
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Summary groups detections by category and singles out the strongest one.
type Summary struct {
	ViolationDetected bool                        `json:"violation_detected"`
	Message           string                      `json:"message"`
	Objects           []DetectedObject            `json:"objects"`
	Categories        map[string][]DetectedObject `json:"categories,omitempty"`
	Primary           *DetectedObject             `json:"primary_violation,omitempty"`
}

// Summarize builds the detection overview shown alongside a verdict.
func Summarize(detected []DetectedObject) Summary {
	if len(detected) == 0 {
		return Summary{Message: "No policy violations detected in the image."}
	}
	categories := make(map[string][]DetectedObject)
	primary := detected[0]
	for _, obj := range detected {
		categories[obj.Category] = append(categories[obj.Category], obj)
		if obj.Confidence > primary.Confidence {
			primary = obj
		}
	}
	return Summary{
		ViolationDetected: true,
		Message:           fmt.Sprintf("Detected %s (confidence: %.2f%%)", primary.Label, primary.Confidence*100),
		Objects:           detected,
		Categories:        categories,
		Primary:           &primary,
	}
}
