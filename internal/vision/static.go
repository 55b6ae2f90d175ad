package vision

import (
	"context"
	"image"
)

// StaticBackend returns fixed logits per label, defaulting everything else
// to a low baseline. It stands in for the ONNX backend in tests and demos.
type StaticBackend struct {
	Logits   map[string]float64
	Baseline float64
}

// Scores implements Backend with the configured per-label logits.
func (s *StaticBackend) Scores(_ context.Context, _ image.Image, labels []string) ([]float64, error) {
	out := make([]float64, len(labels))
	for i, label := range labels {
		out[i] = s.Baseline
		if v, ok := s.Logits[label]; ok {
			out[i] = v
		}
	}
	return out, nil
}
