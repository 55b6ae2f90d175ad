package assess

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"hall-compliance/internal/ai"
	"hall-compliance/internal/rules"
	"hall-compliance/internal/vision"
)

// Assessor turns detections plus retrieved rules into a verdict. The
// deterministic contraband check always runs first; the generative backend
// is reserved for the policy-text-dependent long tail.
type Assessor struct {
	generator ai.Generator
	timeout   time.Duration
}

// NewAssessor constructs an assessor over the generative backend. generator
// may be nil or disabled; assessments then degrade to manual-review verdicts
// once the deterministic paths are exhausted.
func NewAssessor(generator ai.Generator, timeout time.Duration) *Assessor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Assessor{generator: generator, timeout: timeout}
}

// Assess never returns an error: every failure mode terminates in a
// well-formed verdict so report and email layers always have a consistent
// object to render.
func (a *Assessor) Assess(ctx context.Context, objects []vision.DetectedObject, policyRules []rules.Rule, imageContext *vision.Context) Verdict {
	objects = normalizeObjects(objects)

	if len(objects) == 0 {
		return Verdict{
			ViolationFound:    false,
			Message:           "No objects detected that require policy assessment.",
			Confidence:        1.0,
			RecommendedAction: "No action required",
		}
	}

	if verdict, ok := checkContraband(objects); ok {
		logrus.WithField("objects", verdict.ViolatingObjects).Warn("contraband fast path triggered")
		return verdict
	}

	if len(policyRules) == 0 {
		return Verdict{
			ViolationFound:    false,
			Message:           "No policy rules available for assessment.",
			Confidence:        0.0,
			RecommendedAction: "Upload policy document for assessment",
		}
	}

	if a.generator == nil || !a.generator.Enabled() {
		return ErrorVerdict("generative backend is not configured; set backend credentials")
	}

	prompt := buildPrompt(objects, policyRules, imageContext)

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	content, err := a.generator.Generate(callCtx, prompt)
	if err != nil {
		logrus.WithError(err).Error("violation assessment backend call failed")
		if errors.Is(err, ai.ErrDisabled) {
			return ErrorVerdict("generative backend is not configured; set backend credentials")
		}
		return ErrorVerdict(err.Error())
	}

	return parseResponse(content)
}

// ErrorVerdict is the terminal state for backend, transport, and
// configuration failures: non-violation, zero confidence, manual review.
func ErrorVerdict(reason string) Verdict {
	return Verdict{
		ViolationFound:    false,
		Message:           fmt.Sprintf("Error during assessment: %s", reason),
		Confidence:        0.0,
		RecommendedAction: "Manual review required",
	}
}

// normalizeObjects clamps detection confidences into [0,1] at the boundary
// so out-of-range upstream values never propagate.
func normalizeObjects(objects []vision.DetectedObject) []vision.DetectedObject {
	if len(objects) == 0 {
		return nil
	}
	out := make([]vision.DetectedObject, 0, len(objects))
	for _, obj := range objects {
		switch {
		case math.IsNaN(obj.Confidence) || obj.Confidence < 0:
			obj.Confidence = 0
		case obj.Confidence > 1:
			obj.Confidence = 1
		}
		out = append(out, obj)
	}
	return out
}
