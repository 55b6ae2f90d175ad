package ai

import (
	"context"
	"errors"
)

// Generator produces free-form text for an assessment prompt. The response is
// expected to contain one JSON object matching the verdict contract, but
// callers must be prepared to recover from anything.
type Generator interface {
	Enabled() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder turns texts into fixed-size vectors for similarity search.
type Embedder interface {
	Enabled() bool
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

var ErrDisabled = errors.New("ai backend disabled")

// systemPrompt is the contract every generative backend is instructed with.
const systemPrompt = `You are an expert housing policy compliance officer. Your job is to assess whether detected objects in a residence hall room violate any housing policies.

You must:
1. Carefully analyze each detected object against the provided policy rules
2. Determine if there is a clear violation
3. Provide a confidence level (0.0 to 1.0) for your assessment
4. Recommend appropriate action
5. Be conservative - if you are unsure, mark as potential violation for human review

Respond with a strict JSON object of this shape and nothing else:
{
    "violation_found": boolean,
    "message": "clear explanation of your assessment",
    "confidence": float (0.0-1.0),
    "recommended_action": "specific action to take",
    "violating_objects": ["list of objects that violate policy"],
    "matching_rules": ["list of specific rules that were violated"],
    "severity": "low/medium/high"
}`
