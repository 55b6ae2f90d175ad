package assess

import (
	"fmt"
	"strings"

	"hall-compliance/internal/rules"
	"hall-compliance/internal/vision"
)

// buildPrompt assembles the structured assessment prompt: every detected
// object with its confidence and category, every candidate rule, and the
// optional room-type hint. Braces in rule text are escaped so policy wording
// cannot act as a template directive downstream.
func buildPrompt(objects []vision.DetectedObject, policyRules []rules.Rule, imageContext *vision.Context) string {
	builder := &strings.Builder{}
	builder.WriteString("Please assess whether the following objects detected in a residence hall room violate any housing policies.\n\n")

	builder.WriteString("DETECTED OBJECTS:\n")
	for _, obj := range objects {
		fmt.Fprintf(builder, "- %s (confidence: %.2f%%, category: %s)\n", obj.Label, obj.Confidence*100, obj.Category)
	}

	builder.WriteString("\nPOLICY RULES:\n")
	for _, rule := range policyRules {
		fmt.Fprintf(builder, "- %s\n", escapeBraces(rule.Text))
	}

	if imageContext != nil && imageContext.RoomType != "" {
		fmt.Fprintf(builder, "\nImage Context: %s\n", imageContext.RoomType)
	}

	builder.WriteString(`
Please analyze each detected object against the policy rules and determine if there are any violations. Consider:
1. Whether the object is explicitly prohibited
2. Whether it poses a safety hazard
3. Whether it violates appliance or equipment policies
4. The context and severity of any violations

Provide your assessment in the specified JSON format.
`)
	return builder.String()
}

func escapeBraces(text string) string {
	text = strings.ReplaceAll(text, "{", "{{")
	return strings.ReplaceAll(text, "}", "}}")
}
