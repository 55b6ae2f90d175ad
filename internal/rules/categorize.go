package rules

import (
	"fmt"
	"strings"
)

// categoryEntry pairs the keywords that select a category with its name.
// Entries are evaluated top to bottom; the first hit wins.
type categoryEntry struct {
	keywords []string
	name     string
}

var ruleCategories = []categoryEntry{
	{[]string{"fire", "flame", "candle", "burning", "smoke"}, "Fire Safety"},
	{[]string{"pet", "animal", "dog", "cat"}, "Pet Policy"},
	{[]string{"alcohol", "drinking", "beer", "wine"}, "Alcohol Policy"},
	{[]string{"smoking", "tobacco", "vape", "cigarette"}, "Smoking Policy"},
	{[]string{"appliance", "microwave", "toaster", "heater"}, "Appliance Policy"},
	{[]string{"noise", "quiet", "loud", "disturbance"}, "Noise Policy"},
	{[]string{"guest", "visitor", "overnight"}, "Guest Policy"},
	{[]string{"damage", "property", "furniture", "wall"}, "Property Policy"},
}

// Categorize assigns a coarse category to a rule based on its wording.
func Categorize(ruleText string) string {
	lower := strings.ToLower(ruleText)
	for _, entry := range ruleCategories {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.name
			}
		}
	}
	return "General Policy"
}

// Tag turns drafts into rules scoped to a document: case/whitespace
// duplicates within the document are dropped, and each kept rule gets a
// per-document ID and a category.
func Tag(documentName string, drafts []Draft) []Rule {
	var out []Rule
	seen := make(map[string]struct{}, len(drafts))
	for _, draft := range drafts {
		key := NormalizeText(draft.Text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Rule{
			ID:           fmt.Sprintf("%s_%d", documentName, len(out)),
			Text:         draft.Text,
			Category:     Categorize(draft.Text),
			DocumentName: documentName,
			ChunkIndex:   draft.ChunkIndex,
			Pattern:      draft.Pattern,
		})
	}
	return out
}

// Summarize builds the per-category overview returned after indexing a
// policy document.
func Summarize(documentLength int, indexed []Rule) Summary {
	categories := make(map[string]int)
	for _, rule := range indexed {
		categories[rule.Category]++
	}
	examples := indexed
	if len(examples) > 10 {
		examples = examples[:10]
	}
	return Summary{
		TotalRules:     len(indexed),
		Categories:     categories,
		DocumentLength: documentLength,
		Examples:       examples,
	}
}
