package index

import (
	"context"

	"hall-compliance/internal/rules"
)

// Match pairs a stored rule with its relevance to a query.
type Match struct {
	Rule  rules.Rule `json:"rule"`
	Score float64    `json:"relevance_score"`
}

// Index stores extracted policy rules and answers relevance queries.
// Indexing a document name replaces any rules previously stored under that
// name; an empty draft set performs no writes and reports false.
type Index interface {
	Index(ctx context.Context, documentName string, drafts []rules.Draft) (bool, error)
	Search(ctx context.Context, query string, k int) ([]Match, error)
	Clear(ctx context.Context) error
}
