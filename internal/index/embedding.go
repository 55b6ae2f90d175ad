package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"hall-compliance/internal/ai"
	"hall-compliance/internal/rules"
	"hall-compliance/internal/store"
)

// EmbeddingIndex ranks rules by cosine similarity between the query embedding
// and per-rule embeddings. Vectors are persisted alongside the rules so the
// index survives restarts without re-embedding.
type EmbeddingIndex struct {
	mu       sync.RWMutex
	rules    []rules.Rule
	vectors  [][]float64
	embedder ai.Embedder
	db       *store.Database
}

// NewEmbeddingIndex builds an embedding-similarity index over the embedder.
// db may be nil for a purely in-memory index.
func NewEmbeddingIndex(db *store.Database, embedder ai.Embedder) (*EmbeddingIndex, error) {
	if embedder == nil || !embedder.Enabled() {
		return nil, ai.ErrDisabled
	}
	idx := &EmbeddingIndex{embedder: embedder, db: db}
	if db == nil {
		return idx, nil
	}
	records, err := db.AllRules()
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		vector := record.Embedding()
		if vector == nil {
			continue
		}
		idx.rules = append(idx.rules, recordToRule(record))
		idx.vectors = append(idx.vectors, vector)
	}
	if len(idx.rules) > 0 {
		logrus.WithField("rules", len(idx.rules)).Info("restored embedding rule index")
	}
	return idx, nil
}

// Index embeds the drafts and replaces the rules stored for documentName.
func (e *EmbeddingIndex) Index(ctx context.Context, documentName string, drafts []rules.Draft) (bool, error) {
	if strings.TrimSpace(documentName) == "" {
		return false, errors.New("document name is empty")
	}
	if len(drafts) == 0 {
		return false, nil
	}

	tagged := rules.Tag(documentName, drafts)
	texts := make([]string, len(tagged))
	for i, rule := range tagged {
		texts[i] = rule.Text
	}

	vectors, err := e.embedder.Embed(ctx, texts)
	if err != nil {
		return false, fmt.Errorf("embed rules: %w", err)
	}
	if len(vectors) != len(tagged) {
		return false, fmt.Errorf("embedding count mismatch: want %d got %d", len(tagged), len(vectors))
	}

	if e.db != nil {
		records := rulesToRecords(tagged)
		for i := range records {
			records[i].SetEmbedding(vectors[i])
		}
		if err := e.db.ReplaceDocumentRules(documentName, records); err != nil {
			return false, err
		}
	}

	e.mu.Lock()
	keptRules := e.rules[:0:0]
	keptVectors := e.vectors[:0:0]
	for i, rule := range e.rules {
		if rule.DocumentName != documentName {
			keptRules = append(keptRules, rule)
			keptVectors = append(keptVectors, e.vectors[i])
		}
	}
	e.rules = append(keptRules, tagged...)
	e.vectors = append(keptVectors, vectors...)
	e.mu.Unlock()

	logrus.WithFields(logrus.Fields{"document": documentName, "rules": len(tagged)}).Info("indexed policy rules")
	return true, nil
}

// Search returns the k most similar rules for the query.
func (e *EmbeddingIndex) Search(ctx context.Context, query string, n int) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	e.mu.RLock()
	empty := len(e.rules) == 0
	e.mu.RUnlock()
	if empty {
		return nil, nil
	}

	vectors, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, errors.New("query embedding missing")
	}
	queryVector := vectors[0]

	e.mu.RLock()
	defer e.mu.RUnlock()

	matches := make([]Match, 0, len(e.rules))
	for i, rule := range e.rules {
		matches = append(matches, Match{Rule: rule, Score: cosine(queryVector, e.vectors[i])})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

// Clear removes all stored rules and vectors.
func (e *EmbeddingIndex) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.db != nil {
		if err := e.db.ClearRules(); err != nil {
			return err
		}
	}
	e.mu.Lock()
	e.rules = nil
	e.vectors = nil
	e.mu.Unlock()
	return nil
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
