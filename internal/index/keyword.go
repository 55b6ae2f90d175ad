package index

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"hall-compliance/internal/rules"
	"hall-compliance/internal/store"
)

// KeywordIndex ranks rules by word overlap with the query:
// |query words ∩ rule words| / |query words|. Ties keep insertion order.
// When constructed with a database, indexed rules survive process restarts.
type KeywordIndex struct {
	mu    sync.RWMutex
	rules []rules.Rule
	db    *store.Database
}

// NewKeywordIndex builds a keyword-overlap index. db may be nil for a purely
// in-memory index; otherwise previously persisted rules are loaded.
func NewKeywordIndex(db *store.Database) (*KeywordIndex, error) {
	idx := &KeywordIndex{db: db}
	if db == nil {
		return idx, nil
	}
	records, err := db.AllRules()
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		idx.rules = append(idx.rules, recordToRule(record))
	}
	if len(idx.rules) > 0 {
		logrus.WithField("rules", len(idx.rules)).Info("restored keyword rule index")
	}
	return idx, nil
}

// Index replaces the rules stored for documentName with the supplied drafts.
func (k *KeywordIndex) Index(ctx context.Context, documentName string, drafts []rules.Draft) (bool, error) {
	if strings.TrimSpace(documentName) == "" {
		return false, errors.New("document name is empty")
	}
	if len(drafts) == 0 {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	tagged := rules.Tag(documentName, drafts)

	if k.db != nil {
		if err := k.db.ReplaceDocumentRules(documentName, rulesToRecords(tagged)); err != nil {
			return false, err
		}
	}

	k.mu.Lock()
	kept := k.rules[:0:0]
	for _, rule := range k.rules {
		if rule.DocumentName != documentName {
			kept = append(kept, rule)
		}
	}
	k.rules = append(kept, tagged...)
	k.mu.Unlock()

	logrus.WithFields(logrus.Fields{"document": documentName, "rules": len(tagged)}).Info("indexed policy rules")
	return true, nil
}

// Search returns the k most relevant rules for the query.
func (k *KeywordIndex) Search(ctx context.Context, query string, n int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	queryWords := wordSet(query)
	if len(queryWords) == 0 {
		return nil, nil
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	var matches []Match
	for _, rule := range k.rules {
		score := overlapScore(queryWords, wordSet(rule.Text))
		if score > 0 {
			matches = append(matches, Match{Rule: rule, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

// Clear removes all stored rules.
func (k *KeywordIndex) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if k.db != nil {
		if err := k.db.ClearRules(); err != nil {
			return err
		}
	}
	k.mu.Lock()
	k.rules = nil
	k.mu.Unlock()
	return nil
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

func overlapScore(query, rule map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	overlap := 0
	for word := range query {
		if _, ok := rule[word]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(query))
}

func recordToRule(record store.PolicyRule) rules.Rule {
	return rules.Rule{
		ID:           record.RuleID,
		Text:         record.Text,
		Category:     record.Category,
		DocumentName: record.DocumentName,
		ChunkIndex:   record.ChunkIndex,
		Pattern:      record.Pattern,
	}
}

func rulesToRecords(tagged []rules.Rule) []store.PolicyRule {
	records := make([]store.PolicyRule, 0, len(tagged))
	for _, rule := range tagged {
		records = append(records, store.PolicyRule{
			RuleID:         rule.ID,
			DocumentName:   rule.DocumentName,
			Text:           rule.Text,
			NormalizedText: rules.NormalizeText(rule.Text),
			Category:       rule.Category,
			ChunkIndex:     rule.ChunkIndex,
			Pattern:        rule.Pattern,
		})
	}
	return records
}
