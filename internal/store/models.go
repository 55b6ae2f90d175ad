package store

import (
	"encoding/json"
	"strings"
	"time"
)

// PolicyRule persists one extracted rule, scoped to the policy document it
// came from. NormalizedText backs the case/whitespace-insensitive dedup.
type PolicyRule struct {
	ID             uint   `gorm:"primaryKey"`
	RuleID         string `gorm:"size:64;index"`
	DocumentName   string `gorm:"size:128;index"`
	Text           string `gorm:"type:text"`
	NormalizedText string `gorm:"size:512;index"`
	Category       string `gorm:"size:64;index"`
	ChunkIndex     int
	Pattern        string    `gorm:"size:256"`
	EmbeddingJSON  string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// SetEmbedding stores the rule's embedding vector as JSON.
func (r *PolicyRule) SetEmbedding(vector []float64) {
	if len(vector) == 0 {
		r.EmbeddingJSON = ""
		return
	}
	payload, _ := json.Marshal(vector)
	r.EmbeddingJSON = string(payload)
}

// Embedding returns the decoded embedding vector, or nil when absent.
func (r *PolicyRule) Embedding() []float64 {
	if strings.TrimSpace(r.EmbeddingJSON) == "" {
		return nil
	}
	var out []float64
	if err := json.Unmarshal([]byte(r.EmbeddingJSON), &out); err != nil {
		return nil
	}
	return out
}

// Assessment is one persisted verdict, kept for the history endpoint.
type Assessment struct {
	ID                   uint `gorm:"primaryKey"`
	ViolationFound       bool
	Message              string `gorm:"type:text"`
	Confidence           float64
	RecommendedAction    string `gorm:"size:255"`
	Severity             string `gorm:"size:16"`
	ViolatingObjectsJSON string `gorm:"type:text"`
	MatchingRulesJSON    string `gorm:"type:text"`
	DetectedObjectsJSON  string `gorm:"type:text"`
	RoomType             string    `gorm:"size:64"`
	CreatedAt            time.Time `gorm:"autoCreateTime"`
}

// SetViolatingObjects saves the violating object labels as JSON.
func (a *Assessment) SetViolatingObjects(objects []string) {
	payload, _ := json.Marshal(objects)
	a.ViolatingObjectsJSON = string(payload)
}

// ViolatingObjects returns the decoded violating object labels.
func (a *Assessment) ViolatingObjects() []string {
	return decodeStrings(a.ViolatingObjectsJSON)
}

// SetMatchingRules saves the matched rule descriptions as JSON.
func (a *Assessment) SetMatchingRules(rules []string) {
	payload, _ := json.Marshal(rules)
	a.MatchingRulesJSON = string(payload)
}

// MatchingRules returns the decoded matched rule descriptions.
func (a *Assessment) MatchingRules() []string {
	return decodeStrings(a.MatchingRulesJSON)
}

func decodeStrings(payload string) []string {
	if strings.TrimSpace(payload) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil
	}
	return out
}
