package rules

// Rule is a sentence-level policy fragment believed to express a prohibition
// or obligation, tagged with its source document once indexed.
type Rule struct {
	ID           string `json:"id"`
	Text         string `json:"rule_text"`
	Category     string `json:"category"`
	DocumentName string `json:"document_name,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
	Pattern      string `json:"pattern"`
}

// Draft is an extracted rule before it is tagged and indexed.
type Draft struct {
	Text       string
	ChunkIndex int
	Pattern    string
}

// Summary describes the rules extracted from one policy document.
type Summary struct {
	TotalRules     int            `json:"total_rules"`
	Categories     map[string]int `json:"categories"`
	DocumentLength int            `json:"document_length"`
	Examples       []Rule         `json:"rules_extracted"`
}
