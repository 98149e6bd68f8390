// Package model holds the classification types shared by the classifier,
// the orchestrator and the history store.
package model

import "strings"

// Label is the productivity classification of an email.
type Label string

const (
	Productive   Label = "productive"
	Unproductive Label = "unproductive"
)

// ParseLabel maps a label from any source to a Label. The remote service
// answers in Portuguese ("Produtivo"/"Improdutivo"); matching is
// case-insensitive and anything unrecognised is Unproductive.
func ParseLabel(s string) Label {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "produtivo", "productive":
		return Productive
	default:
		return Unproductive
	}
}

// RemoteLabel returns the label spelling the remote service expects.
func (l Label) RemoteLabel() string {
	if l == Productive {
		return "Produtivo"
	}
	return "Improdutivo"
}

// Result is the normalized classification returned to every caller,
// whichever path produced it.
type Result struct {
	Classification    Label    `json:"classification"`
	ConfidenceScore   float64  `json:"confidence_score"`
	SuggestedResponse string   `json:"suggested_response"`
	KeywordsExtracted []string `json:"keywords_extracted"`
	Reasoning         string   `json:"reasoning"`
	// ProcessingTime is wall-clock milliseconds measured by the caller.
	ProcessingTime int64 `json:"processing_time"`
}

// ClampConfidence bounds c to [0,1].
func ClampConfidence(c float64) float64 {
	if c != c || c < 0 { // NaN or negative
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
