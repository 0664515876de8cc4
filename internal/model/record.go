package model

import "fmt"

// MatchRecord is one immutable entry in the curated Q&A dataset
type MatchRecord struct {
	InputPattern       string   `json:"input"`
	Answer             string   `json:"answer"`
	Intention          string   `json:"intention"`
	SuggestedResponses []string `json:"suggested_responses,omitempty"`
}

// Validate rejects records that cannot be matched or answered
func (r *MatchRecord) Validate() error {
	if r.InputPattern == "" {
		return fmt.Errorf("record has empty input pattern")
	}
	if r.Answer == "" {
		return fmt.Errorf("record %q has empty answer", r.InputPattern)
	}
	return nil
}

// Match is a MatchRecord annotated with its similarity against a message
type Match struct {
	Record     MatchRecord
	Similarity float64
}
