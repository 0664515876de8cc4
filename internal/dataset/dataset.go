package dataset

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"chatbot/internal/model"
)

// Load reads the curated MatchRecord dataset from a JSON file. Malformed
// individual records are skipped and reported as warnings; a missing or
// unreadable file yields a DatasetLoadError so the caller can degrade to an
// empty dataset instead of crashing.
func Load(path string) ([]model.MatchRecord, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &model.DatasetLoadError{Path: path, Err: err}
	}

	var raw []model.MatchRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, &model.DatasetLoadError{Path: path, Err: err}
	}

	records := make([]model.MatchRecord, 0, len(raw))
	var warnings []string
	for i, rec := range raw {
		if err := rec.Validate(); err != nil {
			warnings = append(warnings, fmt.Sprintf("record %d skipped: %v", i, err))
			continue
		}
		if rec.Intention == "" {
			rec.Intention = "general"
		}
		records = append(records, rec)
	}

	log.Printf("Loaded %d dataset records from %s (%d skipped)", len(records), path, len(warnings))
	return records, warnings, nil
}
