// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"encoding/json"
	"time"
)

// Known issue types. Anything else is ignored by type classification.
const (
	TypeProblem  = "problem"
	TypeQuestion = "question"
	TypeTask     = "task"
)

// Known priorities.
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

// SatisfactionRating is the optional rating attached to a resolved issue.
type SatisfactionRating struct {
	Score *float64 `json:"score,omitempty"`
}

// Issue is a single ticket from the service desk sample dataset.
// It is the core domain entity of this application and is never mutated.
type Issue struct {
	Type               string              `json:"type"`
	Priority           string              `json:"priority"`
	Created            Timestamp           `json:"created"`
	Updated            Timestamp           `json:"updated"`
	SatisfactionRating *SatisfactionRating `json:"satisfaction_rating,omitempty"`
}

// ResolutionTime is the elapsed time between creation and last update.
// It is negative when the timestamps are inverted.
func (i Issue) ResolutionTime() time.Duration {
	return i.Updated.Sub(i.Created.Time)
}

// Score returns the satisfaction score and whether one is present.
func (i Issue) Score() (float64, bool) {
	if i.SatisfactionRating == nil || i.SatisfactionRating.Score == nil {
		return 0, false
	}
	return *i.SatisfactionRating.Score, true
}

// Dataset is the payload returned by the remote data source. Raw keeps the
// body exactly as received, including fields Issue does not model.
type Dataset struct {
	Results []Issue         `json:"results"`
	Raw     json.RawMessage `json:"-"`
}
