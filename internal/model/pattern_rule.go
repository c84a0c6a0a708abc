package model

import (
	"time"
)

// Marker is a weighted text signature used by the detector. Header and
// column-label markers carry more weight than loose body-text indicators.
type Marker struct {
	Token  string
	Weight float64
}

// Marker weight conventions, following the scoring tiers of the default
// rule set: header keywords score highest, column labels next, loose
// body-text mentions lowest.
const (
	MarkerWeightHeader = 3.0
	MarkerWeightColumn = 2.0
	MarkerWeightText   = 1.0
)

// PatternRule binds a set of detection markers and an extraction recipe to
// a (statement type, issuer) pair, carrying a learned confidence.
//
// Confidence is always within [0,1]; it is mutated only by the adaptive
// learner through the registry. HitCount and MissCount track per-rule
// extraction outcomes across the life of the process.
type PatternRule struct {
	UpdatedAt  time.Time
	ID         string
	Type       StatementType
	Issuer     string // empty for generic rules
	Recipe     string // extraction recipe applied by the matching extractor
	Markers    []Marker
	Confidence float64
	HitCount   int
	MissCount  int
}

// RuleOutcome reports how a rule fared during one extraction pass.
// It is the event consumed by the adaptive learner.
type RuleOutcome struct {
	RuleID           string
	Matched          bool
	TransactionCount int
}
