// Package registry holds the pattern rule set shared by the detector,
// the extractors, and the adaptive learner. The registry is the single
// mutable structure in the pipeline; every other component treats rules
// as read-only snapshots handed out by it.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ledgerparse/ledgerparse/internal/common"
	"github.com/ledgerparse/ledgerparse/internal/model"
)

// DefaultConfidenceFloor is the confidence below which a rule is
// deprioritized. Rules never fall out of the registry entirely; a
// below-floor rule still runs, just after every rule above the floor.
const DefaultConfidenceFloor = 0.2

// Store persists learned rule state across runs. The registry itself is
// in-memory; a Store is attached by the caller when persistence is wanted.
type Store interface {
	// LoadRules returns previously saved rule state keyed by rule ID.
	LoadRules() (map[string]RuleState, error)
	// SaveRules writes the current state of all rules.
	SaveRules(rules []model.PatternRule) error
}

// RuleState is the persisted, learnable portion of a rule. Markers and
// recipes are code, not data; only the confidence trajectory survives
// process restarts.
type RuleState struct {
	UpdatedAt  time.Time
	Confidence float64
	HitCount   int
	MissCount  int
}

// Registry is a concurrency-safe collection of pattern rules. Reads take
// the shared lock and return copies; the only writer is RecordOutcome.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]*model.PatternRule
	floor float64
}

// New builds a registry over the given rules. Duplicate rule IDs are an
// error: rule identity drives both learning and persistence.
func New(rules []model.PatternRule) (*Registry, error) {
	r := &Registry{
		rules: make(map[string]*model.PatternRule, len(rules)),
		floor: DefaultConfidenceFloor,
	}
	for i := range rules {
		rule := rules[i]
		if _, dup := r.rules[rule.ID]; dup {
			return nil, fmt.Errorf("duplicate rule ID %q: %w", rule.ID, common.ErrInvalidConfig)
		}
		r.rules[rule.ID] = &rule
	}
	return r, nil
}

// SetConfidenceFloor overrides the deprioritization floor.
func (r *Registry) SetConfidenceFloor(floor float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.floor = floor
}

// RulesFor returns a snapshot of the rules registered for the given
// statement type and issuer, ordered by descending confidence. Rules at or
// below the confidence floor sort after all rules above it regardless of
// their relative confidence. Ties break on rule ID so the order is stable.
func (r *Registry) RulesFor(st model.StatementType, issuer string) []model.PatternRule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.PatternRule
	for _, rule := range r.rules {
		if rule.Type == st && rule.Issuer == issuer {
			out = append(out, *rule)
		}
	}
	r.sortByConfidence(out)
	return out
}

// All returns a snapshot of every rule, ordered by ID.
func (r *Registry) All() []model.PatternRule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.PatternRule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, *rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RecordOutcome applies one learning step to the identified rule:
//
//	confidence' = clamp(confidence + alpha*(outcome - confidence), 0, 1)
//
// where outcome is 1 for a hit and 0 for a miss. The update is bounded, so
// a long run of hits asymptotically approaches 1 without reaching it and a
// long run of misses approaches 0.
func (r *Registry) RecordOutcome(ruleID string, hit bool, alpha float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[ruleID]
	if !ok {
		return fmt.Errorf("rule %q: %w", ruleID, common.ErrRuleNotFound)
	}

	outcome := 0.0
	if hit {
		outcome = 1.0
		rule.HitCount++
	} else {
		rule.MissCount++
	}

	rule.Confidence += alpha * (outcome - rule.Confidence)
	if rule.Confidence < 0 {
		rule.Confidence = 0
	}
	if rule.Confidence > 1 {
		rule.Confidence = 1
	}
	rule.UpdatedAt = time.Now().UTC()
	return nil
}

// Restore overlays persisted state from the store onto the registered
// rules. Stored IDs with no matching rule are skipped: the rule set is
// code, and a renamed or removed rule simply orphans its saved state.
func (r *Registry) Restore(store Store) error {
	states, err := store.LoadRules()
	if err != nil {
		return fmt.Errorf("loading rule state: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, st := range states {
		rule, ok := r.rules[id]
		if !ok {
			continue
		}
		rule.Confidence = st.Confidence
		rule.HitCount = st.HitCount
		rule.MissCount = st.MissCount
		rule.UpdatedAt = st.UpdatedAt
	}
	return nil
}

// Persist writes the current rule state through the store.
func (r *Registry) Persist(store Store) error {
	if err := store.SaveRules(r.All()); err != nil {
		return fmt.Errorf("saving rule state: %w", err)
	}
	return nil
}

func (r *Registry) sortByConfidence(rules []model.PatternRule) {
	floor := r.floor
	sort.Slice(rules, func(i, j int) bool {
		iBelow := rules[i].Confidence <= floor
		jBelow := rules[j].Confidence <= floor
		if iBelow != jBelow {
			return jBelow
		}
		if rules[i].Confidence != rules[j].Confidence {
			return rules[i].Confidence > rules[j].Confidence
		}
		return rules[i].ID < rules[j].ID
	})
}
