// Package learner closes the feedback loop between extraction outcomes and
// pattern rule confidence. It is the only component that writes to the
// registry after startup.
package learner

import (
	"log/slog"

	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/registry"
)

// DefaultAlpha is the learning rate for confidence updates. Small enough
// that one anomalous statement cannot swing a rule, large enough that a
// consistent trend shows within a handful of runs.
const DefaultAlpha = 0.15

// Learner applies extraction outcomes to the registry.
type Learner struct {
	registry *registry.Registry
	logger   *slog.Logger
	alpha    float64
}

// New builds a learner over the given registry.
func New(reg *registry.Registry, logger *slog.Logger) *Learner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Learner{registry: reg, logger: logger, alpha: DefaultAlpha}
}

// SetAlpha overrides the learning rate.
func (l *Learner) SetAlpha(alpha float64) { l.alpha = alpha }

// Observe records one extraction pass. A rule scores a hit only when it
// matched and produced at least one transaction; a rule that matched but
// extracted nothing misled the pipeline and counts as a miss.
func (l *Learner) Observe(outcomes []model.RuleOutcome) {
	for _, o := range outcomes {
		hit := o.Matched && o.TransactionCount >= 1
		if err := l.registry.RecordOutcome(o.RuleID, hit, l.alpha); err != nil {
			l.logger.Warn("failed to record rule outcome",
				"rule_id", o.RuleID,
				"error", err)
			continue
		}
		l.logger.Debug("recorded rule outcome",
			"rule_id", o.RuleID,
			"hit", hit,
			"transactions", o.TransactionCount)
	}
}
