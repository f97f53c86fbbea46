// Package tracker implements the per-feed failure counter and the keep/repair/evict decision.
package tracker

import "github.com/umputun/feedkeeper/pkg/domain"

// DefaultThreshold is the number of consecutive failures that triggers a repair attempt
const DefaultThreshold = 3

// Tracker turns probe outcomes into counter updates and decisions.
// It is stateless, the counter lives in the registry entry.
type Tracker struct {
	threshold int
}

// New makes a tracker with the given threshold, non-positive value means DefaultThreshold
func New(threshold int) *Tracker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Tracker{threshold: threshold}
}

// Threshold returns configured failure threshold
func (t *Tracker) Threshold() int {
	return t.threshold
}

// Evaluate returns the new consecutive failures counter and the decision for a feed
// with prior failures after the probe res. An alive probe resets the counter.
func (t *Tracker) Evaluate(prior int, res domain.ProbeResult) (int, domain.Decision) {
	if res.Alive {
		return 0, domain.DecisionKeep
	}
	if prior < 0 {
		prior = 0
	}

	count := prior + 1
	switch {
	case count < t.threshold:
		return count, domain.DecisionKeep
	case count == t.threshold:
		return count, domain.DecisionTriggerRepair
	default:
		return count, domain.DecisionEvict
	}
}
