package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// RepairOutcome describes the result of a single repair attempt
type RepairOutcome struct {
	Repaired bool
	OldURL   string
	NewURL   string
	Probe    domain.ProbeResult // probe of the accepted candidate, zero if none
	Reason   string             // why repair failed
}

// RepairResolver looks for a new working url of a named source whose feed stopped responding
type RepairResolver struct {
	searcher Searcher
	prober   Prober
	keywords []string
}

// NewRepairResolver makes a repair resolver. Nil searcher means search is unavailable and every repair fails.
func NewRepairResolver(searcher Searcher, prober Prober, keywords []string) *RepairResolver {
	return &RepairResolver{searcher: searcher, prober: prober, keywords: keywords}
}

// Repair searches for a replacement of entry, probes candidates in the suggested order and takes
// the first alive one not already registered. On success entry is updated in place: new url,
// zero counter, active status. On failure entry is left untouched.
func (r *RepairResolver) Repair(ctx context.Context, reg *domain.Registry, entry *domain.FeedEntry) RepairOutcome {
	res := RepairOutcome{OldURL: entry.URL}
	if r.searcher == nil {
		res.Reason = "search unavailable"
		return res
	}

	cands, err := r.searcher.FindReplacement(ctx, domain.RepairQuery{
		Identity: entry.Identity,
		URL:      entry.URL,
		Language: entry.Language,
		Keywords: r.keywords,
	})
	if err != nil {
		lgr.Printf("[WARN] repair search for %s failed: %v", entry.Name(), err)
		res.Reason = fmt.Sprintf("search failed: %v", err)
		return res
	}
	if len(cands) == 0 {
		res.Reason = "no candidates found"
		return res
	}

	dead := domain.NormalizeURL(entry.URL)
	tried := 0
	for _, c := range cands {
		if ctx.Err() != nil {
			res.Reason = fmt.Sprintf("interrupted: %v", ctx.Err())
			return res
		}
		if !r.acceptable(reg, dead, c.URL) {
			lgr.Printf("[DEBUG] skip repair candidate %s for %s, already registered", c.URL, entry.Name())
			continue
		}

		tried++
		pr := r.prober.ProbeCandidate(ctx, c.URL)
		if !pr.Alive {
			lgr.Printf("[DEBUG] repair candidate %s for %s is dead: %s", c.URL, entry.Name(), pr.Reason)
			continue
		}
		if pr.URL != c.URL && !r.acceptable(reg, dead, pr.URL) {
			// autodiscovered feed link points to an already registered url
			continue
		}

		checked := pr.CheckedAt
		if checked.IsZero() {
			checked = time.Now()
		}
		entry.URL = pr.URL
		entry.ConsecutiveFailures = 0
		entry.Status = domain.StatusActive
		entry.RepairAttempted = false
		entry.LastChecked = &checked
		entry.LastSuccess = &checked

		res.Repaired, res.NewURL, res.Probe = true, pr.URL, pr
		return res
	}

	if tried == 0 {
		res.Reason = fmt.Sprintf("all %d candidates already registered", len(cands))
		return res
	}
	res.Reason = fmt.Sprintf("none of %d candidates alive", tried)
	return res
}

// acceptable checks a candidate url is neither the dead url nor registered for another entry
func (r *RepairResolver) acceptable(reg *domain.Registry, dead, candidateURL string) bool {
	if domain.NormalizeURL(candidateURL) == dead {
		return false
	}
	return !reg.HasURL(candidateURL)
}
