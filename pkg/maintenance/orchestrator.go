// Package maintenance runs the registry maintenance cycle: probe every feed, track consecutive failures,
// repair or evict feeds that keep failing, optionally discover new feeds and persist the registry.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/registry"
	"github.com/umputun/feedkeeper/pkg/tracker"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store
//go:generate moq -out mocks/prober.go -pkg mocks -skip-ensure -fmt goimports . Prober
//go:generate moq -out mocks/searcher.go -pkg mocks -skip-ensure -fmt goimports . Searcher
//go:generate moq -out mocks/history.go -pkg mocks -skip-ensure -fmt goimports . History
//go:generate moq -out mocks/metrics.go -pkg mocks -skip-ensure -fmt goimports . Metrics

// ErrCycleInProgress is returned by Run when another cycle holds the registry
var ErrCycleInProgress = errors.New("maintenance cycle already in progress")

// Store loads, saves and locks the registry
type Store interface {
	Load(ctx context.Context) (*domain.Registry, error)
	Save(ctx context.Context, reg *domain.Registry) error
	Lock() (unlock func(), err error)
}

// Prober checks feed liveness
type Prober interface {
	Probe(ctx context.Context, feedURL string) domain.ProbeResult
	ProbeCandidate(ctx context.Context, candidateURL string) domain.ProbeResult
}

// Searcher suggests feed urls
type Searcher interface {
	FindReplacement(ctx context.Context, q domain.RepairQuery) ([]domain.Candidate, error)
	FindFeeds(ctx context.Context, q domain.DiscoveryQuery) ([]domain.Candidate, error)
}

// History records finished cycles
type History interface {
	SaveRun(ctx context.Context, report domain.CycleReport) error
}

// Metrics collects probe and cycle statistics
type Metrics interface {
	ObserveProbe(res domain.ProbeResult)
	ObserveCycle(report domain.CycleReport)
}

// RunOptions controls a single cycle
type RunOptions struct {
	AutoAdd    bool // discover new feeds when registry is below target size
	DryRun     bool // run everything but don't persist the registry
	SkipSearch bool // don't call the search capability, repairs fail and discovery is skipped
}

// Orchestrator runs maintenance cycles, one at a time
type Orchestrator struct {
	store    Store
	prober   Prober
	searcher Searcher
	history  History
	metrics  Metrics
	tracker  *tracker.Tracker

	keywords    []string
	languages   []string
	maxWorkers  int
	targetSize  int
	maxPerCycle int
	maxPerLang  int

	running   sync.Mutex
	isRunning atomic.Bool
	lastMu    sync.RWMutex
	last      *domain.CycleReport
}

// OrchestratorConfig holds dependencies and settings of the orchestrator.
// Searcher, History and Metrics are optional.
type OrchestratorConfig struct {
	Store    Store
	Prober   Prober
	Searcher Searcher
	History  History
	Metrics  Metrics

	Keywords    []string
	Languages   []string
	MaxFailures int
	MaxWorkers  int
	TargetSize  int
	MaxPerCycle int
	// MaxPerLanguage caps live entries of one language, 0 means no cap
	MaxPerLanguage int
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 8
	}
	return &Orchestrator{
		store:       cfg.Store,
		prober:      cfg.Prober,
		searcher:    cfg.Searcher,
		history:     cfg.History,
		metrics:     cfg.Metrics,
		tracker:     tracker.New(cfg.MaxFailures),
		keywords:    cfg.Keywords,
		languages:   cfg.Languages,
		maxWorkers:  cfg.MaxWorkers,
		targetSize:  cfg.TargetSize,
		maxPerCycle: cfg.MaxPerCycle,
		maxPerLang:  cfg.MaxPerLanguage,
	}
}

// Running reports whether a cycle is in progress in this process
func (o *Orchestrator) Running() bool {
	return o.isRunning.Load()
}

// LastReport returns report of the most recent cycle run by this orchestrator
func (o *Orchestrator) LastReport() (domain.CycleReport, bool) {
	o.lastMu.RLock()
	defer o.lastMu.RUnlock()
	if o.last == nil {
		return domain.CycleReport{}, false
	}
	return *o.last, true
}

// Run executes one maintenance cycle: load, probe, reconcile, discover, persist.
// Returns ErrCycleInProgress if another cycle holds the registry. Load and save failures are returned
// as errors with the partial report. Cancelling ctx before persisting aborts the cycle without writing.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (domain.CycleReport, error) {
	if !o.running.TryLock() {
		return domain.CycleReport{}, ErrCycleInProgress
	}
	defer o.running.Unlock()

	unlock, err := o.store.Lock()
	if err != nil {
		if errors.Is(err, registry.ErrLocked) {
			return domain.CycleReport{}, ErrCycleInProgress
		}
		return domain.CycleReport{}, fmt.Errorf("lock registry: %w", err)
	}
	defer unlock()

	o.isRunning.Store(true)
	defer o.isRunning.Store(false)

	report := domain.CycleReport{RunID: uuid.NewString(), StartedAt: time.Now(), AutoAdd: opts.AutoAdd, DryRun: opts.DryRun}
	lgr.Printf("[INFO] maintenance cycle %s started, auto-add: %v, dry-run: %v, skip-search: %v",
		report.RunID, opts.AutoAdd, opts.DryRun, opts.SkipSearch)

	reg, err := o.store.Load(ctx)
	if err != nil {
		return o.finish(ctx, report, fmt.Errorf("load registry: %w", err))
	}

	searcher := o.searcher
	if opts.SkipSearch {
		searcher = nil
	}

	// probing
	results := o.probeAll(ctx, reg)
	report.Probes = results
	report.Probed = len(results)
	report.Alive = lo.CountBy(results, func(r domain.ProbeResult) bool { return r.Alive })
	report.Dead = report.Probed - report.Alive
	if ctx.Err() != nil {
		return o.finish(ctx, report, fmt.Errorf("cycle aborted while probing: %w", ctx.Err()))
	}

	// reconciling
	o.reconcile(ctx, reg, results, NewRepairResolver(searcher, o.prober, o.keywords), &report)
	if ctx.Err() != nil {
		return o.finish(ctx, report, fmt.Errorf("cycle aborted while reconciling: %w", ctx.Err()))
	}

	// discovering
	if opts.AutoAdd {
		o.discover(ctx, reg, NewDiscoveryResolver(searcher, o.prober, o.keywords, o.languages, o.maxPerLang), &report)
		if ctx.Err() != nil {
			return o.finish(ctx, report, fmt.Errorf("cycle aborted while discovering: %w", ctx.Err()))
		}
	}

	// persisting
	report.RegistrySize = reg.Len()
	if opts.DryRun {
		lgr.Printf("[INFO] dry run, registry with %d feeds not saved", reg.Len())
		return o.finish(ctx, report, nil)
	}
	if err := o.store.Save(ctx, reg); err != nil {
		return o.finish(ctx, report, fmt.Errorf("save registry: %w", err))
	}
	report.Persisted = true
	return o.finish(ctx, report, nil)
}

// probeAll probes every registry entry concurrently, results are in registry order
func (o *Orchestrator) probeAll(ctx context.Context, reg *domain.Registry) []domain.ProbeResult {
	results := make([]domain.ProbeResult, reg.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxWorkers)
	for i, f := range reg.Feeds {
		g.Go(func() error {
			res := o.prober.Probe(gctx, f.URL)
			results[i] = res
			if o.metrics != nil {
				o.metrics.ObserveProbe(res)
			}
			if res.Alive {
				lgr.Printf("[DEBUG] feed %s is alive, %d articles", f.Name(), res.ArticleCount)
				return nil
			}
			lgr.Printf("[INFO] feed %s (%s) failed: %s %s", f.Name(), f.URL, res.Error, res.Reason)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		lgr.Printf("[ERROR] probing error: %v", err)
	}
	return results
}

// reconcile applies probe results to the registry sequentially, in registry order.
// Entries repaired here are not re-evaluated in the same pass.
func (o *Orchestrator) reconcile(ctx context.Context, reg *domain.Registry, results []domain.ProbeResult,
	repairer *RepairResolver, report *domain.CycleReport) {
	threshold := o.tracker.Threshold()
	evicted := []string{}

	for i := range reg.Feeds {
		if ctx.Err() != nil {
			return
		}
		entry := &reg.Feeds[i]
		res := results[i]

		checked := res.CheckedAt
		if checked.IsZero() {
			checked = time.Now()
		}
		entry.LastChecked = &checked

		count, decision := o.tracker.Evaluate(entry.ConsecutiveFailures, res)
		entry.ConsecutiveFailures = count
		if res.Alive {
			entry.Status = domain.StatusActive
			entry.RepairAttempted = false
			entry.LastSuccess = &checked
			continue
		}

		// active is kept only for entries which passed a probe at least once
		if entry.Status == domain.StatusActive && entry.LastSuccess == nil {
			entry.Status = domain.StatusUnverified
		}

		// no eviction without a repair attempt in this failure episode
		if decision == domain.DecisionEvict && !entry.RepairAttempted {
			decision = domain.DecisionTriggerRepair
		}

		switch decision {
		case domain.DecisionKeep:
			lgr.Printf("[DEBUG] feed %s failed %d/%d times", entry.Name(), count, threshold)

		case domain.DecisionEvict:
			lgr.Printf("[INFO] evict feed %s (%s) after %d consecutive failures", entry.Name(), entry.URL, count)
			entry.Status = domain.StatusEvicted
			evicted = append(evicted, entry.URL)
			report.Evicted++
			report.Events = append(report.Events, domain.Event{Type: domain.EventEvicted, URL: entry.URL,
				Identity: entry.Identity, Detail: fmt.Sprintf("%s: %s", res.Error, res.Reason), CreatedAt: time.Now()})

		case domain.DecisionTriggerRepair:
			outcome := repairer.Repair(ctx, reg, entry)
			if outcome.Repaired {
				lgr.Printf("[INFO] repaired feed %s: %s -> %s", entry.Name(), outcome.OldURL, outcome.NewURL)
				report.Repaired++
				report.Events = append(report.Events, domain.Event{Type: domain.EventRepaired, URL: outcome.NewURL,
					Identity: entry.Identity, Detail: "replaced " + outcome.OldURL, CreatedAt: time.Now()})
				continue
			}
			lgr.Printf("[WARN] failed to repair feed %s (%s): %s", entry.Name(), entry.URL, outcome.Reason)
			entry.Status = domain.StatusPendingRepair
			entry.RepairAttempted = true
			report.RepairFailed++
			report.Events = append(report.Events, domain.Event{Type: domain.EventRepairFailed, URL: entry.URL,
				Identity: entry.Identity, Detail: outcome.Reason, CreatedAt: time.Now()})
		}
	}

	for _, u := range evicted {
		reg.Remove(u)
	}
}

// discover adds new feeds when the registry is below the target size
func (o *Orchestrator) discover(ctx context.Context, reg *domain.Registry, discoverer *DiscoveryResolver, report *domain.CycleReport) {
	if discoverer.searcher == nil {
		lgr.Printf("[INFO] discovery skipped, search is unavailable")
		return
	}
	limit := min(o.maxPerCycle, o.targetSize-reg.Len())
	if limit <= 0 {
		lgr.Printf("[DEBUG] discovery skipped, registry has %d feeds, target %d", reg.Len(), o.targetSize)
		return
	}

	for _, entry := range discoverer.Discover(ctx, reg, limit) {
		if err := reg.Add(entry); err != nil {
			lgr.Printf("[WARN] can't add discovered feed %s: %v", entry.URL, err)
			continue
		}
		report.Discovered++
		report.Events = append(report.Events, domain.Event{Type: domain.EventDiscovered, URL: entry.URL,
			Identity: entry.Identity, Detail: entry.Language, CreatedAt: time.Now()})
	}
}

// finish completes the report, records history and metrics
func (o *Orchestrator) finish(ctx context.Context, report domain.CycleReport, err error) (domain.CycleReport, error) {
	report.FinishedAt = time.Now()
	if err != nil {
		report.Error = err.Error()
		lgr.Printf("[WARN] maintenance cycle %s failed: %v", report.RunID, err)
	} else {
		lgr.Printf("[INFO] maintenance cycle %s completed in %v: probed %d, alive %d, repaired %d, repair failed %d, "+
			"evicted %d, discovered %d, registry size %d, persisted %v", report.RunID, report.Duration().Round(time.Millisecond),
			report.Probed, report.Alive, report.Repaired, report.RepairFailed, report.Evicted, report.Discovered,
			report.RegistrySize, report.Persisted)
	}

	if o.metrics != nil {
		o.metrics.ObserveCycle(report)
	}
	if o.history != nil {
		if herr := o.history.SaveRun(context.WithoutCancel(ctx), report); herr != nil {
			lgr.Printf("[WARN] failed to record maintenance history: %v", herr)
		}
	}

	o.lastMu.Lock()
	o.last = &report
	o.lastMu.Unlock()
	return report, err
}
