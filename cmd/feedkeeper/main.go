package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/umputun/feedkeeper/pkg/config"
	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/feed"
	"github.com/umputun/feedkeeper/pkg/maintenance"
	"github.com/umputun/feedkeeper/pkg/metrics"
	"github.com/umputun/feedkeeper/pkg/registry"
	"github.com/umputun/feedkeeper/pkg/repository"
	"github.com/umputun/feedkeeper/pkg/scheduler"
	"github.com/umputun/feedkeeper/pkg/search"
	"github.com/umputun/feedkeeper/server"
)

// Opts with all CLI options
type Opts struct {
	Config     string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"configuration file"`
	Registry   string `short:"r" long:"registry" env:"REGISTRY" description:"registry file, overrides registry.path"`
	Once       bool   `long:"once" env:"ONCE" description:"run a single maintenance cycle and exit"`
	AutoAdd    bool   `long:"auto-add" env:"AUTO_ADD" description:"discover new feeds while registry is below target size"`
	DryRun     bool   `long:"dry-run" env:"DRY_RUN" description:"run maintenance without saving the registry"`
	SkipSearch bool   `long:"skip-search" env:"SKIP_SEARCH" description:"don't call the search capability, no repair or discovery"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	SetupLog(opts.Debug)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	log.Print("[INFO] shutdown complete")
}

func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Registry != "" {
		cfg.Registry.Path = opts.Registry
		cfg.Registry.LockPath = opts.Registry + ".lock"
	}
	if cfg.Search.APIKey != "" {
		SetupLog(opts.Debug, cfg.Search.APIKey)
	}

	store := registry.NewStore(cfg.Registry.Path, cfg.Registry.LockPath)
	log.Printf("[INFO] starting feedkeeper version %s, registry %s", revision, store.Path())
	prober := feed.NewProber(cfg.Probe.Timeout, cfg.Probe.UserAgent, cfg.Probe.MaxBodySize)

	// interfaces are assigned only for configured components to keep them nil otherwise
	var searcher maintenance.Searcher
	searchCfg := cfg.GetSearchConfig()
	switch {
	case opts.SkipSearch:
		log.Printf("[INFO] search disabled by --skip-search")
	case !searchCfg.Enabled():
		log.Printf("[WARN] search is not configured, repairs will fail and discovery is disabled")
	default:
		searcher = search.NewSearcher(searchCfg)
		log.Printf("[INFO] search enabled with model %s", searchCfg.Model)
	}

	var repos *repository.Repositories
	if cfg.Database.DSN != "" {
		repos, err = repository.NewRepositories(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer func() {
			if err := repos.Close(); err != nil {
				log.Printf("[WARN] failed to close history database: %v", err)
			}
		}()
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	orch := maintenance.NewOrchestrator(maintenance.OrchestratorConfig{
		Store:       store,
		Prober:      prober,
		Searcher:    searcher,
		History:     historyOf(repos),
		Metrics:     metrics.New(promReg),
		Keywords:    cfg.Maintenance.Keywords,
		Languages:   cfg.Discovery.Languages,
		MaxFailures: cfg.Maintenance.MaxFailures,
		MaxWorkers:  cfg.Maintenance.MaxWorkers,
		TargetSize:  cfg.Discovery.TargetSize,
		MaxPerCycle: cfg.Discovery.MaxPerCycle,

		MaxPerLanguage: cfg.Discovery.MaxPerLanguage,
	})

	if opts.Once {
		report, err := orch.Run(ctx, maintenance.RunOptions{AutoAdd: opts.AutoAdd, DryRun: opts.DryRun, SkipSearch: opts.SkipSearch})
		printReport(os.Stdout, report)
		if err != nil {
			return fmt.Errorf("maintenance cycle failed: %w", err)
		}
		return nil
	}

	sched := scheduler.NewScheduler(scheduler.Params{
		Runner:     orch,
		Cleaner:    cleanerOf(repos),
		Interval:   cfg.Schedule.Interval,
		AutoAdd:    cfg.Schedule.AutoAdd || opts.AutoAdd,
		RunOnStart: cfg.Schedule.RunOnStart,
		DryRun:     opts.DryRun,
		SkipSearch: opts.SkipSearch,
		Retention:  cfg.Database.Retention,
	})
	sched.Start(ctx)
	defer sched.Stop()

	if !cfg.Server.Enabled {
		<-ctx.Done()
		return nil
	}

	srv := server.New(cfg, server.Deps{
		Registry:     store,
		Orchestrator: orch,
		Scheduler:    sched,
		History:      serverHistoryOf(repos),
		Gatherer:     promReg,
		OPMLTitle:    cfg.Server.OPMLTitle,
	}, revision, opts.Debug)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func historyOf(repos *repository.Repositories) maintenance.History {
	if repos == nil {
		return nil
	}
	return repos.History
}

func cleanerOf(repos *repository.Repositories) scheduler.Cleaner {
	if repos == nil {
		return nil
	}
	return repos.History
}

func serverHistoryOf(repos *repository.Repositories) server.History {
	if repos == nil {
		return nil
	}
	return repos.History
}

// printReport writes a short cycle summary for --once runs
func printReport(w io.Writer, r domain.CycleReport) {
	status := "saved"
	switch {
	case r.Error != "":
		status = "failed: " + r.Error
	case r.DryRun:
		status = "dry run, not saved"
	}
	_, _ = fmt.Fprintf(w, "run %s finished in %v, %s\n", r.RunID, r.Duration().Round(time.Millisecond), status)
	_, _ = fmt.Fprintf(w, "probed %d, alive %d, dead %d\n", r.Probed, r.Alive, r.Dead)
	_, _ = fmt.Fprintf(w, "repaired %d, repair failed %d, evicted %d, discovered %d, registry size %d\n",
		r.Repaired, r.RepairFailed, r.Evicted, r.Discovered, r.RegistrySize)
	for _, e := range r.Events {
		_, _ = fmt.Fprintf(w, "  %-13s %s (%s) %s\n", e.Type, e.Identity, e.URL, e.Detail)
	}
}

// SetupLog configures lgr and the std logger, secrets are masked in all output.
// Without debug info and above goes to stdout, errors are duplicated to stderr.
func SetupLog(dbg bool, secs ...string) {
	setupLog(os.Stdout, os.Stderr, dbg, secs...)
}

func setupLog(out, errOut io.Writer, dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(out), lgr.Err(errOut)}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError)
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
