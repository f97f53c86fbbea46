package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/feed"
	"github.com/umputun/feedkeeper/pkg/repository"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/registry.go -pkg mocks -skip-ensure -fmt goimports . Registry
//go:generate moq -out mocks/orchestrator.go -pkg mocks -skip-ensure -fmt goimports . Orchestrator
//go:generate moq -out mocks/scheduler.go -pkg mocks -skip-ensure -fmt goimports . Scheduler
//go:generate moq -out mocks/history.go -pkg mocks -skip-ensure -fmt goimports . History

// Server represents HTTP server instance
type Server struct {
	config       ConfigProvider
	registry     Registry
	orchestrator Orchestrator
	scheduler    Scheduler
	history      History
	opml         *feed.OPMLGenerator
	gatherer     prometheus.Gatherer
	version      string
	debug        bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
	bgWg       sync.WaitGroup // manual cycles started in background
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// Registry gives read access to the feed registry
type Registry interface {
	Load(ctx context.Context) (*domain.Registry, error)
}

// Orchestrator reports maintenance state
type Orchestrator interface {
	Running() bool
	LastReport() (domain.CycleReport, bool)
}

// Scheduler triggers on-demand maintenance
type Scheduler interface {
	RunNow(ctx context.Context, autoAdd bool) (domain.CycleReport, error)
}

// History queries the maintenance journal
type History interface {
	ListRuns(ctx context.Context, limit int) ([]domain.CycleReport, error)
	GetRun(ctx context.Context, runID string) (domain.CycleReport, error)
	ListEvents(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error)
	FeedProbes(ctx context.Context, feedURL string, limit int) ([]domain.ProbeResult, error)
	Ping(ctx context.Context) error
}

// Deps groups server dependencies, History is optional.
// Gatherer defaults to prometheus.DefaultGatherer.
type Deps struct {
	Registry     Registry
	Orchestrator Orchestrator
	Scheduler    Scheduler
	History      History
	Gatherer     prometheus.Gatherer
	OPMLTitle    string
}

// New initializes a new server instance
func New(cfg ConfigProvider, deps Deps, version string, debug bool) *Server {
	s := &Server{
		config:       cfg,
		registry:     deps.Registry,
		orchestrator: deps.Orchestrator,
		scheduler:    deps.Scheduler,
		history:      deps.History,
		opml:         feed.NewOPMLGenerator(deps.OPMLTitle),
		gatherer:     deps.Gatherer,
		version:      version,
		debug:        debug,
		router:       routegroup.New(http.NewServeMux()),
	}

	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	s.bgWg.Wait()
	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("feedkeeper", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /feeds", s.feedsHandler)
		r.HandleFunc("GET /feeds/probes", s.feedProbesHandler)
		r.HandleFunc("GET /runs", s.runsHandler)
		r.HandleFunc("GET /runs/{id}", s.runHandler)
		r.HandleFunc("GET /events", s.eventsHandler)
		r.HandleFunc("POST /maintenance", s.maintenanceHandler)
	})

	s.router.HandleFunc("GET /opml", s.opmlHandler)
	s.router.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
}
