package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/maintenance"
	"github.com/umputun/feedkeeper/pkg/repository"
)

var errHistoryDisabled = errors.New("maintenance history is disabled")

// statusResponse is returned by the status endpoint
type statusResponse struct {
	Status        string              `json:"status"`
	Version       string              `json:"version"`
	Time          time.Time           `json:"time"`
	Running       bool                `json:"running"`
	RegistrySize  int                 `json:"registry_size"`
	Active        int                 `json:"active"`
	Unverified    int                 `json:"unverified"`
	PendingRepair int                 `json:"pending_repair"`
	History       string              `json:"history,omitempty"` // ok or error text, empty without history db
	LastRun       *domain.CycleReport `json:"last_run,omitempty"`
}

// statusHandler returns server and registry status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	reg, err := s.registry.Load(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to load registry: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	resp := statusResponse{
		Status:        "ok",
		Version:       s.version,
		Time:          time.Now().UTC(),
		Running:       s.orchestrator.Running(),
		RegistrySize:  reg.Len(),
		Active:        reg.ActiveCount(),
		Unverified:    lo.CountBy(reg.Feeds, func(f domain.FeedEntry) bool { return f.Status == domain.StatusUnverified }),
		PendingRepair: lo.CountBy(reg.Feeds, func(f domain.FeedEntry) bool { return f.Status == domain.StatusPendingRepair }),
	}
	if s.history != nil {
		resp.History = "ok"
		if err := s.history.Ping(r.Context()); err != nil {
			log.Printf("[WARN] history db is not available: %v", err)
			resp.Status, resp.History = "degraded", err.Error()
		}
	}
	if last, ok := s.orchestrator.LastReport(); ok {
		last.Probes = nil
		resp.LastRun = &last
	}
	renderJSON(w, r, http.StatusOK, resp)
}

// feedsHandler lists registry entries, optionally filtered by status
func (s *Server) feedsHandler(w http.ResponseWriter, r *http.Request) {
	reg, err := s.registry.Load(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to load registry: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	feeds := reg.Feeds
	if status := domain.Status(r.URL.Query().Get("status")); status != "" {
		if !status.Valid() {
			renderError(w, r, fmt.Errorf("invalid status %q", status), http.StatusBadRequest)
			return
		}
		feeds = lo.Filter(feeds, func(f domain.FeedEntry, _ int) bool { return f.Status == status })
	}
	if feeds == nil {
		feeds = []domain.FeedEntry{}
	}
	renderJSON(w, r, http.StatusOK, feeds)
}

// feedProbesHandler returns probe history of a feed
func (s *Server) feedProbesHandler(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		renderError(w, r, errHistoryDisabled, http.StatusServiceUnavailable)
		return
	}
	feedURL := r.URL.Query().Get("url")
	if feedURL == "" {
		renderError(w, r, fmt.Errorf("url parameter is required"), http.StatusBadRequest)
		return
	}

	probes, err := s.history.FeedProbes(r.Context(), feedURL, queryInt(r, "limit", 20))
	if err != nil {
		log.Printf("[ERROR] failed to get probes of %s: %v", feedURL, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, probes)
}

// runsHandler lists recent maintenance runs
func (s *Server) runsHandler(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		renderError(w, r, errHistoryDisabled, http.StatusServiceUnavailable)
		return
	}
	runs, err := s.history.ListRuns(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		log.Printf("[ERROR] failed to list runs: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, runs)
}

// runHandler returns a single run with probes and events
func (s *Server) runHandler(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		renderError(w, r, errHistoryDisabled, http.StatusServiceUnavailable)
		return
	}
	run, err := s.history.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			renderError(w, r, err, http.StatusNotFound)
			return
		}
		log.Printf("[ERROR] failed to get run: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, run)
}

// eventsHandler lists registry events
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		renderError(w, r, errHistoryDisabled, http.StatusServiceUnavailable)
		return
	}
	filter := repository.EventFilter{
		Type:  domain.EventType(r.URL.Query().Get("type")),
		URL:   r.URL.Query().Get("url"),
		Limit: queryInt(r, "limit", 100),
	}
	events, err := s.history.ListEvents(r.Context(), filter)
	if err != nil {
		log.Printf("[ERROR] failed to list events: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, events)
}

// maintenanceHandler triggers a maintenance cycle. By default the cycle runs in background
// and 202 is returned, with wait=true the response carries the cycle report.
func (s *Server) maintenanceHandler(w http.ResponseWriter, r *http.Request) {
	autoAdd, _ := strconv.ParseBool(r.URL.Query().Get("auto_add"))
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))

	if s.orchestrator.Running() {
		renderError(w, r, maintenance.ErrCycleInProgress, http.StatusConflict)
		return
	}

	if !wait {
		s.bgWg.Add(1)
		go func() {
			defer s.bgWg.Done()
			if _, err := s.scheduler.RunNow(context.WithoutCancel(r.Context()), autoAdd); err != nil {
				log.Printf("[WARN] manual maintenance failed: %v", err)
			}
		}()
		renderJSON(w, r, http.StatusAccepted, map[string]any{"status": "started", "auto_add": autoAdd})
		return
	}

	report, err := s.scheduler.RunNow(r.Context(), autoAdd)
	if err != nil {
		if errors.Is(err, maintenance.ErrCycleInProgress) {
			renderError(w, r, err, http.StatusConflict)
			return
		}
		log.Printf("[WARN] manual maintenance failed: %v", err)
		renderJSON(w, r, http.StatusInternalServerError, map[string]any{"error": err.Error(), "report": report})
		return
	}
	report.Probes = nil
	renderJSON(w, r, http.StatusOK, report)
}

// opmlHandler exports the registry as OPML
func (s *Server) opmlHandler(w http.ResponseWriter, r *http.Request) {
	reg, err := s.registry.Load(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to load registry: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	doc, err := s.opml.Generate(reg, time.Now())
	if err != nil {
		log.Printf("[ERROR] failed to generate OPML: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/x-opml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="feeds.opml"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		log.Printf("[WARN] failed to write OPML response: %v", err)
	}
}

// queryInt returns a positive int query parameter or def
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
